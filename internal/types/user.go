package types

import (
	"time"

	"github.com/google/uuid"
)

// Goal types a user can pursue. The recalibration engine keys its entire
// decision matrix off this value.
const (
	GoalLose     = "lose"
	GoalMaintain = "maintain"
	GoalGain     = "gain"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password  string    `gorm:"not null;column:password" json:"-"`
	IsPremium bool      `gorm:"not null;default:false;column:is_premium" json:"is_premium"`

	GoalType string `gorm:"not null;default:maintain;column:goal_type" json:"goal_type"`

	// Anthropometrics, all optional until the user completes setup.
	Age           *int     `gorm:"column:age" json:"age"`
	Sex           *string  `gorm:"column:sex" json:"sex"`
	HeightCM      *float64 `gorm:"column:height_cm" json:"height_cm"`
	ActivityLevel *string  `gorm:"column:activity_level" json:"activity_level"`

	// Current macro targets. Unset until the first goal calculation; required
	// once any recalibration has occurred.
	CalorieGoal *int `gorm:"column:calorie_goal" json:"calorie_goal"`
	ProteinGoal *int `gorm:"column:protein_goal" json:"protein_goal"`
	CarbsGoal   *int `gorm:"column:carbs_goal" json:"carbs_goal"`
	FatGoal     *int `gorm:"column:fat_goal" json:"fat_goal"`

	// LearnedNEAT is the engine's running estimate of non-exercise energy
	// expenditure in kcal/day. Only the recalibration engine writes it, and
	// only via exponential smoothing.
	LearnedNEAT *float64 `gorm:"column:learned_neat" json:"learned_neat"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (User) TableName() string {
	return "user"
}

type UserToken struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	RefreshToken string    `gorm:"uniqueIndex;not null;column:refresh_token" json:"-"`
	ExpiresAt    time.Time `gorm:"not null;column:expires_at" json:"expires_at"`
	Revoked      bool      `gorm:"not null;default:false;column:revoked" json:"revoked"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (UserToken) TableName() string {
	return "user_token"
}

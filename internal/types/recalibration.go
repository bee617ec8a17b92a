package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Insight categories.
const (
	InsightPattern     = "pattern"
	InsightAchievement = "achievement"
	InsightWarning     = "warning"
	InsightTip         = "tip"
)

// RecalibrationRecord is an immutable snapshot of one engine run. The most
// recent record per user defines the current adjusted goals. PeriodDay is
// the period_end calendar day; the (user_id, period_day) unique index turns
// a double-triggered run inside the cooldown into a caught conflict instead
// of a duplicate record.
type RecalibrationRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uidx_recal_user_day;column:user_id" json:"user_id"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`

	PeriodStart time.Time `gorm:"not null;column:period_start" json:"period_start"`
	PeriodEnd   time.Time `gorm:"not null;column:period_end" json:"period_end"`
	PeriodDay   string    `gorm:"not null;uniqueIndex:uidx_recal_user_day;column:period_day" json:"-"`

	PrevCalorieGoal int `gorm:"not null;column:prev_calorie_goal" json:"prev_calorie_goal"`
	PrevProteinGoal int `gorm:"not null;column:prev_protein_goal" json:"prev_protein_goal"`
	PrevCarbsGoal   int `gorm:"not null;column:prev_carbs_goal" json:"prev_carbs_goal"`
	PrevFatGoal     int `gorm:"not null;column:prev_fat_goal" json:"prev_fat_goal"`

	NewCalorieGoal int `gorm:"not null;column:new_calorie_goal" json:"new_calorie_goal"`
	NewProteinGoal int `gorm:"not null;column:new_protein_goal" json:"new_protein_goal"`
	NewCarbsGoal   int `gorm:"not null;column:new_carbs_goal" json:"new_carbs_goal"`
	NewFatGoal     int `gorm:"not null;column:new_fat_goal" json:"new_fat_goal"`

	NEATEstimate *float64       `gorm:"column:neat_estimate" json:"neat_estimate"`
	Analysis     datatypes.JSON `gorm:"column:analysis_json" json:"analysis"`
	Reasoning    string         `gorm:"not null;column:reasoning" json:"reasoning"`
}

func (RecalibrationRecord) TableName() string {
	return "ani_recalibration"
}

type Insight struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	RecalibrationID *uuid.UUID `gorm:"type:uuid;column:recalibration_id" json:"recalibration_id"`
	InsightType     string     `gorm:"not null;column:insight_type" json:"insight_type"`
	Title           string     `gorm:"not null;column:title" json:"title"`
	Body            string     `gorm:"not null;column:body" json:"body"`
	CreatedAt       time.Time  `gorm:"not null;default:now()" json:"created_at"`
}

func (Insight) TableName() string {
	return "ani_insight"
}

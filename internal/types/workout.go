package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// BurnLog sources. Device syncs carry an external id so re-syncs dedup.
const (
	BurnSourceManual        = "manual"
	BurnSourcePlanSession   = "plan_session"
	BurnSourceHealthKit     = "healthkit"
	BurnSourceHealthConnect = "health_connect"
)

type WorkoutPlan struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	Name      string    `gorm:"not null;column:name" json:"name"`
	Active    bool      `gorm:"not null;default:true;column:active" json:"active"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (WorkoutPlan) TableName() string {
	return "workout_plan"
}

// PlanSession is one planned workout occurrence. Exercises holds a JSON list
// of {name, sets, reps, rest_seconds}; reps stays a string because it can be
// a range ("8-12") or a duration ("30s").
type PlanSession struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PlanID       uuid.UUID      `gorm:"type:uuid;not null;index;column:plan_id" json:"plan_id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	Name         string         `gorm:"column:name" json:"name"`
	ScheduledFor *time.Time     `gorm:"column:scheduled_for" json:"scheduled_for"`
	Exercises    datatypes.JSON `gorm:"column:exercises_json" json:"exercises_json"`
	Completed    bool           `gorm:"not null;default:false;column:completed" json:"completed"`
	CompletedAt  *time.Time     `gorm:"column:completed_at" json:"completed_at"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (PlanSession) TableName() string {
	return "plan_session"
}

type BurnLog struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	Timestamp       time.Time `gorm:"not null;index;column:timestamp" json:"timestamp"`
	CaloriesBurned  float64   `gorm:"not null;column:calories_burned" json:"calories_burned"`
	DurationMinutes *int      `gorm:"column:duration_minutes" json:"duration_minutes"`
	Source          string    `gorm:"not null;default:manual;column:source" json:"source"`
	ExternalID      *string   `gorm:"column:external_id;index" json:"external_id"`
	CreatedAt       time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (BurnLog) TableName() string {
	return "burn_log"
}

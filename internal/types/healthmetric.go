package types

import (
	"time"

	"github.com/google/uuid"
)

// HealthMetric is one calendar day of device-reported data per user. The
// (user_id, date) pair is the upsert key; when total expenditure is present
// it supersedes the engine's own NEAT+workout estimate.
type HealthMetric struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uidx_metric_user_date;column:user_id" json:"user_id"`
	Date   time.Time `gorm:"type:date;not null;uniqueIndex:uidx_metric_user_date;column:date" json:"date"`

	TotalExpenditure *float64 `gorm:"column:total_expenditure" json:"total_expenditure"`
	ActiveCalories   *float64 `gorm:"column:active_calories" json:"active_calories"`
	RestingCalories  *float64 `gorm:"column:resting_calories" json:"resting_calories"`
	Steps            *int     `gorm:"column:steps" json:"steps"`

	Source    string    `gorm:"column:source" json:"source"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (HealthMetric) TableName() string {
	return "health_metric"
}

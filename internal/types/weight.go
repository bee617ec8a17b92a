package types

import (
	"time"

	"github.com/google/uuid"
)

// WeightEntry is an append-only scale reading. The core reads these over
// four overlapping windows and never mutates them.
type WeightEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	Timestamp time.Time `gorm:"not null;index;column:timestamp" json:"timestamp"`
	WeightLBS float64   `gorm:"not null;column:weight_lbs" json:"weight_lbs"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (WeightEntry) TableName() string {
	return "weight_entry"
}

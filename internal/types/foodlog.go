package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnack     = "snack"
)

// FoodLogEntry is one logged eating occasion. Macros are required; fiber,
// sugar and sodium are optional so parser output without them still saves.
// The recalibration core only ever reads these.
type FoodLogEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	Timestamp time.Time `gorm:"not null;index;column:timestamp" json:"timestamp"`

	Calories float64 `gorm:"not null;column:calories" json:"calories"`
	Protein  float64 `gorm:"not null;column:protein" json:"protein"`
	Carbs    float64 `gorm:"not null;column:carbs" json:"carbs"`
	Fat      float64 `gorm:"not null;column:fat" json:"fat"`

	Fiber  *float64 `gorm:"column:fiber" json:"fiber"`
	Sugar  *float64 `gorm:"column:sugar" json:"sugar"`
	Sodium *float64 `gorm:"column:sodium" json:"sodium"`

	MealType string `gorm:"column:meal_type" json:"meal_type"`

	// Raw text the user typed and the parser's structured response, kept for
	// audit and re-parse.
	InputText  string         `gorm:"column:input_text" json:"input_text"`
	ParsedJSON datatypes.JSON `gorm:"column:parsed_json" json:"parsed_json,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (FoodLogEntry) TableName() string {
	return "food_log_entry"
}

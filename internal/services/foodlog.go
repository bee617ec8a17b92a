package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/foodenough/foodenough-backend/internal/logger"
	"github.com/foodenough/foodenough-backend/internal/repos"
	"github.com/foodenough/foodenough-backend/internal/types"
)

var (
	ErrEntryNotFound = errors.New("food log entry not found")
	ErrNotOwner      = errors.New("entry does not belong to this user")
)

// ManualEntry is a fully specified food log write, no parser involved.
type ManualEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Calories  float64   `json:"calories"`
	Protein   float64   `json:"protein"`
	Carbs     float64   `json:"carbs"`
	Fat       float64   `json:"fat"`
	Fiber     *float64  `json:"fiber"`
	Sugar     *float64  `json:"sugar"`
	Sodium    *float64  `json:"sodium"`
	MealType  string    `json:"meal_type"`
	InputText string    `json:"input_text"`
}

// DaySummary aggregates intake for one day against the user's goals.
type DaySummary struct {
	Date        string               `json:"date"`
	Calories    float64              `json:"calories"`
	Protein     float64              `json:"protein"`
	Carbs       float64              `json:"carbs"`
	Fat         float64              `json:"fat"`
	CalorieGoal *int                 `json:"calorie_goal,omitempty"`
	ProteinGoal *int                 `json:"protein_goal,omitempty"`
	CarbsGoal   *int                 `json:"carbs_goal,omitempty"`
	FatGoal     *int                 `json:"fat_goal,omitempty"`
	Entries     []*types.FoodLogEntry `json:"entries"`
}

type FoodLogService interface {
	Preview(ctx context.Context, text string) (*ParsedFood, error)
	LogFromText(ctx context.Context, userID uuid.UUID, text, mealType string, at time.Time) (*types.FoodLogEntry, error)
	LogManual(ctx context.Context, userID uuid.UUID, entry ManualEntry) (*types.FoodLogEntry, error)
	Update(ctx context.Context, userID, entryID uuid.UUID, entry ManualEntry) (*types.FoodLogEntry, error)
	Delete(ctx context.Context, userID, entryID uuid.UUID) error
	DaySummary(ctx context.Context, userID uuid.UUID, day time.Time) (*DaySummary, error)
	WeekSummary(ctx context.Context, userID uuid.UUID, endDay time.Time) ([]*DaySummary, error)
	ExportCSV(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]byte, error)
}

type foodLogService struct {
	db          *gorm.DB
	log         *logger.Logger
	foodLogRepo repos.FoodLogRepo
	userRepo    repos.UserRepo
	parser      NutritionParser
}

// NewFoodLogService accepts a nil parser; text logging then returns an error
// while manual logging keeps working.
func NewFoodLogService(db *gorm.DB, baseLog *logger.Logger, foodLogRepo repos.FoodLogRepo, userRepo repos.UserRepo, parser NutritionParser) FoodLogService {
	serviceLog := baseLog.With("service", "FoodLogService")
	return &foodLogService{db: db, log: serviceLog, foodLogRepo: foodLogRepo, userRepo: userRepo, parser: parser}
}

// Preview runs text through the parser and returns the structured estimate
// without saving anything, so clients can show macros before the user
// commits the log.
func (fs *foodLogService) Preview(ctx context.Context, text string) (*ParsedFood, error) {
	if fs.parser == nil {
		return nil, fmt.Errorf("text parsing is not configured")
	}
	parsed, err := fs.parser.Parse(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("parse food text: %w", err)
	}
	return parsed, nil
}

func (fs *foodLogService) LogFromText(ctx context.Context, userID uuid.UUID, text, mealType string, at time.Time) (*types.FoodLogEntry, error) {
	if fs.parser == nil {
		return nil, fmt.Errorf("text parsing is not configured")
	}
	parsed, err := fs.parser.Parse(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("parse food text: %w", err)
	}
	raw, err := json.Marshal(parsed)
	if err != nil {
		return nil, fmt.Errorf("encode parsed food: %w", err)
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	entry := &types.FoodLogEntry{
		ID:         uuid.New(),
		UserID:     userID,
		Timestamp:  at,
		Calories:   parsed.Calories,
		Protein:    parsed.Protein,
		Carbs:      parsed.Carbs,
		Fat:        parsed.Fat,
		Fiber:      parsed.Fiber,
		Sugar:      parsed.Sugar,
		Sodium:     parsed.Sodium,
		MealType:   mealType,
		InputText:  text,
		ParsedJSON: datatypes.JSON(raw),
	}
	created, err := fs.foodLogRepo.Create(ctx, nil, entry)
	if err != nil {
		return nil, fmt.Errorf("save food log entry: %w", err)
	}
	fs.log.Info("food logged from text", "user_id", userID, "calories", created.Calories)
	return created, nil
}

func (fs *foodLogService) LogManual(ctx context.Context, userID uuid.UUID, entry ManualEntry) (*types.FoodLogEntry, error) {
	if err := validateMacros(entry); err != nil {
		return nil, err
	}
	at := entry.Timestamp
	if at.IsZero() {
		at = time.Now().UTC()
	}
	record := &types.FoodLogEntry{
		ID:        uuid.New(),
		UserID:    userID,
		Timestamp: at,
		Calories:  entry.Calories,
		Protein:   entry.Protein,
		Carbs:     entry.Carbs,
		Fat:       entry.Fat,
		Fiber:     entry.Fiber,
		Sugar:     entry.Sugar,
		Sodium:    entry.Sodium,
		MealType:  entry.MealType,
		InputText: entry.InputText,
	}
	created, err := fs.foodLogRepo.Create(ctx, nil, record)
	if err != nil {
		return nil, fmt.Errorf("save food log entry: %w", err)
	}
	return created, nil
}

func (fs *foodLogService) Update(ctx context.Context, userID, entryID uuid.UUID, entry ManualEntry) (*types.FoodLogEntry, error) {
	if err := validateMacros(entry); err != nil {
		return nil, err
	}
	existing, err := fs.ownedEntry(ctx, userID, entryID)
	if err != nil {
		return nil, err
	}
	existing.Calories = entry.Calories
	existing.Protein = entry.Protein
	existing.Carbs = entry.Carbs
	existing.Fat = entry.Fat
	existing.Fiber = entry.Fiber
	existing.Sugar = entry.Sugar
	existing.Sodium = entry.Sodium
	if entry.MealType != "" {
		existing.MealType = entry.MealType
	}
	if !entry.Timestamp.IsZero() {
		existing.Timestamp = entry.Timestamp
	}
	if err := fs.foodLogRepo.Update(ctx, nil, existing); err != nil {
		return nil, fmt.Errorf("update food log entry: %w", err)
	}
	return existing, nil
}

func (fs *foodLogService) Delete(ctx context.Context, userID, entryID uuid.UUID) error {
	if _, err := fs.ownedEntry(ctx, userID, entryID); err != nil {
		return err
	}
	return fs.foodLogRepo.Delete(ctx, nil, entryID)
}

func (fs *foodLogService) ownedEntry(ctx context.Context, userID, entryID uuid.UUID) (*types.FoodLogEntry, error) {
	existing, err := fs.foodLogRepo.GetByID(ctx, nil, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	if existing.UserID != userID {
		return nil, ErrNotOwner
	}
	return existing, nil
}

func (fs *foodLogService) DaySummary(ctx context.Context, userID uuid.UUID, day time.Time) (*DaySummary, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	entries, err := fs.foodLogRepo.ListByUserBetween(ctx, nil, userID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	summary := &DaySummary{
		Date:    dayStart.Format("2006-01-02"),
		Entries: entries,
	}
	for _, e := range entries {
		summary.Calories += e.Calories
		summary.Protein += e.Protein
		summary.Carbs += e.Carbs
		summary.Fat += e.Fat
	}
	user, err := fs.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	summary.CalorieGoal = user.CalorieGoal
	summary.ProteinGoal = user.ProteinGoal
	summary.CarbsGoal = user.CarbsGoal
	summary.FatGoal = user.FatGoal
	return summary, nil
}

// WeekSummary returns seven day summaries ending on endDay, oldest first.
func (fs *foodLogService) WeekSummary(ctx context.Context, userID uuid.UUID, endDay time.Time) ([]*DaySummary, error) {
	summaries := make([]*DaySummary, 0, 7)
	for i := 6; i >= 0; i-- {
		s, err := fs.DaySummary(ctx, userID, endDay.AddDate(0, 0, -i))
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

func (fs *foodLogService) ExportCSV(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]byte, error) {
	entries, err := fs.foodLogRepo.ListByUserBetween(ctx, nil, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"timestamp", "meal_type", "calories", "protein", "carbs", "fat", "fiber", "sugar", "sodium", "input_text"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, e := range entries {
		row := []string{
			e.Timestamp.UTC().Format(time.RFC3339),
			e.MealType,
			formatFloat(e.Calories),
			formatFloat(e.Protein),
			formatFloat(e.Carbs),
			formatFloat(e.Fat),
			formatFloatPtr(e.Fiber),
			formatFloatPtr(e.Sugar),
			formatFloatPtr(e.Sodium),
			e.InputText,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func validateMacros(entry ManualEntry) error {
	if entry.Calories < 0 || entry.Protein < 0 || entry.Carbs < 0 || entry.Fat < 0 {
		return fmt.Errorf("nutrition values must be non-negative")
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/foodenough/foodenough-backend/internal/logger"
	"github.com/foodenough/foodenough-backend/internal/types"
)

func newTestFoodLogService(t *testing.T, foodRepo *fakeFoodLogRepo, userRepo *fakeUserRepo) FoodLogService {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return NewFoodLogService(nil, log, foodRepo, userRepo, nil)
}

func TestDaySummaryAggregates(t *testing.T) {
	user := premiumUserWithGoals()
	at := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	foodRepo := &fakeFoodLogRepo{entries: []*types.FoodLogEntry{
		{ID: uuid.New(), UserID: user.ID, Timestamp: at, Calories: 600, Protein: 40, Carbs: 70, Fat: 20},
		{ID: uuid.New(), UserID: user.ID, Timestamp: at.Add(6 * time.Hour), Calories: 900, Protein: 55, Carbs: 90, Fat: 35},
	}}
	svc := newTestFoodLogService(t, foodRepo, &fakeUserRepo{users: map[uuid.UUID]*types.User{user.ID: user}})

	summary, err := svc.DaySummary(context.Background(), user.ID, at)
	if err != nil {
		t.Fatalf("DaySummary: %v", err)
	}
	if summary.Date != "2025-06-15" {
		t.Fatalf("Date want=2025-06-15 got=%s", summary.Date)
	}
	if summary.Calories != 1500 || summary.Protein != 95 || summary.Carbs != 160 || summary.Fat != 55 {
		t.Fatalf("totals want=(1500,95,160,55) got=(%v,%v,%v,%v)",
			summary.Calories, summary.Protein, summary.Carbs, summary.Fat)
	}
	if summary.CalorieGoal == nil || *summary.CalorieGoal != 2000 {
		t.Fatalf("CalorieGoal want=2000 got=%v", summary.CalorieGoal)
	}
	if len(summary.Entries) != 2 {
		t.Fatalf("Entries want=2 got=%d", len(summary.Entries))
	}
}

type fakeParser struct {
	parsed *ParsedFood
	err    error
	calls  int
}

func (f *fakeParser) Parse(_ context.Context, _ string) (*ParsedFood, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.parsed, nil
}

func TestPreviewParsesWithoutSaving(t *testing.T) {
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	foodRepo := &fakeFoodLogRepo{}
	parser := &fakeParser{parsed: &ParsedFood{Description: "two eggs", Calories: 156, Protein: 12.6}}
	svc := NewFoodLogService(nil, log, foodRepo, &fakeUserRepo{}, parser)

	got, err := svc.Preview(context.Background(), "two eggs")
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if got.Calories != 156 || got.Protein != 12.6 {
		t.Fatalf("macros want=(156,12.6) got=(%v,%v)", got.Calories, got.Protein)
	}
	if parser.calls != 1 {
		t.Fatalf("parser calls want=1 got=%d", parser.calls)
	}
	if foodRepo.created != 0 {
		t.Fatalf("preview must not save entries, got %d creates", foodRepo.created)
	}
}

func TestPreviewWithoutParser(t *testing.T) {
	svc := newTestFoodLogService(t, &fakeFoodLogRepo{}, &fakeUserRepo{})
	if _, err := svc.Preview(context.Background(), "two eggs"); err == nil {
		t.Fatalf("want error when no parser is configured")
	}
}

func TestLogFromTextWithoutParser(t *testing.T) {
	svc := newTestFoodLogService(t, &fakeFoodLogRepo{}, &fakeUserRepo{})
	_, err := svc.LogFromText(context.Background(), uuid.New(), "two eggs and toast", "breakfast", time.Time{})
	if err == nil {
		t.Fatalf("want error when no parser is configured")
	}
}

func TestLogManualRejectsNegativeValues(t *testing.T) {
	svc := newTestFoodLogService(t, &fakeFoodLogRepo{}, &fakeUserRepo{})
	_, err := svc.LogManual(context.Background(), uuid.New(), ManualEntry{Calories: -100})
	if err == nil {
		t.Fatalf("want error for negative calories")
	}
}

func TestExportCSV(t *testing.T) {
	fiber := 4.5
	at := time.Date(2025, 6, 15, 8, 30, 0, 0, time.UTC)
	foodRepo := &fakeFoodLogRepo{entries: []*types.FoodLogEntry{
		{
			ID:        uuid.New(),
			UserID:    uuid.New(),
			Timestamp: at,
			Calories:  420,
			Protein:   30.5,
			Carbs:     45,
			Fat:       12,
			Fiber:     &fiber,
			MealType:  "breakfast",
			InputText: "oatmeal with berries",
		},
	}}
	svc := newTestFoodLogService(t, foodRepo, &fakeUserRepo{})

	data, err := svc.ExportCSV(context.Background(), uuid.New(), at.AddDate(0, 0, -7), at)
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows want=2 got=%d", len(rows))
	}
	if rows[0][0] != "timestamp" || rows[0][9] != "input_text" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	row := rows[1]
	if row[0] != "2025-06-15T08:30:00Z" {
		t.Fatalf("timestamp want=2025-06-15T08:30:00Z got=%s", row[0])
	}
	if row[2] != "420" || row[3] != "30.5" || row[6] != "4.5" {
		t.Fatalf("macro columns want=(420,30.5,4.5) got=(%s,%s,%s)", row[2], row[3], row[6])
	}
	// Unset optional columns export as empty strings.
	if row[7] != "" || row[8] != "" {
		t.Fatalf("unset sugar/sodium should be empty, got (%q,%q)", row[7], row[8])
	}
}

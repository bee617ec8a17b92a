package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodenough/foodenough-backend/internal/logger"
	"github.com/foodenough/foodenough-backend/internal/repos"
	"github.com/foodenough/foodenough-backend/internal/types"
)

// DeviceDayInput is one day of data pushed by a device integration
// (HealthKit, Health Connect).
type DeviceDayInput struct {
	Date             string   `json:"date"`
	TotalExpenditure *float64 `json:"total_expenditure"`
	ActiveCalories   *float64 `json:"active_calories"`
	RestingCalories  *float64 `json:"resting_calories"`
	Steps            *int     `json:"steps"`
	Source           string   `json:"source"`
}

// DeviceWorkoutInput is a workout recorded on-device rather than through a
// plan session. ExternalID makes re-syncs idempotent.
type DeviceWorkoutInput struct {
	Timestamp       time.Time `json:"timestamp"`
	CaloriesBurned  float64   `json:"calories_burned"`
	DurationMinutes *int      `json:"duration_minutes"`
	Source          string    `json:"source"`
	ExternalID      string    `json:"external_id"`
}

type SyncResult struct {
	DaysUpserted    int `json:"days_upserted"`
	WorkoutsCreated int `json:"workouts_created"`
	WorkoutsSkipped int `json:"workouts_skipped"`
}

type HealthMetricService interface {
	SyncDays(ctx context.Context, userID uuid.UUID, days []DeviceDayInput) (*SyncResult, error)
	SyncWorkouts(ctx context.Context, userID uuid.UUID, workouts []DeviceWorkoutInput) (*SyncResult, error)
	History(ctx context.Context, userID uuid.UUID, days int) ([]*types.HealthMetric, error)
}

type healthMetricService struct {
	db         *gorm.DB
	log        *logger.Logger
	metricRepo repos.HealthMetricRepo
	burnRepo   repos.BurnLogRepo
}

func NewHealthMetricService(db *gorm.DB, baseLog *logger.Logger, metricRepo repos.HealthMetricRepo, burnRepo repos.BurnLogRepo) HealthMetricService {
	serviceLog := baseLog.With("service", "HealthMetricService")
	return &healthMetricService{db: db, log: serviceLog, metricRepo: metricRepo, burnRepo: burnRepo}
}

func (hs *healthMetricService) SyncDays(ctx context.Context, userID uuid.UUID, days []DeviceDayInput) (*SyncResult, error) {
	result := &SyncResult{}
	err := hs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, day := range days {
			date, err := time.Parse("2006-01-02", day.Date)
			if err != nil {
				return fmt.Errorf("bad date %q: %w", day.Date, err)
			}
			source := day.Source
			if source == "" {
				source = types.BurnSourceHealthKit
			}
			metric := &types.HealthMetric{
				ID:               uuid.New(),
				UserID:           userID,
				Date:             date,
				TotalExpenditure: day.TotalExpenditure,
				ActiveCalories:   day.ActiveCalories,
				RestingCalories:  day.RestingCalories,
				Steps:            day.Steps,
				Source:           source,
			}
			if _, err := hs.metricRepo.Upsert(ctx, tx, metric); err != nil {
				return fmt.Errorf("upsert metric day %s: %w", day.Date, err)
			}
			result.DaysUpserted++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	hs.log.Info("device days synced", "user_id", userID, "days", result.DaysUpserted)
	return result, nil
}

func (hs *healthMetricService) SyncWorkouts(ctx context.Context, userID uuid.UUID, workouts []DeviceWorkoutInput) (*SyncResult, error) {
	result := &SyncResult{}
	err := hs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, w := range workouts {
			if w.ExternalID == "" {
				return fmt.Errorf("device workout missing external_id")
			}
			source := w.Source
			if source == "" {
				source = types.BurnSourceHealthKit
			}
			exists, err := hs.burnRepo.ExternalExists(ctx, tx, userID, source, w.ExternalID)
			if err != nil {
				return fmt.Errorf("check external workout: %w", err)
			}
			if exists {
				result.WorkoutsSkipped++
				continue
			}
			at := w.Timestamp
			if at.IsZero() {
				at = time.Now().UTC()
			}
			externalID := w.ExternalID
			record := &types.BurnLog{
				ID:              uuid.New(),
				UserID:          userID,
				Timestamp:       at,
				CaloriesBurned:  w.CaloriesBurned,
				DurationMinutes: w.DurationMinutes,
				Source:          source,
				ExternalID:      &externalID,
			}
			if _, err := hs.burnRepo.Create(ctx, tx, record); err != nil {
				return fmt.Errorf("create device workout: %w", err)
			}
			result.WorkoutsCreated++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (hs *healthMetricService) History(ctx context.Context, userID uuid.UUID, days int) ([]*types.HealthMetric, error) {
	if days <= 0 {
		days = 30
	}
	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -days)
	return hs.metricRepo.ListByUserBetween(ctx, nil, userID, from, now.AddDate(0, 0, 1))
}

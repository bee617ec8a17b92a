package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/foodenough/foodenough-backend/internal/logger"
	"github.com/foodenough/foodenough-backend/internal/types"
)

type HealthMetricRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, metric *types.HealthMetric) (*types.HealthMetric, error)
	ListByUserBetween(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) ([]*types.HealthMetric, error)
}

type healthMetricRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHealthMetricRepo(db *gorm.DB, baseLog *logger.Logger) HealthMetricRepo {
	repoLog := baseLog.With("repo", "HealthMetricRepo")
	return &healthMetricRepo{db: db, log: repoLog}
}

func (r *healthMetricRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Upsert writes one day of device data keyed on (user_id, date); a re-sync
// for the same day overwrites the previous values.
func (r *healthMetricRepo) Upsert(ctx context.Context, tx *gorm.DB, metric *types.HealthMetric) (*types.HealthMetric, error) {
	err := r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_expenditure", "active_calories", "resting_calories", "steps", "source", "updated_at",
			}),
		}).
		Create(metric).Error
	if err != nil {
		return nil, err
	}
	return metric, nil
}

func (r *healthMetricRepo) ListByUserBetween(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) ([]*types.HealthMetric, error) {
	var results []*types.HealthMetric
	if err := r.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Where("date >= ? AND date < ?", from, to).
		Order("date asc").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodenough/foodenough-backend/internal/logger"
	"github.com/foodenough/foodenough-backend/internal/types"
)

type FoodLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entry *types.FoodLogEntry) (*types.FoodLogEntry, error)
	GetByID(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) (*types.FoodLogEntry, error)
	Update(ctx context.Context, tx *gorm.DB, entry *types.FoodLogEntry) error
	Delete(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) error
	ListByUserBetween(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) ([]*types.FoodLogEntry, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.FoodLogEntry, error)
	EarliestTimestamp(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*time.Time, error)
	CountDistinctDays(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) (int, error)
}

type foodLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFoodLogRepo(db *gorm.DB, baseLog *logger.Logger) FoodLogRepo {
	repoLog := baseLog.With("repo", "FoodLogRepo")
	return &foodLogRepo{db: db, log: repoLog}
}

func (r *foodLogRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *foodLogRepo) Create(ctx context.Context, tx *gorm.DB, entry *types.FoodLogEntry) (*types.FoodLogEntry, error) {
	if err := r.conn(tx).WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *foodLogRepo) GetByID(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) (*types.FoodLogEntry, error) {
	var result types.FoodLogEntry
	if err := r.conn(tx).WithContext(ctx).
		Where("id = ?", entryID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *foodLogRepo) Update(ctx context.Context, tx *gorm.DB, entry *types.FoodLogEntry) error {
	return r.conn(tx).WithContext(ctx).Save(entry).Error
}

func (r *foodLogRepo) Delete(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).
		Where("id = ?", entryID).
		Delete(&types.FoodLogEntry{}).Error
}

func (r *foodLogRepo) ListByUserBetween(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) ([]*types.FoodLogEntry, error) {
	var results []*types.FoodLogEntry
	if err := r.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Where("timestamp >= ? AND timestamp < ?", from, to).
		Order("timestamp asc").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *foodLogRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.FoodLogEntry, error) {
	var results []*types.FoodLogEntry
	if err := r.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp asc").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *foodLogRepo) EarliestTimestamp(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*time.Time, error) {
	var result types.FoodLogEntry
	err := r.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp asc").
		First(&result).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &result.Timestamp, nil
}

// CountDistinctDays counts calendar days with at least one log in the range.
// Day grouping happens in Go so the query stays portable across postgres
// and sqlite.
func (r *foodLogRepo) CountDistinctDays(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) (int, error) {
	entries, err := r.ListByUserBetween(ctx, tx, userID, from, to)
	if err != nil {
		return 0, err
	}
	days := make(map[string]struct{})
	for _, e := range entries {
		days[e.Timestamp.UTC().Format("2006-01-02")] = struct{}{}
	}
	return len(days), nil
}

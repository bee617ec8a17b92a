package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodenough/foodenough-backend/internal/logger"
	"github.com/foodenough/foodenough-backend/internal/types"
)

type WeightEntryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entry *types.WeightEntry) (*types.WeightEntry, error)
	Delete(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) error
	GetByID(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) (*types.WeightEntry, error)
	ListByUserBetween(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) ([]*types.WeightEntry, error)
	Latest(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.WeightEntry, error)
}

type weightEntryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWeightEntryRepo(db *gorm.DB, baseLog *logger.Logger) WeightEntryRepo {
	repoLog := baseLog.With("repo", "WeightEntryRepo")
	return &weightEntryRepo{db: db, log: repoLog}
}

func (r *weightEntryRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *weightEntryRepo) Create(ctx context.Context, tx *gorm.DB, entry *types.WeightEntry) (*types.WeightEntry, error) {
	if err := r.conn(tx).WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *weightEntryRepo) Delete(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).
		Where("id = ?", entryID).
		Delete(&types.WeightEntry{}).Error
}

func (r *weightEntryRepo) GetByID(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) (*types.WeightEntry, error) {
	var result types.WeightEntry
	if err := r.conn(tx).WithContext(ctx).
		Where("id = ?", entryID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *weightEntryRepo) ListByUserBetween(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) ([]*types.WeightEntry, error) {
	var results []*types.WeightEntry
	if err := r.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Where("timestamp >= ? AND timestamp < ?", from, to).
		Order("timestamp asc").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *weightEntryRepo) Latest(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.WeightEntry, error) {
	var result types.WeightEntry
	err := r.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp desc").
		First(&result).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

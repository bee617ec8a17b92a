package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodenough/foodenough-backend/internal/logger"
	"github.com/foodenough/foodenough-backend/internal/types"
)

type BurnLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entry *types.BurnLog) (*types.BurnLog, error)
	ListByUserBetween(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) ([]*types.BurnLog, error)
	ExternalExists(ctx context.Context, tx *gorm.DB, userID uuid.UUID, source, externalID string) (bool, error)
}

type burnLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBurnLogRepo(db *gorm.DB, baseLog *logger.Logger) BurnLogRepo {
	repoLog := baseLog.With("repo", "BurnLogRepo")
	return &burnLogRepo{db: db, log: repoLog}
}

func (r *burnLogRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *burnLogRepo) Create(ctx context.Context, tx *gorm.DB, entry *types.BurnLog) (*types.BurnLog, error) {
	if err := r.conn(tx).WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *burnLogRepo) ListByUserBetween(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) ([]*types.BurnLog, error) {
	var results []*types.BurnLog
	if err := r.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Where("timestamp >= ? AND timestamp < ?", from, to).
		Order("timestamp asc").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ExternalExists backs device-sync dedup: a (user, source, external_id)
// triple that already exists is silently skipped on re-sync.
func (r *burnLogRepo) ExternalExists(ctx context.Context, tx *gorm.DB, userID uuid.UUID, source, externalID string) (bool, error) {
	var count int64
	if err := r.conn(tx).WithContext(ctx).
		Model(&types.BurnLog{}).
		Where("user_id = ?", userID).
		Where("source = ?", source).
		Where("external_id = ?", externalID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

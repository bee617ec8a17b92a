package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodenough/foodenough-backend/internal/logger"
	"github.com/foodenough/foodenough-backend/internal/types"
)

type InsightRepo interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, insights []*types.Insight) error
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.Insight, error)
}

type insightRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInsightRepo(db *gorm.DB, baseLog *logger.Logger) InsightRepo {
	repoLog := baseLog.With("repo", "InsightRepo")
	return &insightRepo{db: db, log: repoLog}
}

func (r *insightRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *insightRepo) CreateBatch(ctx context.Context, tx *gorm.DB, insights []*types.Insight) error {
	if len(insights) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Create(&insights).Error
}

func (r *insightRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.Insight, error) {
	if limit <= 0 {
		limit = 50
	}
	var results []*types.Insight
	if err := r.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

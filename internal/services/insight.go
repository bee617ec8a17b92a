package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodenough/foodenough-backend/internal/logger"
	"github.com/foodenough/foodenough-backend/internal/repos"
	"github.com/foodenough/foodenough-backend/internal/types"
)

type InsightService interface {
	List(ctx context.Context, userID uuid.UUID, limit int) ([]*types.Insight, error)
}

type insightService struct {
	db          *gorm.DB
	log         *logger.Logger
	insightRepo repos.InsightRepo
}

func NewInsightService(db *gorm.DB, baseLog *logger.Logger, insightRepo repos.InsightRepo) InsightService {
	serviceLog := baseLog.With("service", "InsightService")
	return &insightService{db: db, log: serviceLog, insightRepo: insightRepo}
}

func (is *insightService) List(ctx context.Context, userID uuid.UUID, limit int) ([]*types.Insight, error) {
	return is.insightRepo.ListByUser(ctx, nil, userID, limit)
}

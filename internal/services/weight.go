package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodenough/foodenough-backend/internal/logger"
	"github.com/foodenough/foodenough-backend/internal/repos"
	"github.com/foodenough/foodenough-backend/internal/types"
)

var ErrWeightNotFound = errors.New("weight entry not found")

type WeightService interface {
	Log(ctx context.Context, userID uuid.UUID, weightLBS float64, at time.Time) (*types.WeightEntry, error)
	Delete(ctx context.Context, userID, entryID uuid.UUID) error
	History(ctx context.Context, userID uuid.UUID, days int) ([]*types.WeightEntry, error)
	Latest(ctx context.Context, userID uuid.UUID) (*types.WeightEntry, error)
}

type weightService struct {
	db         *gorm.DB
	log        *logger.Logger
	weightRepo repos.WeightEntryRepo
}

func NewWeightService(db *gorm.DB, baseLog *logger.Logger, weightRepo repos.WeightEntryRepo) WeightService {
	serviceLog := baseLog.With("service", "WeightService")
	return &weightService{db: db, log: serviceLog, weightRepo: weightRepo}
}

func (ws *weightService) Log(ctx context.Context, userID uuid.UUID, weightLBS float64, at time.Time) (*types.WeightEntry, error) {
	if weightLBS <= 0 || weightLBS > 1500 {
		return nil, fmt.Errorf("weight out of range")
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	entry := &types.WeightEntry{
		ID:        uuid.New(),
		UserID:    userID,
		Timestamp: at,
		WeightLBS: weightLBS,
	}
	created, err := ws.weightRepo.Create(ctx, nil, entry)
	if err != nil {
		return nil, fmt.Errorf("save weight entry: %w", err)
	}
	return created, nil
}

func (ws *weightService) Delete(ctx context.Context, userID, entryID uuid.UUID) error {
	existing, err := ws.weightRepo.GetByID(ctx, nil, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWeightNotFound
		}
		return err
	}
	if existing.UserID != userID {
		return ErrNotOwner
	}
	return ws.weightRepo.Delete(ctx, nil, entryID)
}

func (ws *weightService) History(ctx context.Context, userID uuid.UUID, days int) ([]*types.WeightEntry, error) {
	if days <= 0 {
		days = 90
	}
	now := time.Now().UTC()
	return ws.weightRepo.ListByUserBetween(ctx, nil, userID, now.AddDate(0, 0, -days), now.Add(time.Minute))
}

func (ws *weightService) Latest(ctx context.Context, userID uuid.UUID) (*types.WeightEntry, error) {
	return ws.weightRepo.Latest(ctx, nil, userID)
}

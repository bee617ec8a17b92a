package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/foodenough/foodenough-backend/internal/ani"
	"github.com/foodenough/foodenough-backend/internal/logger"
	"github.com/foodenough/foodenough-backend/internal/repos"
	"github.com/foodenough/foodenough-backend/internal/types"
)

var (
	ErrPlanNotFound    = errors.New("workout plan not found")
	ErrSessionNotFound = errors.New("plan session not found")
	ErrSessionDone     = errors.New("session already completed")
)

// Weight assumed when the user has never logged a weigh-in. The burn
// estimate degrades gracefully instead of failing the completion.
const fallbackWeightLBS = 170.0

type SessionInput struct {
	Name         string         `json:"name"`
	ScheduledFor *time.Time     `json:"scheduled_for"`
	Exercises    []ani.Exercise `json:"exercises"`
}

type WorkoutService interface {
	CreatePlan(ctx context.Context, userID uuid.UUID, name string, sessions []SessionInput) (*types.WorkoutPlan, []*types.PlanSession, error)
	ListPlans(ctx context.Context, userID uuid.UUID) ([]*types.WorkoutPlan, error)
	PlanSessions(ctx context.Context, userID, planID uuid.UUID) ([]*types.PlanSession, error)
	ActivatePlan(ctx context.Context, userID, planID uuid.UUID) error
	CompleteSession(ctx context.Context, userID, sessionID uuid.UUID) (*types.BurnLog, error)
}

type workoutService struct {
	db          *gorm.DB
	log         *logger.Logger
	planRepo    repos.WorkoutPlanRepo
	sessionRepo repos.PlanSessionRepo
	burnRepo    repos.BurnLogRepo
	weightRepo  repos.WeightEntryRepo
}

func NewWorkoutService(
	db *gorm.DB,
	baseLog *logger.Logger,
	planRepo repos.WorkoutPlanRepo,
	sessionRepo repos.PlanSessionRepo,
	burnRepo repos.BurnLogRepo,
	weightRepo repos.WeightEntryRepo,
) WorkoutService {
	serviceLog := baseLog.With("service", "WorkoutService")
	return &workoutService{
		db:          db,
		log:         serviceLog,
		planRepo:    planRepo,
		sessionRepo: sessionRepo,
		burnRepo:    burnRepo,
		weightRepo:  weightRepo,
	}
}

func (ws *workoutService) CreatePlan(ctx context.Context, userID uuid.UUID, name string, sessions []SessionInput) (*types.WorkoutPlan, []*types.PlanSession, error) {
	if name == "" {
		return nil, nil, fmt.Errorf("plan name required")
	}
	plan := &types.WorkoutPlan{
		ID:     uuid.New(),
		UserID: userID,
		Name:   name,
	}
	var created []*types.PlanSession
	err := ws.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ws.planRepo.Create(ctx, tx, plan); err != nil {
			return fmt.Errorf("create plan: %w", err)
		}
		for _, in := range sessions {
			raw, err := json.Marshal(in.Exercises)
			if err != nil {
				return fmt.Errorf("encode exercises: %w", err)
			}
			session := &types.PlanSession{
				ID:           uuid.New(),
				PlanID:       plan.ID,
				UserID:       userID,
				Name:         in.Name,
				ScheduledFor: in.ScheduledFor,
				Exercises:    datatypes.JSON(raw),
			}
			s, err := ws.sessionRepo.Create(ctx, tx, session)
			if err != nil {
				return fmt.Errorf("create session: %w", err)
			}
			created = append(created, s)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return plan, created, nil
}

func (ws *workoutService) ListPlans(ctx context.Context, userID uuid.UUID) ([]*types.WorkoutPlan, error) {
	return ws.planRepo.ListByUser(ctx, nil, userID)
}

func (ws *workoutService) PlanSessions(ctx context.Context, userID, planID uuid.UUID) ([]*types.PlanSession, error) {
	if _, err := ws.ownedPlan(ctx, userID, planID); err != nil {
		return nil, err
	}
	return ws.sessionRepo.ListByPlan(ctx, nil, planID)
}

// ActivatePlan makes one plan active and deactivates the previous one.
func (ws *workoutService) ActivatePlan(ctx context.Context, userID, planID uuid.UUID) error {
	if _, err := ws.ownedPlan(ctx, userID, planID); err != nil {
		return err
	}
	return ws.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := ws.planRepo.ActiveByUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		if current != nil && current.ID != planID {
			if err := ws.planRepo.SetActive(ctx, tx, current.ID, false); err != nil {
				return err
			}
		}
		return ws.planRepo.SetActive(ctx, tx, planID, true)
	})
}

// CompleteSession marks the session done and records an estimated burn.
func (ws *workoutService) CompleteSession(ctx context.Context, userID, sessionID uuid.UUID) (*types.BurnLog, error) {
	session, err := ws.sessionRepo.GetByID(ctx, nil, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if _, err := ws.ownedPlan(ctx, userID, session.PlanID); err != nil {
		return nil, err
	}
	if session.Completed {
		return nil, ErrSessionDone
	}

	var exercises []ani.Exercise
	if len(session.Exercises) > 0 {
		if err := json.Unmarshal(session.Exercises, &exercises); err != nil {
			ws.log.Warn("malformed exercises_json, estimating with empty list", "session_id", sessionID, "error", err)
		}
	}

	weightLBS := fallbackWeightLBS
	if latest, err := ws.weightRepo.Latest(ctx, nil, userID); err == nil && latest != nil {
		weightLBS = latest.WeightLBS
	}
	estimate := ani.EstimateWorkoutEnergy(exercises, weightLBS*0.453592)

	now := time.Now().UTC()
	var burn *types.BurnLog
	err = ws.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ws.sessionRepo.MarkCompleted(ctx, tx, sessionID, now); err != nil {
			return fmt.Errorf("mark session completed: %w", err)
		}
		duration := estimate.DurationMinutes
		record := &types.BurnLog{
			ID:              uuid.New(),
			UserID:          userID,
			Timestamp:       now,
			CaloriesBurned:  float64(estimate.Calories),
			DurationMinutes: &duration,
			Source:          types.BurnSourcePlanSession,
		}
		b, err := ws.burnRepo.Create(ctx, tx, record)
		if err != nil {
			return fmt.Errorf("create burn log: %w", err)
		}
		burn = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	ws.log.Info("session completed", "user_id", userID, "session_id", sessionID, "calories", estimate.Calories)
	return burn, nil
}

func (ws *workoutService) ownedPlan(ctx context.Context, userID, planID uuid.UUID) (*types.WorkoutPlan, error) {
	plan, err := ws.planRepo.GetByID(ctx, nil, planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if plan.UserID != userID {
		return nil, ErrNotOwner
	}
	return plan, nil
}

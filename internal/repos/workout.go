package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodenough/foodenough-backend/internal/logger"
	"github.com/foodenough/foodenough-backend/internal/types"
)

type WorkoutPlanRepo interface {
	Create(ctx context.Context, tx *gorm.DB, plan *types.WorkoutPlan) (*types.WorkoutPlan, error)
	GetByID(ctx context.Context, tx *gorm.DB, planID uuid.UUID) (*types.WorkoutPlan, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.WorkoutPlan, error)
	ActiveByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.WorkoutPlan, error)
	SetActive(ctx context.Context, tx *gorm.DB, planID uuid.UUID, active bool) error
}

type workoutPlanRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWorkoutPlanRepo(db *gorm.DB, baseLog *logger.Logger) WorkoutPlanRepo {
	repoLog := baseLog.With("repo", "WorkoutPlanRepo")
	return &workoutPlanRepo{db: db, log: repoLog}
}

func (r *workoutPlanRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *workoutPlanRepo) Create(ctx context.Context, tx *gorm.DB, plan *types.WorkoutPlan) (*types.WorkoutPlan, error) {
	if err := r.conn(tx).WithContext(ctx).Create(plan).Error; err != nil {
		return nil, err
	}
	return plan, nil
}

func (r *workoutPlanRepo) GetByID(ctx context.Context, tx *gorm.DB, planID uuid.UUID) (*types.WorkoutPlan, error) {
	var result types.WorkoutPlan
	if err := r.conn(tx).WithContext(ctx).
		Where("id = ?", planID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *workoutPlanRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.WorkoutPlan, error) {
	var results []*types.WorkoutPlan
	if err := r.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *workoutPlanRepo) ActiveByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.WorkoutPlan, error) {
	var result types.WorkoutPlan
	err := r.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Where("active = ?", true).
		Order("created_at desc").
		First(&result).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *workoutPlanRepo) SetActive(ctx context.Context, tx *gorm.DB, planID uuid.UUID, active bool) error {
	return r.conn(tx).WithContext(ctx).
		Model(&types.WorkoutPlan{}).
		Where("id = ?", planID).
		Update("active", active).Error
}

type PlanSessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, session *types.PlanSession) (*types.PlanSession, error)
	GetByID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*types.PlanSession, error)
	ListByPlan(ctx context.Context, tx *gorm.DB, planID uuid.UUID) ([]*types.PlanSession, error)
	MarkCompleted(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, at time.Time) error
}

type planSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlanSessionRepo(db *gorm.DB, baseLog *logger.Logger) PlanSessionRepo {
	repoLog := baseLog.With("repo", "PlanSessionRepo")
	return &planSessionRepo{db: db, log: repoLog}
}

func (r *planSessionRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *planSessionRepo) Create(ctx context.Context, tx *gorm.DB, session *types.PlanSession) (*types.PlanSession, error) {
	if err := r.conn(tx).WithContext(ctx).Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

func (r *planSessionRepo) GetByID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*types.PlanSession, error) {
	var result types.PlanSession
	if err := r.conn(tx).WithContext(ctx).
		Where("id = ?", sessionID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *planSessionRepo) ListByPlan(ctx context.Context, tx *gorm.DB, planID uuid.UUID) ([]*types.PlanSession, error) {
	var results []*types.PlanSession
	if err := r.conn(tx).WithContext(ctx).
		Where("plan_id = ?", planID).
		Order("created_at asc").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *planSessionRepo) MarkCompleted(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, at time.Time) error {
	return r.conn(tx).WithContext(ctx).
		Model(&types.PlanSession{}).
		Where("id = ?", sessionID).
		Updates(map[string]interface{}{
			"completed":    true,
			"completed_at": at,
		}).Error
}

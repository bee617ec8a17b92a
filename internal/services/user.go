package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodenough/foodenough-backend/internal/ani"
	"github.com/foodenough/foodenough-backend/internal/logger"
	"github.com/foodenough/foodenough-backend/internal/repos"
	"github.com/foodenough/foodenough-backend/internal/types"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrProfileIncomplete = errors.New("profile incomplete: age, sex, height and a weight entry are required")
)

// ProfileUpdate carries a partial profile patch. Nil fields are left alone.
type ProfileUpdate struct {
	Age           *int     `json:"age"`
	Sex           *string  `json:"sex"`
	HeightCM      *float64 `json:"height_cm"`
	ActivityLevel *string  `json:"activity_level"`
	GoalType      *string  `json:"goal_type"`
	IsPremium     *bool    `json:"is_premium"`
}

type UserService interface {
	Get(ctx context.Context, userID uuid.UUID) (*types.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*types.User, error)
	CalculateAndSetGoals(ctx context.Context, userID uuid.UUID) (*types.User, error)
	SetGoals(ctx context.Context, userID uuid.UUID, calories, protein, carbs, fat int) (*types.User, error)
}

type userService struct {
	db         *gorm.DB
	log        *logger.Logger
	userRepo   repos.UserRepo
	weightRepo repos.WeightEntryRepo
}

func NewUserService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, weightRepo repos.WeightEntryRepo) UserService {
	serviceLog := baseLog.With("service", "UserService")
	return &userService{db: db, log: serviceLog, userRepo: userRepo, weightRepo: weightRepo}
}

func (us *userService) Get(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	user, err := us.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (us *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*types.User, error) {
	fields := map[string]interface{}{}
	if update.Age != nil {
		if *update.Age < 13 || *update.Age > 120 {
			return nil, fmt.Errorf("age out of range")
		}
		fields["age"] = *update.Age
	}
	if update.Sex != nil {
		fields["sex"] = *update.Sex
	}
	if update.HeightCM != nil {
		if *update.HeightCM <= 0 {
			return nil, fmt.Errorf("height must be positive")
		}
		fields["height_cm"] = *update.HeightCM
	}
	if update.ActivityLevel != nil {
		fields["activity_level"] = *update.ActivityLevel
	}
	if update.GoalType != nil {
		switch *update.GoalType {
		case types.GoalLose, types.GoalMaintain, types.GoalGain:
		default:
			return nil, fmt.Errorf("goal_type must be lose, maintain or gain")
		}
		fields["goal_type"] = *update.GoalType
	}
	if update.IsPremium != nil {
		fields["is_premium"] = *update.IsPremium
	}
	if len(fields) > 0 {
		if err := us.userRepo.UpdateProfile(ctx, nil, userID, fields); err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
	}
	return us.Get(ctx, userID)
}

// CalculateAndSetGoals derives macro targets from the stored profile and the
// most recent weight entry, then persists them on the user.
func (us *userService) CalculateAndSetGoals(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	user, err := us.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	latest, err := us.weightRepo.Latest(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch latest weight: %w", err)
	}
	if user.Age == nil || user.Sex == nil || user.HeightCM == nil || latest == nil {
		return nil, ErrProfileIncomplete
	}

	activity := ""
	if user.ActivityLevel != nil {
		activity = *user.ActivityLevel
	}
	result := ani.CalculateGoals(ani.GoalInput{
		WeightLBS:     latest.WeightLBS,
		HeightCM:      *user.HeightCM,
		Age:           *user.Age,
		Sex:           *user.Sex,
		ActivityLevel: activity,
		Goal:          user.GoalType,
	})

	if err := us.userRepo.UpdateGoals(ctx, nil, userID, result.Calories, result.Protein, result.Carbs, result.Fat); err != nil {
		return nil, fmt.Errorf("save goals: %w", err)
	}
	us.log.Info("goals calculated", "user_id", userID, "calories", result.Calories)
	return us.Get(ctx, userID)
}

func (us *userService) SetGoals(ctx context.Context, userID uuid.UUID, calories, protein, carbs, fat int) (*types.User, error) {
	if calories <= 0 || protein < 0 || carbs < 0 || fat < 0 {
		return nil, fmt.Errorf("goals must be positive")
	}
	if err := us.userRepo.UpdateGoals(ctx, nil, userID, calories, protein, carbs, fat); err != nil {
		return nil, fmt.Errorf("save goals: %w", err)
	}
	return us.Get(ctx, userID)
}

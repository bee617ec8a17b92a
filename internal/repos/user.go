package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodenough/foodenough-backend/internal/logger"
	"github.com/foodenough/foodenough-backend/internal/types"
)

type UserRepo interface {
	Create(ctx context.Context, tx *gorm.DB, user *types.User) (*types.User, error)
	GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.User, error)
	EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	UpdateProfile(ctx context.Context, tx *gorm.DB, userID uuid.UUID, fields map[string]interface{}) error
	UpdateGoals(ctx context.Context, tx *gorm.DB, userID uuid.UUID, calories, protein, carbs, fat int) error
	UpdateLearnedNEAT(ctx context.Context, tx *gorm.DB, userID uuid.UUID, neat float64) error
	ListPremiumWithGoals(ctx context.Context, tx *gorm.DB) ([]*types.User, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return ur.db
}

func (ur *userRepo) Create(ctx context.Context, tx *gorm.DB, user *types.User) (*types.User, error) {
	if err := ur.conn(tx).WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (ur *userRepo) GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error) {
	var result types.User
	if err := ur.conn(tx).WithContext(ctx).
		Where("id = ?", userID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (ur *userRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.User, error) {
	var result types.User
	if err := ur.conn(tx).WithContext(ctx).
		Where("email = ?", email).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (ur *userRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	var count int64
	if err := ur.conn(tx).WithContext(ctx).
		Model(&types.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ur *userRepo) UpdateProfile(ctx context.Context, tx *gorm.DB, userID uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return ur.conn(tx).WithContext(ctx).
		Model(&types.User{}).
		Where("id = ?", userID).
		Updates(fields).Error
}

func (ur *userRepo) UpdateGoals(ctx context.Context, tx *gorm.DB, userID uuid.UUID, calories, protein, carbs, fat int) error {
	return ur.conn(tx).WithContext(ctx).
		Model(&types.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"calorie_goal": calories,
			"protein_goal": protein,
			"carbs_goal":   carbs,
			"fat_goal":     fat,
		}).Error
}

func (ur *userRepo) UpdateLearnedNEAT(ctx context.Context, tx *gorm.DB, userID uuid.UUID, neat float64) error {
	return ur.conn(tx).WithContext(ctx).
		Model(&types.User{}).
		Where("id = ?", userID).
		Update("learned_neat", neat).Error
}

func (ur *userRepo) ListPremiumWithGoals(ctx context.Context, tx *gorm.DB) ([]*types.User, error) {
	var results []*types.User
	if err := ur.conn(tx).WithContext(ctx).
		Where("is_premium = ?", true).
		Where("calorie_goal IS NOT NULL").
		Where("protein_goal IS NOT NULL").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

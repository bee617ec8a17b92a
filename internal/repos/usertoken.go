package repos

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/foodenough/foodenough-backend/internal/logger"
	"github.com/foodenough/foodenough-backend/internal/types"
)

type UserTokenRepo interface {
	Create(ctx context.Context, tx *gorm.DB, token *types.UserToken) (*types.UserToken, error)
	GetByRefreshToken(ctx context.Context, tx *gorm.DB, refreshToken string) (*types.UserToken, error)
	Revoke(ctx context.Context, tx *gorm.DB, refreshToken string) error
	DeleteExpired(ctx context.Context, tx *gorm.DB, before time.Time) error
}

type userTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	repoLog := baseLog.With("repo", "UserTokenRepo")
	return &userTokenRepo{db: db, log: repoLog}
}

func (r *userTokenRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *userTokenRepo) Create(ctx context.Context, tx *gorm.DB, token *types.UserToken) (*types.UserToken, error) {
	if err := r.conn(tx).WithContext(ctx).Create(token).Error; err != nil {
		return nil, err
	}
	return token, nil
}

func (r *userTokenRepo) GetByRefreshToken(ctx context.Context, tx *gorm.DB, refreshToken string) (*types.UserToken, error) {
	var result types.UserToken
	if err := r.conn(tx).WithContext(ctx).
		Where("refresh_token = ?", refreshToken).
		Where("revoked = ?", false).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *userTokenRepo) Revoke(ctx context.Context, tx *gorm.DB, refreshToken string) error {
	return r.conn(tx).WithContext(ctx).
		Model(&types.UserToken{}).
		Where("refresh_token = ?", refreshToken).
		Update("revoked", true).Error
}

func (r *userTokenRepo) DeleteExpired(ctx context.Context, tx *gorm.DB, before time.Time) error {
	return r.conn(tx).WithContext(ctx).
		Where("expires_at < ?", before).
		Delete(&types.UserToken{}).Error
}

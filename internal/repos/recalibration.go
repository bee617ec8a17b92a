package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/foodenough/foodenough-backend/internal/logger"
	"github.com/foodenough/foodenough-backend/internal/types"
)

// ErrDuplicatePeriod means a record for this user and period day already
// exists: a concurrent trigger won the race inside the cooldown window.
var ErrDuplicatePeriod = errors.New("recalibration record already exists for this period")

type RecalibrationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, record *types.RecalibrationRecord) (*types.RecalibrationRecord, error)
	LatestByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.RecalibrationRecord, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.RecalibrationRecord, error)
}

type recalibrationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecalibrationRepo(db *gorm.DB, baseLog *logger.Logger) RecalibrationRepo {
	repoLog := baseLog.With("repo", "RecalibrationRepo")
	return &recalibrationRepo{db: db, log: repoLog}
}

func (r *recalibrationRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *recalibrationRepo) Create(ctx context.Context, tx *gorm.DB, record *types.RecalibrationRecord) (*types.RecalibrationRecord, error) {
	if record.PeriodDay == "" {
		record.PeriodDay = record.PeriodEnd.UTC().Format("2006-01-02")
	}
	if err := r.conn(tx).WithContext(ctx).Create(record).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicatePeriod
		}
		return nil, err
	}
	return record, nil
}

// isUniqueViolation recognizes the unique-index conflict on both backends:
// SQLSTATE 23505 from postgres, gorm's translated ErrDuplicatedKey otherwise.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *recalibrationRepo) LatestByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.RecalibrationRecord, error) {
	var result types.RecalibrationRecord
	err := r.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
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

func (r *recalibrationRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.RecalibrationRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var results []*types.RecalibrationRecord
	if err := r.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/foodenough/foodenough-backend/internal/logger"
	"github.com/foodenough/foodenough-backend/internal/types"
	"github.com/foodenough/foodenough-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewPostgresService opens the primary store. DB_DRIVER=sqlite switches to a
// local file database for development; postgres is the default.
func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	driver := utils.GetEnv("DB_DRIVER", "postgres", log)

	var (
		db  *gorm.DB
		err error
	)
	switch driver {
	case "sqlite":
		path := utils.GetEnv("SQLITE_PATH", "foodenough.db", log)
		log.Info("Connecting to SQLite...", "path", path)
		db, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	default:
		postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
		postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
		postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
		postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
		postgresName := utils.GetEnv("POSTGRES_NAME", "foodenough", log)

		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

		log.Info("Connecting to Postgres...")
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
		})
	}
	if err != nil {
		log.Error("Failed to connect to database", "driver", driver, "error", err)
		return nil, fmt.Errorf("Failed to connect to database: %w", err)
	}

	if driver != "sqlite" {
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
			log.Error("Failed to enable uuid-ossp extension", "error", err)
			return nil, fmt.Errorf("Failed to enable uuid-ossp extension: %w", err)
		}
	}

	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.FoodLogEntry{},
		&types.WeightEntry{},
		&types.WorkoutPlan{},
		&types.PlanSession{},
		&types.BurnLog{},
		&types.HealthMetric{},
		&types.RecalibrationRecord{},
		&types.Insight{},
	)
	if err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/foodenough/foodenough-backend/internal/clients/redislock"
	"github.com/foodenough/foodenough-backend/internal/db"
	"github.com/foodenough/foodenough-backend/internal/handlers"
	"github.com/foodenough/foodenough-backend/internal/logger"
	"github.com/foodenough/foodenough-backend/internal/middleware"
	"github.com/foodenough/foodenough-backend/internal/observability"
	"github.com/foodenough/foodenough-backend/internal/repos"
	"github.com/foodenough/foodenough-backend/internal/server"
	"github.com/foodenough/foodenough-backend/internal/services"
	"github.com/foodenough/foodenough-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 604800, log)
	sweepIntervalHours := utils.GetEnvAsInt("RECAL_SWEEP_INTERVAL_HOURS", 6, log)

	// Tracing
	ctx := context.Background()
	shutdownTracing := observability.InitTracing(ctx, log, observability.Config{
		ServiceName: "foodenough-backend",
		Environment: utils.GetEnv("ENVIRONMENT", "development", log),
		Version:     utils.GetEnv("SERVICE_VERSION", "dev", log),
	})
	if shutdownTracing != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTracing(shutdownCtx)
		}()
	}

	// Database
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Database init failed", "error", err)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Redis lock (no-op when REDIS_ADDR is unset)
	locker, err := redislock.New(log)
	if err != nil {
		log.Fatal("Redis init failed", "error", err)
	}
	defer locker.Close()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	foodLogRepo := repos.NewFoodLogRepo(thePG, log)
	weightRepo := repos.NewWeightEntryRepo(thePG, log)
	planRepo := repos.NewWorkoutPlanRepo(thePG, log)
	sessionRepo := repos.NewPlanSessionRepo(thePG, log)
	burnRepo := repos.NewBurnLogRepo(thePG, log)
	metricRepo := repos.NewHealthMetricRepo(thePG, log)
	recalRepo := repos.NewRecalibrationRepo(thePG, log)
	insightRepo := repos.NewInsightRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	var parser services.NutritionParser
	parser, err = services.NewNutritionParser(log)
	if err != nil {
		log.Warn("Nutrition parser unavailable, text logging disabled", "error", err)
		parser = nil
	}
	authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, jwtSecretKey,
		time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	userService := services.NewUserService(thePG, log, userRepo, weightRepo)
	foodLogService := services.NewFoodLogService(thePG, log, foodLogRepo, userRepo, parser)
	weightService := services.NewWeightService(thePG, log, weightRepo)
	workoutService := services.NewWorkoutService(thePG, log, planRepo, sessionRepo, burnRepo, weightRepo)
	healthMetricService := services.NewHealthMetricService(thePG, log, metricRepo, burnRepo)
	insightService := services.NewInsightService(thePG, log, insightRepo)
	recalService := services.NewRecalibrationService(
		thePG, log, locker,
		userRepo, foodLogRepo, weightRepo,
		planRepo, sessionRepo, burnRepo,
		metricRepo, recalRepo, insightRepo,
		time.Duration(sweepIntervalHours)*time.Hour,
	)
	recalService.StartWorker(ctx)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	foodLogHandler := handlers.NewFoodLogHandler(foodLogService)
	weightHandler := handlers.NewWeightHandler(weightService)
	workoutHandler := handlers.NewWorkoutHandler(workoutService)
	healthMetricHandler := handlers.NewHealthMetricHandler(healthMetricService)
	recalHandler := handlers.NewRecalibrationHandler(recalService)
	insightHandler := handlers.NewInsightHandler(insightService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthMiddleware:       authMiddleware,
		AuthHandler:          authHandler,
		UserHandler:          userHandler,
		FoodLogHandler:       foodLogHandler,
		WeightHandler:        weightHandler,
		WorkoutHandler:       workoutHandler,
		HealthMetricHandler:  healthMetricHandler,
		RecalibrationHandler: recalHandler,
		InsightHandler:       insightHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server failed", "error", err)
	}
}

package server

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/foodenough/foodenough-backend/internal/handlers"
	"github.com/foodenough/foodenough-backend/internal/middleware"
)

type RouterConfig struct {
	AuthMiddleware       *middleware.AuthMiddleware
	AuthHandler          *handlers.AuthHandler
	UserHandler          *handlers.UserHandler
	FoodLogHandler       *handlers.FoodLogHandler
	WeightHandler        *handlers.WeightHandler
	WorkoutHandler       *handlers.WorkoutHandler
	HealthMetricHandler  *handlers.HealthMetricHandler
	RecalibrationHandler *handlers.RecalibrationHandler
	InsightHandler       *handlers.InsightHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("foodenough-backend"))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)
		api.POST("/refresh", cfg.AuthHandler.Refresh)
	}

	// Protected
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	protected.POST("/logout", cfg.AuthHandler.Logout)

	protected.GET("/me", cfg.UserHandler.GetMe)
	protected.PATCH("/me", cfg.UserHandler.UpdateProfile)
	protected.POST("/goals/calculate", cfg.UserHandler.CalculateGoals)
	protected.PUT("/goals", cfg.UserHandler.SetGoals)

	protected.POST("/logs", cfg.FoodLogHandler.LogFromText)
	protected.POST("/logs/preview", cfg.FoodLogHandler.Preview)
	protected.POST("/logs/manual", cfg.FoodLogHandler.LogManual)
	protected.GET("/logs", cfg.FoodLogHandler.Today)
	protected.GET("/logs/week", cfg.FoodLogHandler.Week)
	protected.GET("/logs/export", cfg.FoodLogHandler.Export)
	protected.PUT("/logs/:id", cfg.FoodLogHandler.Update)
	protected.DELETE("/logs/:id", cfg.FoodLogHandler.Delete)

	protected.POST("/weight", cfg.WeightHandler.Log)
	protected.GET("/weight", cfg.WeightHandler.History)
	protected.DELETE("/weight/:id", cfg.WeightHandler.Delete)

	protected.POST("/workouts/plans", cfg.WorkoutHandler.CreatePlan)
	protected.GET("/workouts/plans", cfg.WorkoutHandler.ListPlans)
	protected.GET("/workouts/plans/:id/sessions", cfg.WorkoutHandler.PlanSessions)
	protected.POST("/workouts/plans/:id/activate", cfg.WorkoutHandler.ActivatePlan)
	protected.POST("/workouts/sessions/:id/complete", cfg.WorkoutHandler.CompleteSession)

	protected.POST("/health-metrics", cfg.HealthMetricHandler.SyncDays)
	protected.GET("/health-metrics", cfg.HealthMetricHandler.History)
	protected.POST("/burn-logs", cfg.HealthMetricHandler.SyncWorkouts)

	protected.POST("/recalibrate", cfg.RecalibrationHandler.Trigger)
	protected.GET("/recalibrations/latest", cfg.RecalibrationHandler.Latest)
	protected.GET("/recalibrations", cfg.RecalibrationHandler.History)
	protected.GET("/insights", cfg.InsightHandler.List)

	return router
}

func allowedOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ALLOW_ORIGINS"))
	if raw == "" {
		return []string{"http://localhost:3000", "http://localhost:5173"}
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

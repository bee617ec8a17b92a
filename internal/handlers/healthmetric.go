package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/foodenough/foodenough-backend/internal/middleware"
	"github.com/foodenough/foodenough-backend/internal/services"
)

type HealthMetricHandler struct {
	healthMetricService services.HealthMetricService
}

func NewHealthMetricHandler(healthMetricService services.HealthMetricService) *HealthMetricHandler {
	return &HealthMetricHandler{healthMetricService: healthMetricService}
}

// SyncDays upserts device day summaries; re-syncing a day overwrites it.
func (hh *HealthMetricHandler) SyncDays(c *gin.Context) {
	userID, ok := middleware.AuthedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req struct {
		Days []services.DeviceDayInput `json:"days"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Days) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days required"})
		return
	}
	result, err := hh.healthMetricService.SyncDays(c.Request.Context(), userID, req.Days)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// SyncWorkouts records device workouts; external ids make this idempotent.
func (hh *HealthMetricHandler) SyncWorkouts(c *gin.Context) {
	userID, ok := middleware.AuthedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req struct {
		Workouts []services.DeviceWorkoutInput `json:"workouts"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Workouts) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workouts required"})
		return
	}
	result, err := hh.healthMetricService.SyncWorkouts(c.Request.Context(), userID, req.Workouts)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (hh *HealthMetricHandler) History(c *gin.Context) {
	userID, ok := middleware.AuthedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	days := 30
	if v := c.Query("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		days = parsed
	}
	metrics, err := hh.healthMetricService.History(c.Request.Context(), userID, days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load metrics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"metrics": metrics})
}

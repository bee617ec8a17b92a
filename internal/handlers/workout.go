package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foodenough/foodenough-backend/internal/middleware"
	"github.com/foodenough/foodenough-backend/internal/services"
)

type WorkoutHandler struct {
	workoutService services.WorkoutService
}

func NewWorkoutHandler(workoutService services.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

func (wh *WorkoutHandler) CreatePlan(c *gin.Context) {
	userID, ok := middleware.AuthedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req struct {
		Name     string                  `json:"name"`
		Sessions []services.SessionInput `json:"sessions"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	plan, sessions, err := wh.workoutService.CreatePlan(c.Request.Context(), userID, req.Name, req.Sessions)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"plan": plan, "sessions": sessions})
}

func (wh *WorkoutHandler) ListPlans(c *gin.Context) {
	userID, ok := middleware.AuthedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	plans, err := wh.workoutService.ListPlans(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load plans"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

func (wh *WorkoutHandler) PlanSessions(c *gin.Context) {
	userID, ok := middleware.AuthedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plan id"})
		return
	}
	sessions, err := wh.workoutService.PlanSessions(c.Request.Context(), userID, planID)
	if err != nil {
		respondOwnershipError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (wh *WorkoutHandler) ActivatePlan(c *gin.Context) {
	userID, ok := middleware.AuthedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plan id"})
		return
	}
	if err := wh.workoutService.ActivatePlan(c.Request.Context(), userID, planID); err != nil {
		respondOwnershipError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "plan activated"})
}

// CompleteSession marks a session done and returns the estimated burn.
func (wh *WorkoutHandler) CompleteSession(c *gin.Context) {
	userID, ok := middleware.AuthedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}
	burn, err := wh.workoutService.CompleteSession(c.Request.Context(), userID, sessionID)
	if err != nil {
		if errors.Is(err, services.ErrSessionDone) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		respondOwnershipError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"burn": burn})
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/foodenough/foodenough-backend/internal/middleware"
	"github.com/foodenough/foodenough-backend/internal/services"
)

type RecalibrationHandler struct {
	recalService services.RecalibrationService
}

func NewRecalibrationHandler(recalService services.RecalibrationService) *RecalibrationHandler {
	return &RecalibrationHandler{recalService: recalService}
}

// Trigger runs a recalibration for the caller right now, subject to the
// same eligibility gates the scheduled sweep applies.
func (rh *RecalibrationHandler) Trigger(c *gin.Context) {
	userID, ok := middleware.AuthedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	record, err := rh.recalService.TriggerForUser(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotPremium):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrGoalsNotSet),
			errors.Is(err, services.ErrInsufficientHistory),
			errors.Is(err, services.ErrInsufficientLogging):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrCooldown), errors.Is(err, services.ErrRecalInProgress):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "recalibration failed"})
		}
		return
	}
	c.JSON(http.StatusOK, record)
}

func (rh *RecalibrationHandler) Latest(c *gin.Context) {
	userID, ok := middleware.AuthedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	record, err := rh.recalService.Latest(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load recalibration"})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no recalibration yet"})
		return
	}
	c.JSON(http.StatusOK, record)
}

func (rh *RecalibrationHandler) History(c *gin.Context) {
	userID, ok := middleware.AuthedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	limit := 20
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}
	records, err := rh.recalService.History(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recalibrations": records})
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/foodenough/foodenough-backend/internal/middleware"
	"github.com/foodenough/foodenough-backend/internal/services"
)

type InsightHandler struct {
	insightService services.InsightService
}

func NewInsightHandler(insightService services.InsightService) *InsightHandler {
	return &InsightHandler{insightService: insightService}
}

func (ih *InsightHandler) List(c *gin.Context) {
	userID, ok := middleware.AuthedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	limit := 50
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}
	insights, err := ih.insightService.List(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load insights"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"insights": insights})
}

package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foodenough/foodenough-backend/internal/middleware"
	"github.com/foodenough/foodenough-backend/internal/services"
)

type FoodLogHandler struct {
	foodLogService services.FoodLogService
}

func NewFoodLogHandler(foodLogService services.FoodLogService) *FoodLogHandler {
	return &FoodLogHandler{foodLogService: foodLogService}
}

// LogFromText sends free text through the nutrition parser and stores the
// structured result.
func (fh *FoodLogHandler) LogFromText(c *gin.Context) {
	userID, ok := middleware.AuthedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req struct {
		Text      string    `json:"text"`
		MealType  string    `json:"meal_type"`
		Timestamp time.Time `json:"timestamp"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text required"})
		return
	}
	entry, err := fh.foodLogService.LogFromText(c.Request.Context(), userID, req.Text, req.MealType, req.Timestamp)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// Preview parses text into macros without saving an entry.
func (fh *FoodLogHandler) Preview(c *gin.Context) {
	if _, ok := middleware.AuthedUserID(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text required"})
		return
	}
	parsed, err := fh.foodLogService.Preview(c.Request.Context(), req.Text)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, parsed)
}

func (fh *FoodLogHandler) LogManual(c *gin.Context) {
	userID, ok := middleware.AuthedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req services.ManualEntry
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	entry, err := fh.foodLogService.LogManual(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (fh *FoodLogHandler) Update(c *gin.Context) {
	userID, ok := middleware.AuthedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
		return
	}
	var req services.ManualEntry
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	entry, err := fh.foodLogService.Update(c.Request.Context(), userID, entryID, req)
	if err != nil {
		respondOwnershipError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (fh *FoodLogHandler) Delete(c *gin.Context) {
	userID, ok := middleware.AuthedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
		return
	}
	if err := fh.foodLogService.Delete(c.Request.Context(), userID, entryID); err != nil {
		respondOwnershipError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (fh *FoodLogHandler) Today(c *gin.Context) {
	userID, ok := middleware.AuthedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	summary, err := fh.foodLogService.DaySummary(c.Request.Context(), userID, time.Now().UTC())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load summary"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (fh *FoodLogHandler) Week(c *gin.Context) {
	userID, ok := middleware.AuthedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	summaries, err := fh.foodLogService.WeekSummary(c.Request.Context(), userID, time.Now().UTC())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load summary"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": summaries})
}

// Export streams the user's food log for a date range as CSV. Defaults to
// the trailing 90 days.
func (fh *FoodLogHandler) Export(c *gin.Context) {
	userID, ok := middleware.AuthedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -90)
	to := now
	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
			return
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
			return
		}
		to = parsed.AddDate(0, 0, 1)
	}
	data, err := fh.foodLogService.ExportCSV(c.Request.Context(), userID, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	c.Header("Content-Disposition", "attachment; filename=food_log.csv")
	c.Data(http.StatusOK, "text/csv", data)
}

func respondOwnershipError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEntryNotFound), errors.Is(err, services.ErrWeightNotFound),
		errors.Is(err, services.ErrPlanNotFound), errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

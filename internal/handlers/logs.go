package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rsvp-harvester-go/internal/models"
)

const defaultHistoryLimit = 100

// GetParseLogs returns the newest per-message parse outcomes
func (h *Handlers) GetParseLogs(c *gin.Context) {
	logs, err := h.ledger.RecentParseLogs(historyLimit(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database_error",
			Message: "Failed to fetch parse logs",
			Code:    http.StatusInternalServerError,
		})
		return
	}
	c.JSON(http.StatusOK, logs)
}

// GetRuns returns the newest harvest cycle summaries
func (h *Handlers) GetRuns(c *gin.Context) {
	runs, err := h.ledger.RecentRuns(historyLimit(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database_error",
			Message: "Failed to fetch runs",
			Code:    http.StatusInternalServerError,
		})
		return
	}
	c.JSON(http.StatusOK, runs)
}

func historyLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", ""))
	if err != nil || limit <= 0 {
		return defaultHistoryLimit
	}
	return limit
}

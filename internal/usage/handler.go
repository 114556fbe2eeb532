package usage

import (
	"net/http"

	"agendamail-backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type UsageHandler struct {
	tracker *Tracker
}

func NewUsageHandler(tracker *Tracker) *UsageHandler {
	return &UsageHandler{tracker: tracker}
}

// GetUsage returns the user's per-day operation counters
// GET /api/usage
func (h *UsageHandler) GetUsage(c *gin.Context) {
	userID := c.GetString("userID")

	days, err := h.tracker.Summary(c.Request.Context(), userID)
	if err != nil {
		apperrors.Respond(c, apperrors.Storage(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"usage": days})
}

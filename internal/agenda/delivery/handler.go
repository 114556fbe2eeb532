package delivery

import (
	"net/http"
	"strconv"

	"agendamail-backend/internal/agenda/usecase"
	"agendamail-backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type AgendaHandler struct {
	agendaUsecase usecase.AgendaUsecase
}

func NewAgendaHandler(agendaUsecase usecase.AgendaUsecase) *AgendaHandler {
	return &AgendaHandler{
		agendaUsecase: agendaUsecase,
	}
}

type SyncRequest struct {
	AccountID string `json:"accountId" binding:"required"`
}

// ListAgenda returns the user's agenda ordered by urgency
// GET /api/agenda?limit=&offset=
func (h *AgendaHandler) ListAgenda(c *gin.Context) {
	userID := c.GetString("userID")

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			apperrors.Respond(c, apperrors.Validation("limit must be an integer between 1 and 200"))
			return
		}
		limit = parsed
	}

	offset := 0
	if raw := c.Query("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			apperrors.Respond(c, apperrors.Validation("offset must be a non-negative integer"))
			return
		}
		offset = parsed
	}

	items, total, err := h.agendaUsecase.List(userID, limit, offset)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": total,
	})
}

// SyncAgenda pulls fresh mail and calendar records for one mailbox
// POST /api/agenda/sync
func (h *AgendaHandler) SyncAgenda(c *gin.Context) {
	userID := c.GetString("userID")

	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.Validation("accountId is required"))
		return
	}

	count, err := h.agendaUsecase.SyncAccount(c.Request.Context(), userID, req.AccountID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"synced": count})
}

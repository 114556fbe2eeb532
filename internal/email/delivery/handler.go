package delivery

import (
	"net/http"
	"strconv"

	"agendamail-backend/internal/email/dto"
	emaildomain "agendamail-backend/internal/email/domain"
	"agendamail-backend/internal/email/usecase"
	"agendamail-backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type EmailHandler struct {
	emailUsecase usecase.EmailUsecase
}

func NewEmailHandler(emailUsecase usecase.EmailUsecase) *EmailHandler {
	return &EmailHandler{
		emailUsecase: emailUsecase,
	}
}

var validThreadTypes = map[string]bool{
	"inbox":   true,
	"sent":    true,
	"draft":   true,
	"starred": true,
	"unread":  true,
}

// GetThreads lists threads from the primary mailbox. All parameters are
// validated before any upstream call is made.
// GET /api/google/threads?limit=&fromEmail=&type=&nextPageToken=&q=&labelId=
func (h *EmailHandler) GetThreads(c *gin.Context) {
	userID := c.GetString("userID")
	sessionEmail := c.GetString("userEmail")

	limit := int64(20)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 || parsed > 500 {
			apperrors.Respond(c, apperrors.Validation("limit must be an integer between 1 and 500"))
			return
		}
		limit = parsed
	}

	threadType := c.Query("type")
	if threadType != "" && !validThreadTypes[threadType] {
		apperrors.Respond(c, apperrors.Validation("type must be one of inbox, sent, draft, starred, unread"))
		return
	}

	query := emaildomain.ThreadQuery{
		LabelID:    c.Query("labelId"),
		Query:      c.Query("q"),
		FromEmail:  c.Query("fromEmail"),
		Type:       threadType,
		MaxResults: limit,
		PageToken:  c.Query("nextPageToken"),
	}

	page, err := h.emailUsecase.ListThreads(c.Request.Context(), userID, sessionEmail, query)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetMessage fetches a single message from the primary mailbox
// GET /api/google/messages/:messageId
func (h *EmailHandler) GetMessage(c *gin.Context) {
	userID := c.GetString("userID")
	sessionEmail := c.GetString("userEmail")

	messageID := c.Param("messageId")
	if messageID == "" {
		apperrors.Respond(c, apperrors.Validation("messageId is required"))
		return
	}

	msg, err := h.emailUsecase.GetMessage(c.Request.Context(), userID, sessionEmail, messageID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, msg)
}

// SendEmail sends a new message from the primary mailbox
// POST /api/google/send
func (h *EmailHandler) SendEmail(c *gin.Context) {
	userID := c.GetString("userID")
	sessionEmail := c.GetString("userEmail")

	var req dto.SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.Validation("to, subject and body are required"))
		return
	}
	body := req.Content()
	if body == "" {
		apperrors.Respond(c, apperrors.Validation("to, subject and body are required"))
		return
	}

	if err := h.emailUsecase.SendMessage(c.Request.Context(), userID, sessionEmail, req.To, req.Subject, body); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SendResponse{Status: "ok"})
}

// ReplyToMessage replies within the thread the message belongs to
// POST /api/google/messages/:messageId/reply
func (h *EmailHandler) ReplyToMessage(c *gin.Context) {
	userID := c.GetString("userID")
	sessionEmail := c.GetString("userEmail")

	messageID := c.Param("messageId")
	if messageID == "" {
		apperrors.Respond(c, apperrors.Validation("messageId is required"))
		return
	}

	var req dto.ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.Validation("reply body is required"))
		return
	}
	body := req.Content()
	if body == "" {
		apperrors.Respond(c, apperrors.Validation("reply body is required"))
		return
	}

	id, threadID, err := h.emailUsecase.ReplyToMessage(c.Request.Context(), userID, sessionEmail, messageID, body)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"messageId": id,
		"threadId":  threadID,
	})
}

// SendDraft sends a previously prepared draft. Voice clients hit this with
// a plain GET so the draft id travels as a query parameter.
// GET /api/voice/send?draftId=
func (h *EmailHandler) SendDraft(c *gin.Context) {
	userID := c.GetString("userID")
	sessionEmail := c.GetString("userEmail")

	draftID := c.Query("draftId")
	if draftID == "" {
		apperrors.Respond(c, apperrors.Validation("draftId is required"))
		return
	}

	messageID, threadID, err := h.emailUsecase.SendDraft(c.Request.Context(), userID, sessionEmail, draftID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.DraftSendResponse{
		Success:   true,
		MessageID: messageID,
		ThreadID:  threadID,
	})
}

// WatchMailbox registers the primary mailbox for push notifications
// POST /api/google/watch
func (h *EmailHandler) WatchMailbox(c *gin.Context) {
	userID := c.GetString("userID")
	sessionEmail := c.GetString("userEmail")

	if err := h.emailUsecase.Watch(c.Request.Context(), userID, sessionEmail); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "watch registered"})
}

// StopWatchMailbox cancels the push notification registration
// DELETE /api/google/watch
func (h *EmailHandler) StopWatchMailbox(c *gin.Context) {
	userID := c.GetString("userID")
	sessionEmail := c.GetString("userEmail")

	if err := h.emailUsecase.StopWatch(c.Request.Context(), userID, sessionEmail); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "watch stopped"})
}

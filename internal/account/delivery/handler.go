package delivery

import (
	"net/http"

	"agendamail-backend/internal/account/usecase"
	"agendamail-backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	accountUsecase usecase.AccountUsecase
}

func NewAccountHandler(accountUsecase usecase.AccountUsecase) *AccountHandler {
	return &AccountHandler{
		accountUsecase: accountUsecase,
	}
}

type LinkAccountRequest struct {
	Code string `json:"code" binding:"required"`
}

// ListAccounts returns the user's linked mailboxes
// GET /api/accounts
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	userID := c.GetString("userID")

	accounts, err := h.accountUsecase.ListAccounts(userID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

// LinkAccount binds a new Google mailbox to the user
// POST /api/accounts/link
func (h *AccountHandler) LinkAccount(c *gin.Context) {
	userID := c.GetString("userID")

	var req LinkAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.Validation("authorization code is required"))
		return
	}

	account, err := h.accountUsecase.LinkAccount(c.Request.Context(), userID, req.Code)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, account)
}

// UnlinkAccount removes a mailbox and its credential
// DELETE /api/accounts/:id
func (h *AccountHandler) UnlinkAccount(c *gin.Context) {
	userID := c.GetString("userID")
	accountID := c.Param("id")

	if err := h.accountUsecase.UnlinkAccount(userID, accountID); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "account unlinked"})
}

// RedirectToApp resolves the primary account and returns where the client
// should land; an empty account list means onboarding.
// POST /api/redirect-to-app
func (h *AccountHandler) RedirectToApp(c *gin.Context) {
	userID := c.GetString("userID")
	sessionEmail := c.GetString("userEmail")

	redirectURL, err := h.accountUsecase.RedirectToApp(userID, sessionEmail)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"redirectUrl": redirectURL})
}

package usecase

import (
	"context"

	accountdomain "agendamail-backend/internal/account/domain"
)

// AccountUsecase defines mailbox linking and primary-account operations
type AccountUsecase interface {
	// LinkAccount exchanges a Google OAuth authorization code and binds the
	// resulting mailbox (and its credential) to the user.
	LinkAccount(ctx context.Context, userID, authCode string) (*accountdomain.EmailAccount, error)

	ListAccounts(userID string) ([]accountdomain.EmailAccount, error)
	UnlinkAccount(userID, accountID string) error

	// RedirectToApp resolves the user's primary account and returns the app
	// URL to land on.
	RedirectToApp(userID, sessionEmail string) (string, error)

	// PrimaryAccount resolves the primary account id for the session.
	PrimaryAccount(userID, sessionEmail string) (string, error)

	// Credentials returns the stored Google tokens for an account plus a
	// callback that persists refreshed tokens.
	Credentials(userID, accountID string) (accessToken, refreshToken string, onRefresh accountdomain.TokenUpdateFunc, err error)

	// AccountByAddress looks up a mailbox by address. Used by the
	// notification service to route Gmail push updates.
	AccountByAddress(email string) (*accountdomain.EmailAccount, error)

	// SetAgendaCleaner allows wiring agenda cleanup after creation
	SetAgendaCleaner(cleaner AgendaCleaner)
}

// AgendaCleaner removes the agenda records derived from one mailbox.
// Satisfied by the agenda repository; wired from main so unlinking leaves
// no orphaned rows behind.
type AgendaCleaner interface {
	DeleteByAccount(userID, accountID string) error
}

package repository

import (
	"time"

	accountdomain "agendamail-backend/internal/account/domain"
)

// AccountRepository defines the interface for email account and credential
// data access. Every query is scoped by userID so no code path can touch
// rows outside the caller's own account.
type AccountRepository interface {
	CreateAccount(account *accountdomain.EmailAccount) error
	FindAccountByID(userID, id string) (*accountdomain.EmailAccount, error)
	FindAccountByEmail(userID, email string) (*accountdomain.EmailAccount, error)
	FindAccountByAddress(email string) (*accountdomain.EmailAccount, error)
	ListAccountsByUser(userID string) ([]accountdomain.EmailAccount, error)
	DeleteAccount(userID, id string) error

	SaveLink(link *accountdomain.AccountLink) error
	FindLink(userID, accountID, provider string) (*accountdomain.AccountLink, error)
	UpdateLinkTokens(userID, linkID, accessToken, refreshToken string, expiry time.Time) error
	DeleteLinksByAccount(userID, accountID string) error
}

package usecase

import (
	"context"

	accountdomain "agendamail-backend/internal/account/domain"
	emaildomain "agendamail-backend/internal/email/domain"
)

// EmailUsecase defines the Gmail operations exposed to delivery. Every
// operation resolves the session's primary mailbox before touching the
// network.
type EmailUsecase interface {
	ListThreads(ctx context.Context, userID, sessionEmail string, query emaildomain.ThreadQuery) (*emaildomain.ThreadPage, error)
	GetMessage(ctx context.Context, userID, sessionEmail, messageID string) (*emaildomain.Message, error)
	SendMessage(ctx context.Context, userID, sessionEmail, to, subject, body string) error
	ReplyToMessage(ctx context.Context, userID, sessionEmail, messageID, body string) (messageIDOut, threadID string, err error)
	SendDraft(ctx context.Context, userID, sessionEmail, draftID string) (messageID, threadID string, err error)

	// Watch registers the primary mailbox for Gmail push notifications on
	// the configured Pub/Sub topic; StopWatch cancels the registration.
	Watch(ctx context.Context, userID, sessionEmail string) error
	StopWatch(ctx context.Context, userID, sessionEmail string) error

	// SetUsageRecorder allows wiring the usage tracker after creation
	SetUsageRecorder(rec UsageRecorder)
}

// MailService is the slice of the Gmail wrapper the usecase needs
type MailService interface {
	ListThreads(ctx context.Context, accessToken, refreshToken string, query emaildomain.ThreadQuery, onTokenRefresh accountdomain.TokenUpdateFunc) (*emaildomain.ThreadPage, error)
	GetMessage(ctx context.Context, accessToken, refreshToken, messageID string, onTokenRefresh accountdomain.TokenUpdateFunc) (*emaildomain.Message, error)
	SendMessage(ctx context.Context, accessToken, refreshToken, fromName, fromEmail, to, subject, body string, onTokenRefresh accountdomain.TokenUpdateFunc) (string, string, error)
	ReplyToMessage(ctx context.Context, accessToken, refreshToken, fromName, fromEmail, messageID, body string, onTokenRefresh accountdomain.TokenUpdateFunc) (string, string, error)
	SendDraft(ctx context.Context, accessToken, refreshToken, draftID string, onTokenRefresh accountdomain.TokenUpdateFunc) (string, string, error)
	Watch(ctx context.Context, accessToken, refreshToken string, topicName string, onTokenRefresh accountdomain.TokenUpdateFunc) error
	Stop(ctx context.Context, accessToken, refreshToken string, onTokenRefresh accountdomain.TokenUpdateFunc) error
}

// AccountResolver is the slice of the account usecase the mail operations
// need
type AccountResolver interface {
	PrimaryAccount(userID, sessionEmail string) (string, error)
	ListAccounts(userID string) ([]accountdomain.EmailAccount, error)
	Credentials(userID, accountID string) (accessToken, refreshToken string, onRefresh accountdomain.TokenUpdateFunc, err error)
}

// UsageRecorder tracks per-user operation costs
type UsageRecorder interface {
	Record(ctx context.Context, userID, op string, cost int64) error
}

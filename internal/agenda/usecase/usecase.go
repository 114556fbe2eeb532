package usecase

import (
	"context"
	"time"

	accountdomain "agendamail-backend/internal/account/domain"
	agendadomain "agendamail-backend/internal/agenda/domain"
	emaildomain "agendamail-backend/internal/email/domain"
)

// AgendaUsecase defines the triage/reconciliation operations exposed to
// delivery and to the notification service
type AgendaUsecase interface {
	// Reconcile upserts the row identified by the record's natural key.
	// Exactly one row exists per (userID, source, sourceID) after it
	// returns.
	Reconcile(record agendadomain.NormalizedRecord) (*agendadomain.AgendaItem, error)

	List(userID string, limit, offset int) ([]*agendadomain.AgendaItem, int64, error)

	// SyncAccount pulls actionable Gmail messages and upcoming Calendar
	// events for one mailbox and reconciles them. Returns the number of
	// records reconciled.
	SyncAccount(ctx context.Context, userID, accountID string) (int, error)

	// SetUsageRecorder allows wiring the usage tracker after creation
	SetUsageRecorder(rec UsageRecorder)
}

// MailProvider is the slice of the Gmail wrapper the sync needs
type MailProvider interface {
	ListThreads(ctx context.Context, accessToken, refreshToken string, query emaildomain.ThreadQuery, onTokenRefresh accountdomain.TokenUpdateFunc) (*emaildomain.ThreadPage, error)
}

// CalendarProvider is the slice of the Calendar wrapper the sync needs
type CalendarProvider interface {
	UpcomingEvents(ctx context.Context, accessToken, refreshToken string, window time.Duration, maxResults int64, onTokenRefresh accountdomain.TokenUpdateFunc) ([]agendadomain.CalendarEvent, error)
}

// CredentialSource resolves stored provider tokens for an account
type CredentialSource interface {
	Credentials(userID, accountID string) (accessToken, refreshToken string, onRefresh accountdomain.TokenUpdateFunc, err error)
}

// UsageRecorder tracks per-user operation costs
type UsageRecorder interface {
	Record(ctx context.Context, userID, op string, cost int64) error
}

package usecase

import (
	"context"
	"log"
	"time"

	agendadomain "agendamail-backend/internal/agenda/domain"
	"agendamail-backend/internal/agenda/repository"
	emaildomain "agendamail-backend/internal/email/domain"
	"agendamail-backend/pkg/apperrors"
	"agendamail-backend/pkg/gmail"
)

const (
	gmailSyncMaxThreads  = 50
	calendarSyncWindow   = 7 * 24 * time.Hour
	calendarSyncMaxItems = 50
)

// agendaUsecase implements AgendaUsecase
type agendaUsecase struct {
	agendaRepo   repository.AgendaRepository
	credentials  CredentialSource
	mailProvider MailProvider
	calProvider  CalendarProvider
	usage        UsageRecorder
}

func NewAgendaUsecase(agendaRepo repository.AgendaRepository, credentials CredentialSource, mailProvider MailProvider, calProvider CalendarProvider) AgendaUsecase {
	return &agendaUsecase{
		agendaRepo:   agendaRepo,
		credentials:  credentials,
		mailProvider: mailProvider,
		calProvider:  calProvider,
	}
}

// SetUsageRecorder allows wiring the usage tracker after creation
func (u *agendaUsecase) SetUsageRecorder(rec UsageRecorder) {
	u.usage = rec
}

func (u *agendaUsecase) Reconcile(record agendadomain.NormalizedRecord) (*agendadomain.AgendaItem, error) {
	if record.UserID == "" {
		return nil, apperrors.Validation("userId is required")
	}
	if !record.Source.Valid() {
		return nil, apperrors.Validation("source must be gmail or calendar")
	}
	if record.SourceID == "" {
		return nil, apperrors.Validation("sourceId is required")
	}
	if record.Title == "" {
		return nil, apperrors.Validation("title is required")
	}

	item := record.Item()
	if err := u.agendaRepo.Upsert(&item); err != nil {
		return nil, apperrors.Storage(err)
	}
	return &item, nil
}

func (u *agendaUsecase) List(userID string, limit, offset int) ([]*agendadomain.AgendaItem, int64, error) {
	if limit <= 0 {
		limit = 50
	}
	items, total, err := u.agendaRepo.ListByUser(userID, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Storage(err)
	}
	return items, total, nil
}

func (u *agendaUsecase) SyncAccount(ctx context.Context, userID, accountID string) (int, error) {
	accessToken, refreshToken, onRefresh, err := u.credentials.Credentials(userID, accountID)
	if err != nil {
		return 0, err
	}

	count := 0

	page, err := u.mailProvider.ListThreads(ctx, accessToken, refreshToken, emaildomain.ThreadQuery{
		Type:       "unread",
		MaxResults: gmailSyncMaxThreads,
	}, onRefresh)
	if err != nil {
		if gmail.IsAuthError(err) {
			return 0, apperrors.Auth("google credential expired, please reconnect the account")
		}
		return 0, apperrors.Upstream("unable to list inbox threads", err)
	}
	u.recordUsage(ctx, userID, "agenda_sync_gmail", int64(len(page.Threads)))

	for _, thread := range page.Threads {
		if len(thread.Messages) == 0 {
			continue
		}
		// The newest message represents the conversation
		latest := thread.Messages[len(thread.Messages)-1]
		record := GmailRecord(userID, accountID, latest)
		if _, err := u.Reconcile(record); err != nil {
			log.Printf("[AgendaSync] Failed to reconcile message %s: %v", latest.ID, err)
			continue
		}
		count++
	}

	events, err := u.calProvider.UpcomingEvents(ctx, accessToken, refreshToken, calendarSyncWindow, calendarSyncMaxItems, onRefresh)
	if err != nil {
		// Calendar scope may not be granted for this link; mail results
		// still count
		log.Printf("[AgendaSync] Calendar fetch failed for account %s: %v", accountID, err)
		return count, nil
	}
	u.recordUsage(ctx, userID, "agenda_sync_calendar", int64(len(events)))

	now := time.Now()
	for _, event := range events {
		record := CalendarRecord(userID, accountID, event, now)
		if _, err := u.Reconcile(record); err != nil {
			log.Printf("[AgendaSync] Failed to reconcile event %s: %v", event.ID, err)
			continue
		}
		count++
	}

	return count, nil
}

func (u *agendaUsecase) recordUsage(ctx context.Context, userID, op string, cost int64) {
	if u.usage == nil || cost == 0 {
		return
	}
	if err := u.usage.Record(ctx, userID, op, cost); err != nil {
		log.Printf("[Usage] Failed to record %s for user %s: %v", op, userID, err)
	}
}

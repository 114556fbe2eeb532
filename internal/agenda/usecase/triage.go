package usecase

import (
	"time"

	agendadomain "agendamail-backend/internal/agenda/domain"
	emaildomain "agendamail-backend/internal/email/domain"
)

// Triage rules for inbox messages. Bulk mail (anything carrying a
// List-Unsubscribe header) never becomes actionable; otherwise unread mail
// needs action and importance/stars raise the priority.
func TriageMessage(msg emaildomain.Message) (priority int, actionNeeded bool) {
	if msg.ListUnsub {
		return 0, false
	}

	if msg.IsImportant {
		priority += 2
	}
	if msg.IsStarred {
		priority++
	}
	if msg.IsUnread {
		priority++
		actionNeeded = true
	}
	if msg.IsStarred {
		actionNeeded = true
	}

	return priority, actionNeeded
}

// GmailRecord maps a triaged message into the normalized record shape
func GmailRecord(userID, accountID string, msg emaildomain.Message) agendadomain.NormalizedRecord {
	title := msg.Subject
	if title == "" {
		title = "(no subject)"
	}

	subtitle := msg.FromName
	if subtitle == "" {
		subtitle = msg.FromEmail
	}

	priority, actionNeeded := TriageMessage(msg)

	return agendadomain.NormalizedRecord{
		UserID:       userID,
		AccountID:    accountID,
		Source:       agendadomain.SourceGmail,
		SourceID:     msg.ID,
		Title:        title,
		Subtitle:     subtitle,
		Priority:     &priority,
		ActionNeeded: &actionNeeded,
	}
}

// CalendarRecord maps an upcoming event into the normalized record shape.
// Events starting within a day are bumped; an unanswered invitation needs
// action.
func CalendarRecord(userID, accountID string, event agendadomain.CalendarEvent, now time.Time) agendadomain.NormalizedRecord {
	title := event.Summary
	if title == "" {
		title = "(untitled event)"
	}

	priority := 0
	if event.Start != nil && event.Start.Sub(now) <= 24*time.Hour {
		priority = 1
	}
	actionNeeded := event.ResponseStatus == "needsAction"

	return agendadomain.NormalizedRecord{
		UserID:       userID,
		AccountID:    accountID,
		Source:       agendadomain.SourceCalendar,
		SourceID:     event.ID,
		Title:        title,
		Subtitle:     event.Location,
		DueAt:        event.Start,
		Priority:     &priority,
		ActionNeeded: &actionNeeded,
	}
}

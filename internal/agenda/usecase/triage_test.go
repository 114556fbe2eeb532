package usecase

import (
	"testing"
	"time"

	agendadomain "agendamail-backend/internal/agenda/domain"
	emaildomain "agendamail-backend/internal/email/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriageMessage(t *testing.T) {
	tests := []struct {
		name         string
		msg          emaildomain.Message
		priority     int
		actionNeeded bool
	}{
		{
			name:         "read plain mail is inert",
			msg:          emaildomain.Message{},
			priority:     0,
			actionNeeded: false,
		},
		{
			name:         "unread needs action",
			msg:          emaildomain.Message{IsUnread: true},
			priority:     1,
			actionNeeded: true,
		},
		{
			name:         "unread and important",
			msg:          emaildomain.Message{IsUnread: true, IsImportant: true},
			priority:     3,
			actionNeeded: true,
		},
		{
			name:         "starred already-read mail still needs action",
			msg:          emaildomain.Message{IsStarred: true},
			priority:     1,
			actionNeeded: true,
		},
		{
			name:         "bulk mail never actionable",
			msg:          emaildomain.Message{IsUnread: true, IsImportant: true, ListUnsub: true},
			priority:     0,
			actionNeeded: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			priority, actionNeeded := TriageMessage(tt.msg)
			assert.Equal(t, tt.priority, priority)
			assert.Equal(t, tt.actionNeeded, actionNeeded)
		})
	}
}

func TestGmailRecord(t *testing.T) {
	msg := emaildomain.Message{
		ID:       "msg-1",
		Subject:  "Invoice overdue",
		FromName: "Billing",
		IsUnread: true,
	}

	record := GmailRecord("user-1", "acc-1", msg)

	assert.Equal(t, "user-1", record.UserID)
	assert.Equal(t, "acc-1", record.AccountID)
	assert.Equal(t, agendadomain.SourceGmail, record.Source)
	assert.Equal(t, "msg-1", record.SourceID)
	assert.Equal(t, "Invoice overdue", record.Title)
	assert.Equal(t, "Billing", record.Subtitle)
	assert.Nil(t, record.DueAt)
	require.NotNil(t, record.Priority)
	assert.Equal(t, 1, *record.Priority)
	require.NotNil(t, record.ActionNeeded)
	assert.True(t, *record.ActionNeeded)
}

func TestGmailRecordFallbackTitles(t *testing.T) {
	record := GmailRecord("user-1", "acc-1", emaildomain.Message{ID: "m", FromEmail: "a@b.c"})
	assert.Equal(t, "(no subject)", record.Title)
	assert.Equal(t, "a@b.c", record.Subtitle)
}

func TestCalendarRecord(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	soon := now.Add(2 * time.Hour)
	later := now.Add(72 * time.Hour)

	record := CalendarRecord("user-1", "acc-1", agendadomain.CalendarEvent{
		ID:             "evt-1",
		Summary:        "Standup",
		Location:       "Meet",
		Start:          &soon,
		ResponseStatus: "needsAction",
	}, now)

	assert.Equal(t, agendadomain.SourceCalendar, record.Source)
	assert.Equal(t, "evt-1", record.SourceID)
	assert.Equal(t, "Standup", record.Title)
	assert.Equal(t, "Meet", record.Subtitle)
	require.NotNil(t, record.DueAt)
	assert.Equal(t, soon, *record.DueAt)
	assert.Equal(t, 1, *record.Priority)
	assert.True(t, *record.ActionNeeded)

	distant := CalendarRecord("user-1", "acc-1", agendadomain.CalendarEvent{
		ID:             "evt-2",
		Start:          &later,
		ResponseStatus: "accepted",
	}, now)
	assert.Equal(t, "(untitled event)", distant.Title)
	assert.Equal(t, 0, *distant.Priority)
	assert.False(t, *distant.ActionNeeded)
}

package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	calendar "google.golang.org/api/calendar/v3"
)

func TestConvertCalendarEvent(t *testing.T) {
	item := &calendar.Event{
		Id:       "evt-1",
		Summary:  "Design review",
		Location: "Room 4",
		Start:    &calendar.EventDateTime{DateTime: "2025-06-02T09:30:00Z"},
		Attendees: []*calendar.EventAttendee{
			{Email: "other@example.com", ResponseStatus: "accepted"},
			{Email: "me@example.com", Self: true, ResponseStatus: "needsAction"},
		},
	}

	got := ConvertCalendarEvent(item)

	assert.Equal(t, "evt-1", got.ID)
	assert.Equal(t, "Design review", got.Summary)
	assert.Equal(t, "Room 4", got.Location)
	assert.Equal(t, "needsAction", got.ResponseStatus)
	assert.False(t, got.AllDay)
	require.NotNil(t, got.Start)
	assert.Equal(t, time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC), got.Start.UTC())
}

func TestConvertCalendarEventAllDay(t *testing.T) {
	item := &calendar.Event{
		Id:      "evt-2",
		Summary: "Offsite",
		Start:   &calendar.EventDateTime{Date: "2025-06-10"},
	}

	got := ConvertCalendarEvent(item)

	assert.True(t, got.AllDay)
	require.NotNil(t, got.Start)
	assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), got.Start.UTC())
	assert.Empty(t, got.ResponseStatus)
}

func TestConvertCalendarEventNoStart(t *testing.T) {
	got := ConvertCalendarEvent(&calendar.Event{Id: "evt-3"})
	assert.Nil(t, got.Start)
}

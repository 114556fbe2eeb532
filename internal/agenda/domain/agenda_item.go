package domain

import "time"

// Source identifies the upstream system an agenda item was derived from
type Source string

const (
	SourceGmail    Source = "gmail"
	SourceCalendar Source = "calendar"
)

func (s Source) Valid() bool {
	return s == SourceGmail || s == SourceCalendar
}

// AgendaItem is a normalized actionable record derived from an upstream
// event. (user_id, source, source_id) is its natural identity; re-syncs
// overwrite fields in place, there is no append-only history.
type AgendaItem struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	UserID       string     `json:"user_id" gorm:"uniqueIndex:idx_user_source_sourceid;not null"`
	Source       Source     `json:"source" gorm:"uniqueIndex:idx_user_source_sourceid;not null"`
	SourceID     string     `json:"source_id" gorm:"uniqueIndex:idx_user_source_sourceid;not null"`
	AccountID    string     `json:"account_id" gorm:"index"`
	Title        string     `json:"title" gorm:"not null"`
	Subtitle     string     `json:"subtitle,omitempty"`
	DueAt        *time.Time `json:"due_at,omitempty"`
	Priority     int        `json:"priority" gorm:"default:0"`
	ActionNeeded bool       `json:"action_needed" gorm:"default:false"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NormalizedRecord is the connector-agnostic shape heterogeneous upstream
// systems map into before reconciliation. Optional fields stay pointers so
// "unset" is distinguishable from zero values.
type NormalizedRecord struct {
	UserID       string
	AccountID    string
	Source       Source
	SourceID     string
	Title        string
	Subtitle     string
	DueAt        *time.Time
	Priority     *int
	ActionNeeded *bool
}

// Item applies the reconciler defaults: priority 0, actionNeeded false,
// dueAt nil when unset.
func (r NormalizedRecord) Item() AgendaItem {
	item := AgendaItem{
		UserID:    r.UserID,
		AccountID: r.AccountID,
		Source:    r.Source,
		SourceID:  r.SourceID,
		Title:     r.Title,
		Subtitle:  r.Subtitle,
		DueAt:     r.DueAt,
	}
	if r.Priority != nil {
		item.Priority = *r.Priority
	}
	if r.ActionNeeded != nil {
		item.ActionNeeded = *r.ActionNeeded
	}
	return item
}

// CalendarEvent is the upstream shape the calendar connector consumes
type CalendarEvent struct {
	ID             string
	Summary        string
	Location       string
	Start          *time.Time
	AllDay         bool
	ResponseStatus string // attendee self response: needsAction, accepted, ...
}

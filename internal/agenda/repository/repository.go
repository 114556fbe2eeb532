package repository

import agendadomain "agendamail-backend/internal/agenda/domain"

// AgendaRepository defines the interface for agenda item data access
type AgendaRepository interface {
	// Upsert atomically inserts or replaces the row identified by
	// (user_id, source, source_id). The write is conditional at the store
	// level, not read-then-write, so concurrent calls with the same key
	// cannot create duplicates.
	Upsert(item *agendadomain.AgendaItem) error

	FindByKey(userID string, source agendadomain.Source, sourceID string) (*agendadomain.AgendaItem, error)
	ListByUser(userID string, limit, offset int) ([]*agendadomain.AgendaItem, int64, error)
	DeleteByAccount(userID, accountID string) error
}

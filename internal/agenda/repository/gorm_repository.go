package repository

import (
	"errors"
	"time"

	agendadomain "agendamail-backend/internal/agenda/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormAgendaRepository implements AgendaRepository using GORM
type gormAgendaRepository struct {
	db *gorm.DB
}

func NewAgendaRepository(db *gorm.DB) AgendaRepository {
	return &gormAgendaRepository{db: db}
}

func (r *gormAgendaRepository) Upsert(item *agendadomain.AgendaItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	// INSERT ... ON CONFLICT on the composite unique index. The generated ID
	// and CreatedAt only apply on first insert; a conflict keeps the existing
	// row identity and overwrites the payload columns.
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "source"}, {Name: "source_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"account_id", "title", "subtitle", "due_at", "priority", "action_needed", "updated_at",
		}),
	}).Create(item).Error
}

func (r *gormAgendaRepository) FindByKey(userID string, source agendadomain.Source, sourceID string) (*agendadomain.AgendaItem, error) {
	var item agendadomain.AgendaItem
	err := r.db.Where("user_id = ? AND source = ? AND source_id = ?", userID, source, sourceID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *gormAgendaRepository) ListByUser(userID string, limit, offset int) ([]*agendadomain.AgendaItem, int64, error) {
	var items []*agendadomain.AgendaItem
	var total int64

	query := r.db.Model(&agendadomain.AgendaItem{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Actionable first, then by priority, then soonest due (nulls last)
	err := query.Order("action_needed DESC, priority DESC, CASE WHEN due_at IS NULL THEN 1 ELSE 0 END, due_at ASC, updated_at DESC").
		Limit(limit).Offset(offset).Find(&items).Error

	return items, total, err
}

func (r *gormAgendaRepository) DeleteByAccount(userID, accountID string) error {
	return r.db.Where("user_id = ? AND account_id = ?", userID, accountID).Delete(&agendadomain.AgendaItem{}).Error
}

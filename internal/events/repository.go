package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository handles persistence for events and ticket tiers.
type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	GetByIDOwned(ctx context.Context, id, ownerID uuid.UUID) (*Event, error)
	List(ctx context.Context, query *ListEventsQuery) ([]*Event, int64, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Event, error)
	Update(ctx context.Context, event *Event, replaceTiers bool, now time.Time) error
	SaveStatuses(ctx context.Context, events []*Event) error
	Delete(ctx context.Context, id uuid.UUID) error
	Categories(ctx context.Context) ([]string, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new events repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, event *Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	var event Event
	err := r.db.WithContext(ctx).Preload("Tiers").Where("id = ?", id).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

// GetByIDOwned fetches an event only if it belongs to the given owner.
// A mismatch reads the same as a missing event so ownership is not leaked.
func (r *repository) GetByIDOwned(ctx context.Context, id, ownerID uuid.UUID) (*Event, error) {
	var event Event
	err := r.db.WithContext(ctx).Preload("Tiers").
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *repository) List(ctx context.Context, query *ListEventsQuery) ([]*Event, int64, error) {
	db := r.db.WithContext(ctx).Model(&Event{})

	if query.Category != "" {
		db = db.Where("category = ?", query.Category)
	}
	if query.Status != "" {
		db = db.Where("status = ?", strings.ToUpper(query.Status))
	}
	if query.Search != "" {
		pattern := "%" + query.Search + "%"
		db = db.Where("name ILIKE ? OR venue ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	var events []*Event
	err := db.Preload("Tiers").
		Order("start_time ASC").
		Offset(offset).
		Limit(query.Limit).
		Find(&events).Error
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Event, error) {
	var events []*Event
	err := r.db.WithContext(ctx).Preload("Tiers").
		Where("owner_id = ?", ownerID).
		Order("start_time ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// Update persists organiser edits and, when replaceTiers is set, swaps the
// tier set wholesale in the same transaction, so a failed save never leaves
// new tiers against old fields. The event row is locked so a booking
// committing alongside the edit is not overwritten: booked_count is re-read
// under the lock and the status re-derived from it before saving.
func (r *repository) Update(ctx context.Context, event *Event, replaceTiers bool, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current Event
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", event.ID).
			First(&current).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if replaceTiers {
			if err := tx.Where("event_id = ?", event.ID).Delete(&TicketTier{}).Error; err != nil {
				return err
			}
			for i := range event.Tiers {
				event.Tiers[i].EventID = event.ID
			}
			if len(event.Tiers) > 0 {
				if err := tx.Create(&event.Tiers).Error; err != nil {
					return err
				}
			}
		}

		event.BookedCount = current.BookedCount
		event.Refresh(now)

		return tx.Omit("Tiers").Save(event).Error
	})
}

// SaveStatuses persists the status column for the given events in one
// transaction. Callers pass only rows whose status actually changed.
func (r *repository) SaveStatuses(ctx context.Context, events []*Event) error {
	if len(events) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, event := range events {
			err := tx.Model(&Event{}).
				Where("id = ?", event.ID).
				Update("status", event.Status).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes an event along with its tiers, bookings and comments.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM comments WHERE event_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM bookings WHERE event_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", id).Delete(&TicketTier{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&Event{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *repository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).Model(&Event{}).
		Where("category != ''").
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

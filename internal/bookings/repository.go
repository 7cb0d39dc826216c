package bookings

import (
	"context"
	"errors"
	"strings"
	"time"

	"beatsbook/internal/events"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository handles persistence for bookings.
type Repository interface {
	CreateWithCapacityCheck(ctx context.Context, booking *Booking, now time.Time) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (*Booking, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Booking, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new bookings repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// CreateWithCapacityCheck books tickets atomically. The event row is locked
// for the duration of the transaction, so concurrent requests for the last
// tickets serialize and at most one wins. The status and capacity checks,
// the price snapshot, the booking insert and the booked-count bump all
// happen under the same lock at the same instant. A cancelled or started
// event is unavailable; a sold-out one fails the capacity check, so the
// loser of a race for the last tickets sees an insufficient-capacity error.
func (r *repository) CreateWithCapacityCheck(ctx context.Context, booking *Booking, now time.Time) error {
	var rejection error
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event events.Event
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", booking.EventID).
			First(&event).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return events.ErrNotFound
			}
			return err
		}

		// Tiers only contribute capacity and price; the lock on the event
		// row is what serializes writers.
		if err := tx.Where("event_id = ?", event.ID).Find(&event.Tiers).Error; err != nil {
			return err
		}

		statusChanged := event.Refresh(now)

		switch {
		case event.Status.IsClosed():
			rejection = ErrEventUnavailable
		case event.Remaining() < booking.Quantity:
			rejection = ErrInsufficientCapacity
		}
		if rejection != nil {
			// The refreshed status still commits, so the row does not
			// advertise stale openness. Returning the rejection from the
			// closure would roll that write-back back with the
			// transaction, so it is surfaced after the commit instead.
			if !statusChanged {
				return nil
			}
			return tx.Model(&events.Event{}).Where("id = ?", event.ID).
				Update("status", event.Status).Error
		}

		booking.UnitPrice = event.EffectivePrice()
		booking.BookedAt = now

		if err := tx.Create(booking).Error; err != nil {
			if isDuplicateKeyError(err) {
				return ErrDuplicateOrderID
			}
			return err
		}

		event.BookedCount += booking.Quantity
		event.Refresh(now)

		return tx.Model(&events.Event{}).Where("id = ?", event.ID).
			Updates(map[string]interface{}{
				"booked_count": event.BookedCount,
				"status":       event.Status,
			}).Error
	})
	if err != nil {
		return err
	}
	return rejection
}

func (r *repository) GetByID(ctx context.Context, id, userID uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Preload("Event").Preload("Event.Tiers").
		Where("id = ? AND user_id = ?", id, userID).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Booking, error) {
	var bookings []*Booking
	err := r.db.WithContext(ctx).Preload("Event").Preload("Event.Tiers").
		Where("user_id = ?", userID).
		Order("booked_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "duplicate key")
}

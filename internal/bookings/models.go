package bookings

import (
	"errors"
	"time"

	"beatsbook/internal/events"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sentinel errors returned by the bookings service.
var (
	ErrNotFound             = errors.New("booking not found")
	ErrInvalidQuantity      = errors.New("quantity must be at least 1")
	ErrEventUnavailable     = errors.New("event is not open for booking")
	ErrInsufficientCapacity = errors.New("not enough tickets remaining")
	ErrDuplicateOrderID     = errors.New("order code already in use")
)

// Booking is a confirmed ticket purchase. The unit price is snapshotted at
// booking time and never changes afterwards, whatever the organiser later
// does to the event's pricing.
type Booking struct {
	ID        uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrderID   string          `json:"order_id" gorm:"uniqueIndex;not null;size:12"`
	EventID   uuid.UUID       `json:"event_id" gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:numeric(10,2);not null"`
	BookedAt  time.Time       `json:"booked_at" gorm:"not null"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	Event *events.Event `json:"event,omitempty" gorm:"foreignKey:EventID"`
}

// TableName returns the table name for the Booking model
func (Booking) TableName() string {
	return "bookings"
}

// BeforeCreate sets the ID if not already set
func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Total returns the booking's total price.
func (b *Booking) Total() decimal.Decimal {
	return b.UnitPrice.Mul(decimal.NewFromInt(int64(b.Quantity)))
}

// ToResponse converts the booking to its API representation.
func (b *Booking) ToResponse() *BookingResponse {
	resp := &BookingResponse{
		ID:        b.ID,
		OrderID:   b.OrderID,
		EventID:   b.EventID,
		UserID:    b.UserID,
		Quantity:  b.Quantity,
		UnitPrice: b.UnitPrice,
		Total:     b.Total(),
		BookedAt:  b.BookedAt,
	}
	if b.Event != nil {
		resp.Event = b.Event.ToResponse()
	}
	return resp
}

// BookingResponse is the public view of a booking.
type BookingResponse struct {
	ID        uuid.UUID             `json:"id"`
	OrderID   string                `json:"order_id"`
	EventID   uuid.UUID             `json:"event_id"`
	UserID    uuid.UUID             `json:"user_id"`
	Quantity  int                   `json:"quantity"`
	UnitPrice decimal.Decimal       `json:"unit_price"`
	Total     decimal.Decimal       `json:"total"`
	BookedAt  time.Time             `json:"booked_at"`
	Event     *events.EventResponse `json:"event,omitempty"`
}

// CreateBookingRequest is the payload for booking tickets.
type CreateBookingRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

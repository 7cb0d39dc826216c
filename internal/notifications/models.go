package notifications

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingConfirmed is the event published to Kafka after a booking commits.
type BookingConfirmed struct {
	OrderID   string          `json:"order_id"`
	BookingID uuid.UUID       `json:"booking_id"`
	EventID   uuid.UUID       `json:"event_id"`
	UserID    uuid.UUID       `json:"user_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
	BookedAt  time.Time       `json:"booked_at"`
}

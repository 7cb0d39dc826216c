package events

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sentinel errors returned by the events service.
var (
	ErrNotFound        = errors.New("event not found")
	ErrInvalidCapacity = errors.New("capacity must be positive")
	ErrInvalidPrice    = errors.New("price must not be negative")
	ErrStartInPast     = errors.New("start time must be in the future")
	ErrAlreadyStarted  = errors.New("event has already started")
	ErrInvalidTier     = errors.New("tier quantity must be positive and price must not be negative")
)

// Event represents a bookable event with an aggregate capacity and an
// optional set of ticket tiers.
type Event struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OwnerID     uuid.UUID       `json:"owner_id" gorm:"type:uuid;not null;index"`
	Name        string          `json:"name" gorm:"not null;size:255"`
	Description string          `json:"description" gorm:"type:text"`
	Category    string          `json:"category" gorm:"size:100;index"`
	Venue       string          `json:"venue" gorm:"size:255"`
	City        string          `json:"city" gorm:"size:100;index"`
	ImageURL    string          `json:"image_url" gorm:"size:512"`
	StartTime   time.Time       `json:"start_time" gorm:"not null;index"`
	Capacity    int             `json:"capacity" gorm:"not null"`
	BookedCount int             `json:"booked_count" gorm:"not null;default:0"`
	Price       decimal.Decimal `json:"price" gorm:"type:numeric(10,2);not null"`
	Status      Status          `json:"status" gorm:"type:varchar(20);not null;default:'OPEN';index"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Tiers []TicketTier `json:"tiers,omitempty" gorm:"foreignKey:EventID"`
}

// TableName returns the table name for the Event model
func (Event) TableName() string {
	return "events"
}

// BeforeCreate sets the ID if not already set
func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// TicketTier is a named price band within an event. When an event has tiers,
// their quantities define its total capacity.
type TicketTier struct {
	ID       uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	EventID  uuid.UUID       `json:"event_id" gorm:"type:uuid;not null;index"`
	Name     string          `json:"name" gorm:"not null;size:100"`
	Quantity int             `json:"quantity" gorm:"not null"`
	Price    decimal.Decimal `json:"price" gorm:"type:numeric(10,2);not null"`
}

// TableName returns the table name for the TicketTier model
func (TicketTier) TableName() string {
	return "ticket_tiers"
}

// BeforeCreate sets the ID if not already set
func (t *TicketTier) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TotalCapacity returns the sum of tier quantities when tiers exist,
// otherwise the event's aggregate capacity.
func (e *Event) TotalCapacity() int {
	if len(e.Tiers) == 0 {
		return e.Capacity
	}
	total := 0
	for _, tier := range e.Tiers {
		total += tier.Quantity
	}
	return total
}

// Remaining returns the number of tickets still available, never negative.
// Sales are tracked against the aggregate booked count regardless of tiers;
// an organiser shrinking capacity below the booked count reads as zero.
func (e *Event) Remaining() int {
	remaining := e.TotalCapacity() - e.BookedCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// EffectivePrice returns the price a booking is charged at: the cheapest
// tier when tiers exist, the aggregate price otherwise.
func (e *Event) EffectivePrice() decimal.Decimal {
	if len(e.Tiers) == 0 {
		return e.Price
	}
	lowest := e.Tiers[0].Price
	for _, tier := range e.Tiers[1:] {
		if tier.Price.LessThan(lowest) {
			lowest = tier.Price
		}
	}
	return lowest
}

// Refresh recomputes the event's status at the given instant and reports
// whether it changed.
func (e *Event) Refresh(now time.Time) bool {
	next := ComputeStatus(e.Status, e.StartTime, e.Remaining(), now)
	if next == e.Status {
		return false
	}
	e.Status = next
	return true
}

// ToResponse converts the event to its API representation.
func (e *Event) ToResponse() *EventResponse {
	resp := &EventResponse{
		ID:          e.ID,
		OwnerID:     e.OwnerID,
		Name:        e.Name,
		Description: e.Description,
		Category:    e.Category,
		Venue:       e.Venue,
		City:        e.City,
		ImageURL:    e.ImageURL,
		StartTime:   e.StartTime,
		Capacity:    e.TotalCapacity(),
		BookedCount: e.BookedCount,
		Remaining:   e.Remaining(),
		Price:       e.EffectivePrice(),
		Status:      e.Status,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	for _, tier := range e.Tiers {
		resp.Tiers = append(resp.Tiers, TierResponse{
			ID:       tier.ID,
			Name:     tier.Name,
			Quantity: tier.Quantity,
			Price:    tier.Price,
		})
	}
	return resp
}

// EventResponse is the public view of an event.
type EventResponse struct {
	ID          uuid.UUID       `json:"id"`
	OwnerID     uuid.UUID       `json:"owner_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Venue       string          `json:"venue,omitempty"`
	City        string          `json:"city,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
	StartTime   time.Time       `json:"start_time"`
	Capacity    int             `json:"capacity"`
	BookedCount int             `json:"booked_count"`
	Remaining   int             `json:"remaining"`
	Price       decimal.Decimal `json:"price"`
	Status      Status          `json:"status"`
	Tiers       []TierResponse  `json:"tiers,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// RefreshStatus re-derives the status at the given instant. The snapshot
// carries the start time and remaining count, which is all the derivation
// needs, so a response served from cache can be corrected before it is
// shown.
func (r *EventResponse) RefreshStatus(now time.Time) {
	r.Status = ComputeStatus(r.Status, r.StartTime, r.Remaining, now)
}

// TierResponse is the public view of a ticket tier.
type TierResponse struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// TierInput describes one tier in a create or update request.
type TierInput struct {
	Name     string          `json:"name" binding:"required,min=1,max=100"`
	Quantity int             `json:"quantity" binding:"required,min=1"`
	Price    decimal.Decimal `json:"price" binding:"required"`
}

// CreateEventRequest is the payload for creating an event.
type CreateEventRequest struct {
	Name        string          `json:"name" binding:"required,notblank,max=255"`
	Description string          `json:"description" binding:"omitempty"`
	Category    string          `json:"category" binding:"omitempty,max=100"`
	Venue       string          `json:"venue" binding:"omitempty,max=255"`
	City        string          `json:"city" binding:"omitempty,max=100"`
	ImageURL    string          `json:"image_url" binding:"omitempty,url,max=512"`
	StartTime   time.Time       `json:"start_time" binding:"required"`
	Capacity    int             `json:"capacity" binding:"omitempty,min=0"`
	Price       decimal.Decimal `json:"price"`
	Tiers       []TierInput     `json:"tiers" binding:"omitempty,dive"`
}

// UpdateEventRequest is the payload for updating an event. Absent fields
// are left unchanged; a non-nil Tiers replaces the tier set wholesale.
type UpdateEventRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string          `json:"description"`
	Category    *string          `json:"category" binding:"omitempty,max=100"`
	Venue       *string          `json:"venue" binding:"omitempty,max=255"`
	City        *string          `json:"city" binding:"omitempty,max=100"`
	ImageURL    *string          `json:"image_url" binding:"omitempty,max=512"`
	StartTime   *time.Time       `json:"start_time"`
	Capacity    *int             `json:"capacity" binding:"omitempty,min=0"`
	Price       *decimal.Decimal `json:"price"`
	Tiers       []TierInput      `json:"tiers" binding:"omitempty,dive"`
}

// ListEventsQuery captures the supported list filters.
type ListEventsQuery struct {
	Category string `form:"category"`
	Status   string `form:"status"`
	Search   string `form:"search"`
	Page     int    `form:"page,default=1" binding:"omitempty,min=1"`
	Limit    int    `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
}

// ListEventsResponse is a paginated page of events.
type ListEventsResponse struct {
	Events     []*EventResponse `json:"events"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}

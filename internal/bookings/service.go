package bookings

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"beatsbook/internal/notifications"
	"beatsbook/internal/shared/constants"
	"beatsbook/pkg/cache"
	"beatsbook/pkg/clock"
	"beatsbook/pkg/logger"

	"github.com/google/uuid"
)

// orderCodeAlphabet and orderCodeLength give a code space of 36^8, large
// enough that collisions under the unique index are rare; collisions are
// handled by regenerating.
const (
	orderCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	orderCodeLength   = 8

	maxOrderCodeAttempts = 5
)

// Service handles business logic for bookings.
type Service interface {
	Book(ctx context.Context, userID, eventID uuid.UUID, req *CreateBookingRequest) (*BookingResponse, error)
	GetBooking(ctx context.Context, userID, bookingID uuid.UUID) (*BookingResponse, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID) ([]*BookingResponse, error)
}

type service struct {
	repo     Repository
	cache    cache.Service
	producer notifications.Producer
	clock    clock.Clock
	log      *logger.Logger
}

// NewService creates a new bookings service
func NewService(repo Repository, cacheService cache.Service, producer notifications.Producer, clk clock.Clock, log *logger.Logger) Service {
	return &service{repo: repo, cache: cacheService, producer: producer, clock: clk, log: log}
}

func (s *service) Book(ctx context.Context, userID, eventID uuid.UUID, req *CreateBookingRequest) (*BookingResponse, error) {
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	now := s.clock.Now()

	var booking *Booking
	for attempt := 0; attempt < maxOrderCodeAttempts; attempt++ {
		code, err := generateOrderCode()
		if err != nil {
			return nil, err
		}
		candidate := &Booking{
			OrderID:  code,
			EventID:  eventID,
			UserID:   userID,
			Quantity: req.Quantity,
		}

		err = s.repo.CreateWithCapacityCheck(ctx, candidate, now)
		if err == nil {
			booking = candidate
			break
		}
		if errors.Is(err, ErrDuplicateOrderID) {
			continue
		}
		s.log.LogBookingRejected(ctx, eventID.String(), userID.String(), err.Error())
		return nil, err
	}
	if booking == nil {
		return nil, ErrDuplicateOrderID
	}

	s.invalidateCaches(ctx, eventID, userID)
	s.log.LogBookingCreated(ctx, booking.OrderID, eventID.String(), userID.String())

	if s.producer != nil {
		// Delivery is best effort and never affects the booking outcome.
		// Publishing inline keeps shutdown simple: no in-flight sends can
		// race the producer's Close.
		s.producer.PublishBookingConfirmed(&notifications.BookingConfirmed{
			OrderID:   booking.OrderID,
			BookingID: booking.ID,
			EventID:   booking.EventID,
			UserID:    booking.UserID,
			Quantity:  booking.Quantity,
			UnitPrice: booking.UnitPrice,
			Total:     booking.Total(),
			BookedAt:  booking.BookedAt,
		})
	}

	return booking.ToResponse(), nil
}

func (s *service) GetBooking(ctx context.Context, userID, bookingID uuid.UUID) (*BookingResponse, error) {
	booking, err := s.repo.GetByID(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}
	return booking.ToResponse(), nil
}

func (s *service) GetUserBookings(ctx context.Context, userID uuid.UUID) ([]*BookingResponse, error) {
	cacheKey := fmt.Sprintf(constants.CacheKeyUserBookings, userID)

	var cached []*BookingResponse
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return cached, nil
	}

	bookings, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]*BookingResponse, 0, len(bookings))
	for _, booking := range bookings {
		result = append(result, booking.ToResponse())
	}

	if err := s.cache.Set(ctx, cacheKey, result, constants.CacheTTLUserBookings); err != nil {
		s.log.WithError(err).Warn("failed to cache user bookings")
	}
	return result, nil
}

func (s *service) invalidateCaches(ctx context.Context, eventID, userID uuid.UUID) {
	if err := s.cache.DeletePattern(ctx, constants.CachePatternAllEvents); err != nil {
		s.log.WithError(err).Warn("failed to invalidate events cache")
	}
	userKey := fmt.Sprintf(constants.CachePatternUserScope, userID)
	if err := s.cache.Delete(ctx, userKey); err != nil {
		s.log.WithError(err).Warn("failed to invalidate user bookings cache", "user_id", userID)
	}
}

// generateOrderCode returns a cryptographically random order code.
func generateOrderCode() (string, error) {
	buf := make([]byte, orderCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate order code: %w", err)
	}
	for i, b := range buf {
		buf[i] = orderCodeAlphabet[int(b)%len(orderCodeAlphabet)]
	}
	return string(buf), nil
}

package events

import (
	"context"
	"fmt"

	"beatsbook/internal/shared/constants"
	"beatsbook/pkg/cache"
	"beatsbook/pkg/clock"
	"beatsbook/pkg/logger"

	"github.com/google/uuid"
)

// Service handles business logic for events.
type Service interface {
	ListEvents(ctx context.Context, query *ListEventsQuery) (*ListEventsResponse, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*EventResponse, error)
	GetMyEvents(ctx context.Context, ownerID uuid.UUID) ([]*EventResponse, error)
	CreateEvent(ctx context.Context, ownerID uuid.UUID, req *CreateEventRequest) (*EventResponse, error)
	UpdateEvent(ctx context.Context, ownerID, id uuid.UUID, req *UpdateEventRequest) (*EventResponse, error)
	CancelEvent(ctx context.Context, ownerID, id uuid.UUID) (*EventResponse, error)
	DeleteEvent(ctx context.Context, ownerID, id uuid.UUID) error
	Categories(ctx context.Context) ([]string, error)
}

type service struct {
	repo  Repository
	sync  *Synchronizer
	cache cache.Service
	clock clock.Clock
	log   *logger.Logger
}

// NewService creates a new events service
func NewService(repo Repository, sync *Synchronizer, cacheService cache.Service, clk clock.Clock, log *logger.Logger) Service {
	return &service{repo: repo, sync: sync, cache: cacheService, clock: clk, log: log}
}

func (s *service) ListEvents(ctx context.Context, query *ListEventsQuery) (*ListEventsResponse, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 {
		query.Limit = 20
	}

	cacheKey := fmt.Sprintf(constants.CacheKeyEventsList,
		fmt.Sprintf("%s:%s:%s:%d:%d", query.Category, query.Status, query.Search, query.Page, query.Limit))

	var cached ListEventsResponse
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		// A cached page can outlive a status transition within its TTL.
		now := s.clock.Now()
		for _, event := range cached.Events {
			event.RefreshStatus(now)
		}
		return &cached, nil
	}

	events, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, err
	}

	changed, syncErr := s.sync.Sync(ctx, events)
	if changed > 0 {
		// Cached payloads built before this pass are stale now.
		s.invalidateListCaches(ctx)
	}

	result := &ListEventsResponse{
		Events:     make([]*EventResponse, 0, len(events)),
		Total:      total,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: int((total + int64(query.Limit) - 1) / int64(query.Limit)),
	}
	for _, event := range events {
		result.Events = append(result.Events, event.ToResponse())
	}

	// Do not cache a page whose write-back failed; the next read retries.
	if syncErr == nil {
		if err := s.cache.Set(ctx, cacheKey, result, constants.CacheTTLEventsList); err != nil {
			s.log.WithError(err).Warn("failed to cache events list")
		}
	}
	return result, nil
}

func (s *service) GetEvent(ctx context.Context, id uuid.UUID) (*EventResponse, error) {
	cacheKey := fmt.Sprintf(constants.CacheKeyEventDetail, id)

	var cached EventResponse
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		cached.RefreshStatus(s.clock.Now())
		return &cached, nil
	}

	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.sync.SyncOne(ctx, event); err != nil {
		s.log.WithError(err).Warn("event status write-back failed", "event_id", id)
	}

	result := event.ToResponse()
	if err := s.cache.Set(ctx, cacheKey, result, constants.CacheTTLEventDetail); err != nil {
		s.log.WithError(err).Warn("failed to cache event detail")
	}
	return result, nil
}

func (s *service) GetMyEvents(ctx context.Context, ownerID uuid.UUID) ([]*EventResponse, error) {
	events, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if changed, _ := s.sync.Sync(ctx, events); changed > 0 {
		s.invalidateListCaches(ctx)
	}

	result := make([]*EventResponse, 0, len(events))
	for _, event := range events {
		result = append(result, event.ToResponse())
	}
	return result, nil
}

func (s *service) CreateEvent(ctx context.Context, ownerID uuid.UUID, req *CreateEventRequest) (*EventResponse, error) {
	now := s.clock.Now()

	if !req.StartTime.After(now) {
		return nil, ErrStartInPast
	}
	if req.Price.IsNegative() {
		return nil, ErrInvalidPrice
	}

	tiers, err := buildTiers(req.Tiers)
	if err != nil {
		return nil, err
	}
	if len(tiers) == 0 && req.Capacity < 0 {
		return nil, ErrInvalidCapacity
	}

	event := &Event{
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Venue:       req.Venue,
		City:        req.City,
		ImageURL:    req.ImageURL,
		StartTime:   req.StartTime.UTC(),
		Capacity:    req.Capacity,
		Price:       req.Price,
		Tiers:       tiers,
	}
	event.Status = ComputeStatus(StatusOpen, event.StartTime, event.Remaining(), now)

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}

	s.invalidateListCaches(ctx)
	s.log.LogEventCreated(ctx, event.ID.String(), ownerID.String())
	return event.ToResponse(), nil
}

func (s *service) UpdateEvent(ctx context.Context, ownerID, id uuid.UUID, req *UpdateEventRequest) (*EventResponse, error) {
	event, err := s.repo.GetByIDOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		event.Name = *req.Name
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Category != nil {
		event.Category = *req.Category
	}
	if req.Venue != nil {
		event.Venue = *req.Venue
	}
	if req.City != nil {
		event.City = *req.City
	}
	if req.ImageURL != nil {
		event.ImageURL = *req.ImageURL
	}
	if req.StartTime != nil {
		event.StartTime = req.StartTime.UTC()
	}
	if req.Capacity != nil {
		if *req.Capacity < 0 {
			return nil, ErrInvalidCapacity
		}
		event.Capacity = *req.Capacity
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, ErrInvalidPrice
		}
		event.Price = *req.Price
	}

	if req.Tiers != nil {
		tiers, err := buildTiers(req.Tiers)
		if err != nil {
			return nil, err
		}
		event.Tiers = tiers
	}

	// The save happens under the event row lock: the booked count is
	// re-read there so a booking committing alongside the edit is not
	// overwritten, and the status is re-derived against it. Raising
	// capacity can reopen a sold-out event, moving the start time can
	// flip it either way. Cancellation is never undone.
	if err := s.repo.Update(ctx, event, req.Tiers != nil, s.clock.Now()); err != nil {
		return nil, err
	}

	s.invalidateEventCaches(ctx, event.ID)
	return event.ToResponse(), nil
}

func (s *service) CancelEvent(ctx context.Context, ownerID, id uuid.UUID) (*EventResponse, error) {
	event, err := s.repo.GetByIDOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	// Idempotent: cancelling a cancelled event is a no-op.
	if event.Status != StatusCancelled {
		event.Status = StatusCancelled
		if err := s.repo.SaveStatuses(ctx, []*Event{event}); err != nil {
			return nil, err
		}
		s.log.LogEventCancelled(ctx, event.ID.String(), ownerID.String())
	}

	s.invalidateEventCaches(ctx, event.ID)
	return event.ToResponse(), nil
}

func (s *service) DeleteEvent(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.repo.GetByIDOwned(ctx, id, ownerID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateEventCaches(ctx, id)
	return nil
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	var cached []string
	if err := s.cache.Get(ctx, constants.CacheKeyCategories, &cached); err == nil {
		return cached, nil
	}

	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, constants.CacheKeyCategories, categories, constants.CacheTTLCategories); err != nil {
		s.log.WithError(err).Warn("failed to cache categories")
	}
	return categories, nil
}

func (s *service) invalidateListCaches(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, constants.CachePatternAllEvents); err != nil {
		s.log.WithError(err).Warn("failed to invalidate events cache")
	}
}

func (s *service) invalidateEventCaches(ctx context.Context, eventID uuid.UUID) {
	s.invalidateListCaches(ctx)
	key := fmt.Sprintf(constants.CachePatternEventDetail, eventID)
	if err := s.cache.Delete(ctx, key); err != nil {
		s.log.WithError(err).Warn("failed to invalidate event detail cache", "event_id", eventID)
	}
}

func buildTiers(inputs []TierInput) ([]TicketTier, error) {
	tiers := make([]TicketTier, 0, len(inputs))
	for _, in := range inputs {
		if in.Quantity < 1 || in.Price.IsNegative() {
			return nil, ErrInvalidTier
		}
		tiers = append(tiers, TicketTier{
			Name:     in.Name,
			Quantity: in.Quantity,
			Price:    in.Price,
		})
	}
	return tiers, nil
}

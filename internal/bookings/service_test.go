package bookings

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"beatsbook/internal/events"
	"beatsbook/internal/notifications"
	"beatsbook/pkg/cache"
	"beatsbook/pkg/clock"
	"beatsbook/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepository mimics the transactional booking path in memory. The mutex
// stands in for the row lock: status check, capacity check and the
// booked-count bump happen under one critical section, as they do in the
// real repository.
type fakeRepository struct {
	mu       sync.Mutex
	events   map[uuid.UUID]*events.Event
	bookings map[uuid.UUID]*Booking
	orderIDs map[string]bool

	// forcedCollisions makes the next n creates fail with a duplicate
	// order code, to exercise the regenerate-and-retry loop.
	forcedCollisions int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		events:   make(map[uuid.UUID]*events.Event),
		bookings: make(map[uuid.UUID]*Booking),
		orderIDs: make(map[string]bool),
	}
}

func (f *fakeRepository) addEvent(event *events.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	f.events[event.ID] = event
}

func (f *fakeRepository) CreateWithCapacityCheck(_ context.Context, booking *Booking, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	event, ok := f.events[booking.EventID]
	if !ok {
		return events.ErrNotFound
	}

	event.Refresh(now)
	if event.Status.IsClosed() {
		return ErrEventUnavailable
	}
	if event.Remaining() < booking.Quantity {
		return ErrInsufficientCapacity
	}

	if f.forcedCollisions > 0 {
		f.forcedCollisions--
		return ErrDuplicateOrderID
	}
	if f.orderIDs[booking.OrderID] {
		return ErrDuplicateOrderID
	}

	booking.ID = uuid.New()
	booking.UnitPrice = event.EffectivePrice()
	booking.BookedAt = now
	f.orderIDs[booking.OrderID] = true
	f.bookings[booking.ID] = booking

	event.BookedCount += booking.Quantity
	event.Refresh(now)
	return nil
}

func (f *fakeRepository) GetByID(_ context.Context, id, userID uuid.UUID) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok || booking.UserID != userID {
		return nil, ErrNotFound
	}
	return booking, nil
}

func (f *fakeRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*Booking
	for _, booking := range f.bookings {
		if booking.UserID == userID {
			result = append(result, booking)
		}
	}
	return result, nil
}

func (f *fakeRepository) eventStatus(id uuid.UUID) events.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events[id].Status
}

func (f *fakeRepository) eventBookedCount(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events[id].BookedCount
}

// fakeCache is an in-memory cache.Service.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string][]byte)}
}

func (f *fakeCache) Get(_ context.Context, key string, dest interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.store[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.store[key] = data
	return nil
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.store, key)
	return nil
}

func (f *fakeCache) DeletePattern(_ context.Context, pattern string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range f.store {
		if strings.HasPrefix(key, prefix) {
			delete(f.store, key)
		}
	}
	return nil
}

func (f *fakeCache) Exists(_ context.Context, key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.store[key]
	return ok
}

func (f *fakeCache) Ping(_ context.Context) error { return nil }

// fakeProducer records published notifications.
type fakeProducer struct {
	mu        sync.Mutex
	published []*notifications.BookingConfirmed
}

func (f *fakeProducer) PublishBookingConfirmed(msg *notifications.BookingConfirmed) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, msg)
}

func (f *fakeProducer) Close() error { return nil }

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(repo *fakeRepository) Service {
	return NewService(repo, newFakeCache(), nil, clock.NewFixed(testNow), logger.GetDefault())
}

func newTestServiceWithProducer(repo *fakeRepository, producer notifications.Producer) Service {
	return NewService(repo, newFakeCache(), producer, clock.NewFixed(testNow), logger.GetDefault())
}

func openEvent(capacity int, price int64) *events.Event {
	return &events.Event{
		ID:        uuid.New(),
		OwnerID:   uuid.New(),
		Name:      "Test Show",
		StartTime: testNow.Add(time.Hour),
		Capacity:  capacity,
		Price:     decimal.NewFromInt(price),
		Status:    events.StatusOpen,
	}
}

func TestBook(t *testing.T) {
	ctx := context.Background()

	t.Run("successful booking", func(t *testing.T) {
		repo := newFakeRepository()
		event := openEvent(100, 40)
		repo.addEvent(event)
		svc := newTestService(repo)

		result, err := svc.Book(ctx, uuid.New(), event.ID, &CreateBookingRequest{Quantity: 3})
		require.NoError(t, err)

		assert.Len(t, result.OrderID, 8)
		assert.Equal(t, 3, result.Quantity)
		assert.True(t, decimal.NewFromInt(40).Equal(result.UnitPrice))
		assert.True(t, decimal.NewFromInt(120).Equal(result.Total))
		assert.Equal(t, 3, repo.eventBookedCount(event.ID))
	})

	t.Run("price snapshots the cheapest tier", func(t *testing.T) {
		repo := newFakeRepository()
		event := openEvent(0, 99)
		event.Tiers = []events.TicketTier{
			{Name: "Gold", Quantity: 10, Price: decimal.NewFromInt(80)},
			{Name: "Silver", Quantity: 20, Price: decimal.NewFromInt(35)},
		}
		repo.addEvent(event)
		svc := newTestService(repo)

		result, err := svc.Book(ctx, uuid.New(), event.ID, &CreateBookingRequest{Quantity: 2})
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(35).Equal(result.UnitPrice))
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		repo := newFakeRepository()
		event := openEvent(10, 40)
		repo.addEvent(event)
		svc := newTestService(repo)

		_, err := svc.Book(ctx, uuid.New(), event.ID, &CreateBookingRequest{Quantity: 0})
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("unknown event", func(t *testing.T) {
		svc := newTestService(newFakeRepository())
		_, err := svc.Book(ctx, uuid.New(), uuid.New(), &CreateBookingRequest{Quantity: 1})
		assert.ErrorIs(t, err, events.ErrNotFound)
	})

	t.Run("cancelled event is unavailable", func(t *testing.T) {
		repo := newFakeRepository()
		event := openEvent(10, 40)
		event.Status = events.StatusCancelled
		repo.addEvent(event)
		svc := newTestService(repo)

		_, err := svc.Book(ctx, uuid.New(), event.ID, &CreateBookingRequest{Quantity: 1})
		assert.ErrorIs(t, err, ErrEventUnavailable)
	})

	t.Run("started event is unavailable even if stored open", func(t *testing.T) {
		repo := newFakeRepository()
		event := openEvent(10, 40)
		event.StartTime = testNow.Add(-time.Minute)
		repo.addEvent(event)
		svc := newTestService(repo)

		_, err := svc.Book(ctx, uuid.New(), event.ID, &CreateBookingRequest{Quantity: 1})
		assert.ErrorIs(t, err, ErrEventUnavailable)

		// The refreshed status is persisted even though the booking was
		// refused.
		assert.Equal(t, events.StatusInactive, repo.eventStatus(event.ID))
	})

	t.Run("insufficient capacity leaves no partial state", func(t *testing.T) {
		repo := newFakeRepository()
		event := openEvent(5, 40)
		repo.addEvent(event)
		svc := newTestService(repo)

		_, err := svc.Book(ctx, uuid.New(), event.ID, &CreateBookingRequest{Quantity: 6})
		assert.ErrorIs(t, err, ErrInsufficientCapacity)
		assert.Equal(t, 0, repo.eventBookedCount(event.ID))
		assert.Equal(t, events.StatusOpen, repo.eventStatus(event.ID))
	})

	t.Run("booking the last tickets flips the event to sold out", func(t *testing.T) {
		repo := newFakeRepository()
		event := openEvent(4, 40)
		repo.addEvent(event)
		svc := newTestService(repo)

		_, err := svc.Book(ctx, uuid.New(), event.ID, &CreateBookingRequest{Quantity: 4})
		require.NoError(t, err)
		assert.Equal(t, events.StatusSoldOut, repo.eventStatus(event.ID))

		// Sold out is a capacity failure, not unavailability: the event
		// is still in the future and not cancelled.
		_, err = svc.Book(ctx, uuid.New(), event.ID, &CreateBookingRequest{Quantity: 1})
		assert.ErrorIs(t, err, ErrInsufficientCapacity)
	})

	t.Run("stored sold out status also reports insufficient capacity", func(t *testing.T) {
		repo := newFakeRepository()
		event := openEvent(5, 40)
		event.BookedCount = 5
		event.Status = events.StatusSoldOut
		repo.addEvent(event)
		svc := newTestService(repo)

		_, err := svc.Book(ctx, uuid.New(), event.ID, &CreateBookingRequest{Quantity: 1})
		assert.ErrorIs(t, err, ErrInsufficientCapacity)
	})

	t.Run("order code collisions are retried", func(t *testing.T) {
		repo := newFakeRepository()
		event := openEvent(10, 40)
		repo.addEvent(event)
		repo.forcedCollisions = 2
		svc := newTestService(repo)

		result, err := svc.Book(ctx, uuid.New(), event.ID, &CreateBookingRequest{Quantity: 1})
		require.NoError(t, err)
		assert.Len(t, result.OrderID, 8)
	})

	t.Run("persistent collisions give up", func(t *testing.T) {
		repo := newFakeRepository()
		event := openEvent(10, 40)
		repo.addEvent(event)
		repo.forcedCollisions = 100
		svc := newTestService(repo)

		_, err := svc.Book(ctx, uuid.New(), event.ID, &CreateBookingRequest{Quantity: 1})
		assert.ErrorIs(t, err, ErrDuplicateOrderID)
	})
}

func TestBookConcurrentLastTicket(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	event := openEvent(1, 40)
	repo.addEvent(event)
	svc := newTestService(repo)

	const contenders = 10
	var wg sync.WaitGroup
	results := make(chan error, contenders)

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Book(ctx, uuid.New(), event.ID, &CreateBookingRequest{Quantity: 1})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	winners := 0
	for err := range results {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrInsufficientCapacity)
		}
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, 1, repo.eventBookedCount(event.ID))
}

func TestBookPublishesConfirmation(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	event := openEvent(10, 40)
	repo.addEvent(event)
	producer := &fakeProducer{}
	svc := newTestServiceWithProducer(repo, producer)

	booked, err := svc.Book(ctx, uuid.New(), event.ID, &CreateBookingRequest{Quantity: 2})
	require.NoError(t, err)

	// The publish happens before Book returns.
	require.Len(t, producer.published, 1)
	msg := producer.published[0]
	assert.Equal(t, booked.OrderID, msg.OrderID)
	assert.Equal(t, event.ID, msg.EventID)
	assert.Equal(t, 2, msg.Quantity)
	assert.True(t, decimal.NewFromInt(80).Equal(msg.Total))
}

func TestBookedPriceIsImmutable(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	event := openEvent(10, 40)
	repo.addEvent(event)
	svc := newTestService(repo)

	userID := uuid.New()
	booked, err := svc.Book(ctx, userID, event.ID, &CreateBookingRequest{Quantity: 2})
	require.NoError(t, err)

	// The organiser doubles the price afterwards.
	repo.mu.Lock()
	repo.events[event.ID].Price = decimal.NewFromInt(80)
	repo.mu.Unlock()

	fetched, err := svc.GetBooking(ctx, userID, booked.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(40).Equal(fetched.UnitPrice))
	assert.True(t, decimal.NewFromInt(80).Equal(fetched.Total))
}

func TestGetUserBookings(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	event := openEvent(10, 40)
	repo.addEvent(event)
	svc := newTestService(repo)

	alice := uuid.New()
	bob := uuid.New()

	_, err := svc.Book(ctx, alice, event.ID, &CreateBookingRequest{Quantity: 1})
	require.NoError(t, err)
	_, err = svc.Book(ctx, alice, event.ID, &CreateBookingRequest{Quantity: 2})
	require.NoError(t, err)
	_, err = svc.Book(ctx, bob, event.ID, &CreateBookingRequest{Quantity: 1})
	require.NoError(t, err)

	aliceBookings, err := svc.GetUserBookings(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, aliceBookings, 2)

	// Bob cannot read Alice's booking.
	_, err = svc.GetBooking(ctx, bob, aliceBookings[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

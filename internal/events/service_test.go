package events

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"beatsbook/pkg/cache"
	"beatsbook/pkg/clock"
	"beatsbook/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepository is an in-memory Repository for service tests.
type fakeRepository struct {
	mu     sync.Mutex
	events map[uuid.UUID]*Event

	// afterRead runs after GetByIDOwned, outside the lock, so a test can
	// interleave a concurrent write between an edit's read and its save.
	afterRead func()
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{events: make(map[uuid.UUID]*Event)}
}

func (f *fakeRepository) Create(_ context.Context, event *Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	for i := range event.Tiers {
		if event.Tiers[i].ID == uuid.Nil {
			event.Tiers[i].ID = uuid.New()
		}
		event.Tiers[i].EventID = event.ID
	}
	f.events[event.ID] = cloneEvent(event)
	return nil
}

func (f *fakeRepository) GetByID(_ context.Context, id uuid.UUID) (*Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneEvent(event), nil
}

func (f *fakeRepository) GetByIDOwned(_ context.Context, id, ownerID uuid.UUID) (*Event, error) {
	f.mu.Lock()
	event, ok := f.events[id]
	var clone *Event
	if ok && event.OwnerID == ownerID {
		clone = cloneEvent(event)
	}
	f.mu.Unlock()

	if clone == nil {
		return nil, ErrNotFound
	}
	if f.afterRead != nil {
		f.afterRead()
	}
	return clone, nil
}

func (f *fakeRepository) List(_ context.Context, query *ListEventsQuery) ([]*Event, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*Event
	for _, event := range f.events {
		if query.Category != "" && event.Category != query.Category {
			continue
		}
		if query.Status != "" && string(event.Status) != strings.ToUpper(query.Status) {
			continue
		}
		result = append(result, cloneEvent(event))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartTime.Before(result[j].StartTime)
	})
	return result, int64(len(result)), nil
}

func (f *fakeRepository) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*Event
	for _, event := range f.events {
		if event.OwnerID == ownerID {
			result = append(result, cloneEvent(event))
		}
	}
	return result, nil
}

// Update mirrors the real repository: the booked count is taken from the
// stored row, not the caller's possibly stale copy, and the status is
// re-derived from it before the save.
func (f *fakeRepository) Update(_ context.Context, event *Event, replaceTiers bool, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.events[event.ID]
	if !ok {
		return ErrNotFound
	}

	if replaceTiers {
		for i := range event.Tiers {
			if event.Tiers[i].ID == uuid.Nil {
				event.Tiers[i].ID = uuid.New()
			}
			event.Tiers[i].EventID = event.ID
		}
	} else {
		event.Tiers = append([]TicketTier(nil), stored.Tiers...)
	}

	event.BookedCount = stored.BookedCount
	event.Refresh(now)

	f.events[event.ID] = cloneEvent(event)
	return nil
}

func (f *fakeRepository) SaveStatuses(_ context.Context, events []*Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, event := range events {
		if stored, ok := f.events[event.ID]; ok {
			stored.Status = event.Status
		}
	}
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[id]; !ok {
		return ErrNotFound
	}
	delete(f.events, id)
	return nil
}

func (f *fakeRepository) Categories(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[string]bool)
	var categories []string
	for _, event := range f.events {
		if event.Category != "" && !seen[event.Category] {
			seen[event.Category] = true
			categories = append(categories, event.Category)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

func (f *fakeRepository) storedStatus(t *testing.T, id uuid.UUID) Status {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[id]
	require.True(t, ok)
	return event.Status
}

func cloneEvent(event *Event) *Event {
	clone := *event
	clone.Tiers = append([]TicketTier(nil), event.Tiers...)
	return &clone
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

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(clk clock.Clock) (Service, *fakeRepository, *fakeCache) {
	repo := newFakeRepository()
	fc := newFakeCache()
	log := logger.GetDefault()
	syncer := NewSynchronizer(repo, clk, log)
	return NewService(repo, syncer, fc, clk, log), repo, fc
}

func seedEvent(t *testing.T, repo *fakeRepository, event *Event) *Event {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), event))
	return event
}

func TestCreateEvent(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("rejects start time in the past", func(t *testing.T) {
		svc, _, _ := newTestService(clock.NewFixed(testNow))
		_, err := svc.CreateEvent(ctx, ownerID, &CreateEventRequest{
			Name:      "Too Late",
			StartTime: testNow.Add(-time.Hour),
			Capacity:  10,
		})
		assert.ErrorIs(t, err, ErrStartInPast)
	})

	t.Run("zero capacity event is sold out at birth", func(t *testing.T) {
		svc, _, _ := newTestService(clock.NewFixed(testNow))
		result, err := svc.CreateEvent(ctx, ownerID, &CreateEventRequest{
			Name:      "Exclusive",
			StartTime: testNow.Add(time.Hour),
			Capacity:  0,
		})
		require.NoError(t, err)
		assert.Equal(t, StatusSoldOut, result.Status)
	})

	t.Run("tier quantities define capacity", func(t *testing.T) {
		svc, _, _ := newTestService(clock.NewFixed(testNow))
		result, err := svc.CreateEvent(ctx, ownerID, &CreateEventRequest{
			Name:      "Tiered Night",
			StartTime: testNow.Add(time.Hour),
			Capacity:  5, // ignored once tiers exist
			Tiers: []TierInput{
				{Name: "Silver", Quantity: 40, Price: decimal.NewFromInt(30)},
				{Name: "Gold", Quantity: 10, Price: decimal.NewFromInt(60)},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, StatusOpen, result.Status)
		assert.Equal(t, 50, result.Capacity)
		assert.True(t, decimal.NewFromInt(30).Equal(result.Price))
	})

	t.Run("rejects invalid tier", func(t *testing.T) {
		svc, _, _ := newTestService(clock.NewFixed(testNow))
		_, err := svc.CreateEvent(ctx, ownerID, &CreateEventRequest{
			Name:      "Broken",
			StartTime: testNow.Add(time.Hour),
			Tiers:     []TierInput{{Name: "Free-for-all", Quantity: 0, Price: decimal.NewFromInt(5)}},
		})
		assert.ErrorIs(t, err, ErrInvalidTier)
	})
}

func TestListEventsRefreshesStatuses(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(clock.NewFixed(testNow))

	// Stored as OPEN, but the start time has passed.
	stale := seedEvent(t, repo, &Event{
		OwnerID:   uuid.New(),
		Name:      "Yesterday's Show",
		StartTime: testNow.Add(-time.Hour),
		Capacity:  100,
		Status:    StatusOpen,
	})
	fresh := seedEvent(t, repo, &Event{
		OwnerID:   uuid.New(),
		Name:      "Tomorrow's Show",
		StartTime: testNow.Add(time.Hour),
		Capacity:  100,
		Status:    StatusOpen,
	})

	result, err := svc.ListEvents(ctx, &ListEventsQuery{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, result.Events, 2)

	byID := make(map[uuid.UUID]Status)
	for _, event := range result.Events {
		byID[event.ID] = event.Status
	}
	assert.Equal(t, StatusInactive, byID[stale.ID])
	assert.Equal(t, StatusOpen, byID[fresh.ID])

	// The derived status was written back.
	assert.Equal(t, StatusInactive, repo.storedStatus(t, stale.ID))
}

func TestGetEventRefreshesStatus(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(clock.NewFixed(testNow))

	event := seedEvent(t, repo, &Event{
		OwnerID:     uuid.New(),
		Name:        "Full House",
		StartTime:   testNow.Add(time.Hour),
		Capacity:    10,
		BookedCount: 10,
		Status:      StatusOpen,
	})

	result, err := svc.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSoldOut, result.Status)
	assert.Equal(t, 0, result.Remaining)
	assert.Equal(t, StatusSoldOut, repo.storedStatus(t, event.ID))
}

func TestListEventsServedFromCache(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(clock.NewFixed(testNow))

	seedEvent(t, repo, &Event{
		OwnerID:   uuid.New(),
		Name:      "Cached Show",
		StartTime: testNow.Add(time.Hour),
		Capacity:  10,
		Status:    StatusOpen,
	})

	first, err := svc.ListEvents(ctx, &ListEventsQuery{Page: 1, Limit: 20})
	require.NoError(t, err)

	// A row added behind the cache's back is not visible until the TTL or
	// an invalidation.
	seedEvent(t, repo, &Event{
		OwnerID:   uuid.New(),
		Name:      "Invisible Show",
		StartTime: testNow.Add(time.Hour),
		Capacity:  10,
		Status:    StatusOpen,
	})

	second, err := svc.ListEvents(ctx, &ListEventsQuery{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, len(first.Events), len(second.Events))
}

func TestCachedResponsesTrackStartTime(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	fc := newFakeCache()
	log := logger.GetDefault()

	event := seedEvent(t, repo, &Event{
		OwnerID:   uuid.New(),
		Name:      "Tonight Only",
		StartTime: testNow.Add(time.Hour),
		Capacity:  10,
		Status:    StatusOpen,
	})

	newServiceAt := func(clk clock.Clock) Service {
		return NewService(repo, NewSynchronizer(repo, clk, log), fc, clk, log)
	}

	// Warm both caches while the event is still in the future.
	warm := newServiceAt(clock.NewFixed(testNow))
	detail, err := warm.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, detail.Status)

	list, err := warm.ListEvents(ctx, &ListEventsQuery{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, list.Events, 1)
	assert.Equal(t, StatusOpen, list.Events[0].Status)

	// Two hours later the cached entries are still live, but the event
	// has started; the hits must not show it as open.
	later := newServiceAt(clock.NewFixed(testNow.Add(2 * time.Hour)))

	detail, err = later.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusInactive, detail.Status)

	list, err = later.ListEvents(ctx, &ListEventsQuery{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, list.Events, 1)
	assert.Equal(t, StatusInactive, list.Events[0].Status)
}

func TestUpdateEvent(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("raising capacity reopens a sold out event", func(t *testing.T) {
		svc, repo, _ := newTestService(clock.NewFixed(testNow))
		event := seedEvent(t, repo, &Event{
			OwnerID:     ownerID,
			Name:        "Popular",
			StartTime:   testNow.Add(time.Hour),
			Capacity:    10,
			BookedCount: 10,
			Status:      StatusSoldOut,
		})

		capacity := 20
		result, err := svc.UpdateEvent(ctx, ownerID, event.ID, &UpdateEventRequest{Capacity: &capacity})
		require.NoError(t, err)
		assert.Equal(t, StatusOpen, result.Status)
		assert.Equal(t, 10, result.Remaining)
	})

	t.Run("cancellation survives edits", func(t *testing.T) {
		svc, repo, _ := newTestService(clock.NewFixed(testNow))
		event := seedEvent(t, repo, &Event{
			OwnerID:   ownerID,
			Name:      "Called Off",
			StartTime: testNow.Add(time.Hour),
			Capacity:  10,
			Status:    StatusCancelled,
		})

		capacity := 100
		result, err := svc.UpdateEvent(ctx, ownerID, event.ID, &UpdateEventRequest{Capacity: &capacity})
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, result.Status)
	})

	t.Run("tiers are replaced wholesale", func(t *testing.T) {
		svc, repo, _ := newTestService(clock.NewFixed(testNow))
		event := seedEvent(t, repo, &Event{
			OwnerID:   ownerID,
			Name:      "Re-tiered",
			StartTime: testNow.Add(time.Hour),
			Status:    StatusOpen,
			Tiers: []TicketTier{
				{Name: "Old Silver", Quantity: 10, Price: decimal.NewFromInt(20)},
				{Name: "Old Gold", Quantity: 5, Price: decimal.NewFromInt(40)},
			},
		})

		result, err := svc.UpdateEvent(ctx, ownerID, event.ID, &UpdateEventRequest{
			Tiers: []TierInput{{Name: "Flat", Quantity: 30, Price: decimal.NewFromInt(25)}},
		})
		require.NoError(t, err)
		require.Len(t, result.Tiers, 1)
		assert.Equal(t, "Flat", result.Tiers[0].Name)
		assert.Equal(t, 30, result.Capacity)
	})

	t.Run("edit does not clobber a concurrent booking", func(t *testing.T) {
		svc, repo, _ := newTestService(clock.NewFixed(testNow))
		event := seedEvent(t, repo, &Event{
			OwnerID:     ownerID,
			Name:        "Busy",
			StartTime:   testNow.Add(time.Hour),
			Capacity:    10,
			BookedCount: 2,
			Status:      StatusOpen,
		})

		// The remaining tickets sell out between the edit's read and its
		// save.
		repo.afterRead = func() {
			repo.mu.Lock()
			repo.events[event.ID].BookedCount = 10
			repo.mu.Unlock()
		}

		name := "Busy (renamed)"
		result, err := svc.UpdateEvent(ctx, ownerID, event.ID, &UpdateEventRequest{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, 10, result.BookedCount)
		assert.Equal(t, 0, result.Remaining)
		assert.Equal(t, StatusSoldOut, result.Status)

		repo.mu.Lock()
		stored := repo.events[event.ID]
		assert.Equal(t, 10, stored.BookedCount)
		assert.Equal(t, "Busy (renamed)", stored.Name)
		repo.mu.Unlock()
	})

	t.Run("another user's event reads as missing", func(t *testing.T) {
		svc, repo, _ := newTestService(clock.NewFixed(testNow))
		event := seedEvent(t, repo, &Event{
			OwnerID:   ownerID,
			Name:      "Not Yours",
			StartTime: testNow.Add(time.Hour),
			Capacity:  10,
			Status:    StatusOpen,
		})

		name := "Hijacked"
		_, err := svc.UpdateEvent(ctx, uuid.New(), event.ID, &UpdateEventRequest{Name: &name})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCancelEvent(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	svc, repo, _ := newTestService(clock.NewFixed(testNow))

	event := seedEvent(t, repo, &Event{
		OwnerID:   ownerID,
		Name:      "Doomed",
		StartTime: testNow.Add(time.Hour),
		Capacity:  10,
		Status:    StatusOpen,
	})

	result, err := svc.CancelEvent(ctx, ownerID, event.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, result.Status)

	// Idempotent.
	again, err := svc.CancelEvent(ctx, ownerID, event.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, again.Status)

	// Absorbing: a later read never resurrects it.
	detail, err := svc.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, detail.Status)
}

func TestDeleteEventOwnerScoped(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	svc, repo, _ := newTestService(clock.NewFixed(testNow))

	event := seedEvent(t, repo, &Event{
		OwnerID:   ownerID,
		Name:      "Short-lived",
		StartTime: testNow.Add(time.Hour),
		Capacity:  10,
		Status:    StatusOpen,
	})

	assert.ErrorIs(t, svc.DeleteEvent(ctx, uuid.New(), event.ID), ErrNotFound)

	require.NoError(t, svc.DeleteEvent(ctx, ownerID, event.ID))
	_, err := svc.GetEvent(ctx, event.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

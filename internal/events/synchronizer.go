package events

import (
	"context"

	"beatsbook/pkg/clock"
	"beatsbook/pkg/logger"
)

// Synchronizer reconciles stored event statuses with the wall clock before
// events are handed to readers. A single instant is used for a whole batch so
// all rows in one response agree on "now", and only rows whose status actually
// changed are written back.
type Synchronizer struct {
	repo  Repository
	clock clock.Clock
	log   *logger.Logger
}

// NewSynchronizer creates a new status synchronizer
func NewSynchronizer(repo Repository, clk clock.Clock, log *logger.Logger) *Synchronizer {
	return &Synchronizer{repo: repo, clock: clk, log: log}
}

// Sync refreshes the given events in place and persists any status changes.
// It returns the number of rows whose status changed. A write-back failure
// does not invalidate the in-memory refresh; readers still see the derived
// statuses and the next pass retries the write.
func (s *Synchronizer) Sync(ctx context.Context, batch []*Event) (int, error) {
	now := s.clock.Now()

	var changed []*Event
	for _, event := range batch {
		if event.Refresh(now) {
			changed = append(changed, event)
		}
	}
	if len(changed) == 0 {
		return 0, nil
	}

	if err := s.repo.SaveStatuses(ctx, changed); err != nil {
		s.log.WithError(err).Error("status sync write-back failed", "changed", len(changed))
		return len(changed), err
	}

	s.log.LogStatusSync(ctx, len(changed), now)
	return len(changed), nil
}

// SyncOne refreshes a single event and persists its status if it changed.
func (s *Synchronizer) SyncOne(ctx context.Context, event *Event) (bool, error) {
	changed, err := s.Sync(ctx, []*Event{event})
	return changed > 0, err
}

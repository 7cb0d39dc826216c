package events

import "time"

// Status is the lifecycle state of an event.
type Status string

const (
	// StatusOpen means the event is in the future and has tickets remaining.
	StatusOpen Status = "OPEN"
	// StatusInactive means the event's start time has passed.
	StatusInactive Status = "INACTIVE"
	// StatusSoldOut means no tickets remain for a future event.
	StatusSoldOut Status = "SOLD_OUT"
	// StatusCancelled means the organiser cancelled the event. Terminal.
	StatusCancelled Status = "CANCELLED"
)

// IsValid checks if the status is a known value
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusInactive, StatusSoldOut, StatusCancelled:
		return true
	}
	return false
}

// IsClosed reports whether the event refuses bookings outright: cancelled
// or already started. A sold-out event is not closed; a booking attempt
// against it fails the capacity check instead.
func (s Status) IsClosed() bool {
	return s == StatusCancelled || s == StatusInactive
}

// ComputeStatus derives the status of an event from its current state at the
// given instant. Cancellation is absorbing; an elapsed start time takes
// precedence over capacity; depleted capacity reads as sold out. The
// computation is a pure function of (current status, start time, remaining),
// so repeated application at the same instant is a no-op.
func ComputeStatus(current Status, startTime time.Time, remaining int, now time.Time) Status {
	if current == StatusCancelled {
		return StatusCancelled
	}
	if startTime.Before(now) {
		return StatusInactive
	}
	if remaining <= 0 {
		return StatusSoldOut
	}
	return StatusOpen
}

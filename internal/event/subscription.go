package event

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Subscription is the handle returned when a callback is subscribed.
// Releasing it removes the callback from whichever event currently holds
// it, including after a pending event has been promoted.
type Subscription struct {
	id       string
	eventID  ID
	callback Callback

	owner    atomic.Pointer[Event]
	released atomic.Bool
}

func newSubscription(eventID ID, cb Callback) *Subscription {
	return &Subscription{
		id:       uuid.NewString(),
		eventID:  eventID,
		callback: cb,
	}
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() string {
	return s.id
}

// EventID returns the event the callback is subscribed to.
func (s *Subscription) EventID() ID {
	return s.eventID
}

// Active reports whether the subscription still receives firings.
func (s *Subscription) Active() bool {
	return !s.released.Load()
}

// Release unsubscribes the callback.
// It returns false if the subscription was already released.
func (s *Subscription) Release() bool {
	if !s.released.CompareAndSwap(false, true) {
		return false
	}
	for {
		owner := s.owner.Load()
		if owner == nil || owner.remove(s) {
			return true
		}
		// Promotion may have moved the subscription while we were looking.
		if s.owner.Load() == owner {
			return true
		}
	}
}

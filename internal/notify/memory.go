package notify

import (
	"context"
	"sync"

	id "bagofholding/pkg/domain"
)

// RecordingSink captures broadcasts for assertions in tests.
type RecordingSink struct {
	mu     sync.Mutex
	events []Event
}

func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

func (s *RecordingSink) Broadcast(_ context.Context, bagID id.BagID, event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event.BagID = bagID
	s.events = append(s.events, event)
}

// Events returns a copy of everything broadcast so far.
func (s *RecordingSink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// EventsFor returns events broadcast to a specific bag.
func (s *RecordingSink) EventsFor(bagID id.BagID) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, e := range s.events {
		if e.BagID == bagID {
			out = append(out, e)
		}
	}
	return out
}

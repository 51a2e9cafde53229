package audit

import (
	"context"
	"fmt"

	id "bagofholding/pkg/domain"
	"bagofholding/pkg/platform/sentinel"
)

// ChannelStore hands events to a Worker through its inbox instead of
// persisting them inline. Services emit through a Publisher backed by this
// store; the worker owns the real persistence.
type ChannelStore struct {
	inbox chan<- Event
}

func NewChannelStore(inbox chan<- Event) *ChannelStore {
	return &ChannelStore{inbox: inbox}
}

func (s *ChannelStore) Append(ctx context.Context, event Event) error {
	select {
	case s.inbox <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ListByBag is not served here; reads go to the worker's backing store.
func (s *ChannelStore) ListByBag(context.Context, id.BagID) ([]Event, error) {
	return nil, fmt.Errorf("audit reads are not served from the inbox: %w", sentinel.ErrUnavailable)
}

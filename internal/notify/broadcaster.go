package notify

import (
	"context"
	"log/slog"

	id "bagofholding/pkg/domain"
)

// Publisher pushes a single event to the underlying transport.
type Publisher interface {
	Publish(ctx context.Context, bagID id.BagID, event Event) error
}

type queued struct {
	bagID id.BagID
	event Event
}

// Broadcaster decouples request handling from delivery: Broadcast enqueues,
// a worker goroutine publishes. The queue is bounded; when it is full the
// event is dropped and logged rather than blocking the caller.
type Broadcaster struct {
	publisher Publisher
	logger    *slog.Logger
	inbox     chan queued
}

// NewBroadcaster constructs a Broadcaster with the given queue depth.
func NewBroadcaster(publisher Publisher, logger *slog.Logger, queueSize int) *Broadcaster {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Broadcaster{
		publisher: publisher,
		logger:    logger,
		inbox:     make(chan queued, queueSize),
	}
}

// Broadcast enqueues an event for asynchronous delivery. It never blocks and
// never reports failure to the caller.
func (b *Broadcaster) Broadcast(ctx context.Context, bagID id.BagID, event Event) {
	select {
	case b.inbox <- queued{bagID: bagID, event: event}:
	default:
		b.logger.WarnContext(ctx, "notification queue full, dropping event",
			"bag_id", bagID,
			"event_type", event.Type,
		)
	}
}

// Run consumes the queue until the context is cancelled. Publish failures are
// logged and swallowed.
func (b *Broadcaster) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case q := <-b.inbox:
			if err := b.publisher.Publish(ctx, q.bagID, q.event); err != nil {
				b.logger.ErrorContext(ctx, "failed to publish notification",
					"error", err,
					"bag_id", q.bagID,
					"event_type", q.event.Type,
				)
			}
		}
	}
}

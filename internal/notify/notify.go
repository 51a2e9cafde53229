// Package notify delivers real-time events to a bag's broadcast channel.
//
// Delivery is fire-and-forget: a failed broadcast never fails or rolls back
// the operation that triggered it. Events are delivered at-most-once under
// normal operation; consumers must tolerate duplicates if the transport
// retries.
package notify

import (
	"context"
	"time"

	id "bagofholding/pkg/domain"
)

// EventType names a broadcastable change on a bag.
type EventType string

const (
	EventMemberJoined EventType = "member_joined"
	EventItemAdded    EventType = "item_added"
	EventItemUpdated  EventType = "item_updated"
	EventItemRemoved  EventType = "item_removed"
)

// Event is the payload broadcast to a bag's channel.
type Event struct {
	Type       EventType `json:"type"`
	BagID      id.BagID  `json:"bag_id"`
	ActorID    id.UserID `json:"actor_id"`
	Subject    string    `json:"subject,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Sink is the broadcast target invoked by mutation-causing operations.
// Implementations must never surface delivery failures to the caller.
type Sink interface {
	Broadcast(ctx context.Context, bagID id.BagID, event Event)
}

// NoopSink discards all events. Used when no transport is configured.
type NoopSink struct{}

func (NoopSink) Broadcast(context.Context, id.BagID, Event) {}

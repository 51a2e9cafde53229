// Package audit records an append-only trail of security-relevant actions.
// Invitations are never deleted; together with this trail they give owners a
// full history of who was offered and granted access to a bag.
package audit

import (
	"context"
	"time"

	id "bagofholding/pkg/domain"
)

// Action names an auditable event.
type Action string

const (
	ActionInvitationCreated  Action = "invitation.created"
	ActionInvitationAccepted Action = "invitation.accepted"
	ActionInvitationExpired  Action = "invitation.expired"
	ActionMemberGranted      Action = "access.member_granted"
	ActionBagCreated         Action = "bag.created"
)

// Event is one audit record.
type Event struct {
	Action    Action    `json:"action"`
	BagID     id.BagID  `json:"bag_id"`
	ActorID   id.UserID `json:"actor_id"`
	Subject   string    `json:"subject,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Store is the append-only persistence boundary for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByBag(ctx context.Context, bagID id.BagID) ([]Event, error)
}

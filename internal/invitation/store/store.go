// Package store persists invitations.
package store

import (
	"context"
	"time"

	"bagofholding/internal/invitation/models"
	id "bagofholding/pkg/domain"
)

// Store is the persistence boundary for invitations.
//
// Error contract:
// - Create returns sentinel.ErrConflict on a duplicate token
// - FindByToken returns sentinel.ErrNotFound when absent
// - Transition returns sentinel.ErrNotFound for an unknown id and
//   sentinel.ErrInvalidState when the stored status is already terminal
type Store interface {
	Create(ctx context.Context, invitation *models.Invitation) error
	FindByToken(ctx context.Context, token string) (*models.Invitation, error)

	// Transition is a compare-and-set from Pending to a terminal status.
	// Exactly one of several concurrent callers succeeds; the rest observe
	// sentinel.ErrInvalidState and must re-read to learn the winner's state.
	// acceptedBy is recorded only when transitioning to Accepted.
	Transition(ctx context.Context, invitationID id.InvitationID, to models.Status, acceptedBy id.UserID, now time.Time) (*models.Invitation, error)

	ListByBag(ctx context.Context, bagID id.BagID) ([]*models.Invitation, error)
}

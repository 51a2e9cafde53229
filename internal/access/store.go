package access

import (
	"context"

	id "bagofholding/pkg/domain"
)

// Store is the persistence boundary for access grants.
//
// Error contract:
// - Create returns sentinel.ErrConflict when the (bag, user) pair already exists
// - Find returns sentinel.ErrNotFound when no grant exists for the pair
// - Delete returns sentinel.ErrNotFound when there is nothing to revoke
type Store interface {
	Create(ctx context.Context, grant *Grant) error
	Find(ctx context.Context, bagID id.BagID, userID id.UserID) (*Grant, error)
	ListByBag(ctx context.Context, bagID id.BagID) ([]*Grant, error)
	ListByUser(ctx context.Context, userID id.UserID) ([]*Grant, error)
	Delete(ctx context.Context, bagID id.BagID, userID id.UserID) error
}

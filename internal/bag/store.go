package bag

import (
	"context"

	id "bagofholding/pkg/domain"
)

// Store is the persistence boundary for bags.
//
// Error contract:
// - Find returns sentinel.ErrNotFound when the bag does not exist
// - Delete returns sentinel.ErrNotFound when there is nothing to delete
type Store interface {
	Create(ctx context.Context, bag *Bag) error
	Find(ctx context.Context, bagID id.BagID) (*Bag, error)
	FindMany(ctx context.Context, bagIDs []id.BagID) ([]*Bag, error)
	Delete(ctx context.Context, bagID id.BagID) error
}

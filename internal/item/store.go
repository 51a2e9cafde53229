package item

import (
	"context"

	id "bagofholding/pkg/domain"
)

// Store is the persistence boundary for items and their history.
//
// Error contract:
// - Find, Update, and Delete return sentinel.ErrNotFound for unknown items
type Store interface {
	Create(ctx context.Context, item *Item) error
	Find(ctx context.Context, itemID id.ItemID) (*Item, error)
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, itemID id.ItemID) error
	ListByBag(ctx context.Context, bagID id.BagID) ([]*Item, error)

	AppendHistory(ctx context.Context, record History) error
	HistoryForItem(ctx context.Context, itemID id.ItemID) ([]History, error)
}

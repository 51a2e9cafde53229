// Package item manages the inventory rows inside a bag.
package item

import (
	"strings"
	"time"

	id "bagofholding/pkg/domain"
	dErrors "bagofholding/pkg/domain-errors"
)

const maxNameLength = 200

// Item is one inventory row. Quantity never goes below zero; removing the
// last unit is an explicit Remove, not an update to a negative count.
type Item struct {
	ID        id.ItemID `json:"id"`
	BagID     id.BagID  `json:"bag_id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewItem validates the inputs and builds an item with a fresh id.
func NewItem(bagID id.BagID, name, note string, quantity int, now time.Time) (*Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "item name cannot be empty")
	}
	if len(name) > maxNameLength {
		return nil, dErrors.New(dErrors.CodeValidation, "item name is too long")
	}
	if quantity < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "quantity cannot be negative")
	}
	return &Item{
		ID:        id.NewItemID(),
		BagID:     bagID,
		Name:      name,
		Quantity:  quantity,
		Note:      strings.TrimSpace(note),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// HistoryAction names a change to an item.
type HistoryAction string

const (
	HistoryAdded   HistoryAction = "added"
	HistoryUpdated HistoryAction = "updated"
	HistoryRemoved HistoryAction = "removed"
)

// History is one append-only change record. Delta is the quantity change the
// action caused, zero for edits that only touch name or note.
type History struct {
	ItemID     id.ItemID     `json:"item_id"`
	BagID      id.BagID      `json:"bag_id"`
	Action     HistoryAction `json:"action"`
	Delta      int           `json:"delta"`
	ActorID    id.UserID     `json:"actor_id"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// Package bag manages inventories and their lifecycle.
package bag

import (
	"strings"
	"time"

	id "bagofholding/pkg/domain"
	dErrors "bagofholding/pkg/domain-errors"
)

const maxNameLength = 120

// Bag is a shared inventory. OwnerID records the creator; membership beyond
// the creator lives in access grants, not here.
type Bag struct {
	ID          id.BagID  `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	OwnerID     id.UserID `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewBag validates the inputs and builds a bag with a fresh id.
func NewBag(name, description string, ownerID id.UserID, now time.Time) (*Bag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "bag name cannot be empty")
	}
	if len(name) > maxNameLength {
		return nil, dErrors.New(dErrors.CodeValidation, "bag name is too long")
	}
	if ownerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "owner id is required")
	}
	return &Bag{
		ID:          id.NewBagID(),
		Name:        name,
		Description: strings.TrimSpace(description),
		OwnerID:     ownerID,
		CreatedAt:   now,
	}, nil
}

// Package domain defines typed identifiers shared across features.
//
// IDs are distinct types over uuid.UUID so a BagID can never be passed where a
// UserID is expected. Parsing enforces the trust-boundary invariant that IDs
// are valid, non-nil UUIDs.
package domain

import (
	"github.com/google/uuid"

	dErrors "bagofholding/pkg/domain-errors"
)

type (
	// UserID identifies a registered principal.
	UserID uuid.UUID
	// BagID identifies a bag (shared inventory container).
	BagID uuid.UUID
	// InvitationID identifies an invitation record.
	InvitationID uuid.UUID
	// ItemID identifies an item within a bag.
	ItemID uuid.UUID
)

func (id UserID) String() string       { return uuid.UUID(id).String() }
func (id BagID) String() string        { return uuid.UUID(id).String() }
func (id InvitationID) String() string { return uuid.UUID(id).String() }
func (id ItemID) String() string       { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id BagID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id InvitationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ItemID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }

// Defined types do not inherit uuid.UUID's marshalling, so each ID delegates
// explicitly. Without these, encoding/json renders IDs as byte arrays.

func (id UserID) MarshalText() ([]byte, error)       { return uuid.UUID(id).MarshalText() }
func (id BagID) MarshalText() ([]byte, error)        { return uuid.UUID(id).MarshalText() }
func (id InvitationID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id ItemID) MarshalText() ([]byte, error)       { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error       { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *BagID) UnmarshalText(b []byte) error        { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *InvitationID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *ItemID) UnmarshalText(b []byte) error       { return (*uuid.UUID)(id).UnmarshalText(b) }

// NewUserID generates a fresh user ID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewBagID generates a fresh bag ID.
func NewBagID() BagID { return BagID(uuid.New()) }

// NewInvitationID generates a fresh invitation ID.
func NewInvitationID() InvitationID { return InvitationID(uuid.New()) }

// NewItemID generates a fresh item ID.
func NewItemID() ItemID { return ItemID(uuid.New()) }

// ParseUserID parses and validates a user ID from its string form.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	return UserID(u), err
}

// ParseBagID parses and validates a bag ID from its string form.
func ParseBagID(s string) (BagID, error) {
	u, err := parseUUID(s, "bag id")
	return BagID(u), err
}

// ParseInvitationID parses and validates an invitation ID from its string form.
func ParseInvitationID(s string) (InvitationID, error) {
	u, err := parseUUID(s, "invitation id")
	return InvitationID(u), err
}

// ParseItemID parses and validates an item ID from its string form.
func ParseItemID(s string) (ItemID, error) {
	u, err := parseUUID(s, "item id")
	return ItemID(u), err
}

func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be nil")
	}
	return u, nil
}

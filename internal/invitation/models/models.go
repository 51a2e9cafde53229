// Package models defines the invitation record and its state machine.
package models

import (
	"time"

	id "bagofholding/pkg/domain"
	dErrors "bagofholding/pkg/domain-errors"
)

// Status is the invitation lifecycle state. Pending is the only live state;
// Accepted and Expired are terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusExpired  Status = "expired"
)

// Terminal reports whether the status permits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusExpired
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusAccepted || s == StatusExpired
}

// ParseStatus converts a stored status label back to a Status.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.Valid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown invitation status: "+s)
	}
	return status, nil
}

// Invitation is an offer of Member access to a bag, redeemable once by
// presenting its token. Invitations are never deleted: terminal records stay
// queryable so owners keep a full history of offered access.
type Invitation struct {
	ID         id.InvitationID `json:"id"`
	BagID      id.BagID        `json:"bag_id"`
	Token      string          `json:"token"`
	Email      string          `json:"email,omitempty"`
	InvitedBy  id.UserID       `json:"invited_by"`
	Status     Status          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	ExpiresAt  time.Time       `json:"expires_at"`
	AcceptedBy *id.UserID      `json:"accepted_by,omitempty"`
	AcceptedAt *time.Time      `json:"accepted_at,omitempty"`
}

// DueToExpire reports whether a pending invitation's deadline has passed.
// The boundary is inclusive: at exactly ExpiresAt the invitation is expired.
func (i *Invitation) DueToExpire(now time.Time) bool {
	return i.Status == StatusPending && !now.Before(i.ExpiresAt)
}

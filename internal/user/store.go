package user

import (
	"context"

	id "bagofholding/pkg/domain"
)

// Store is the persistence boundary for accounts.
//
// Error contract:
// - Create returns sentinel.ErrConflict when the email is already registered
// - FindByID and FindByEmail return sentinel.ErrNotFound when absent
type Store interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, userID id.UserID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}

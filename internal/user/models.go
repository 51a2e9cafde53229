// Package user handles account registration and credential login.
package user

import (
	"time"

	id "bagofholding/pkg/domain"
)

// User is a registered account. PasswordHash never leaves the service layer.
type User struct {
	ID           id.UserID `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Package access resolves which principals hold which roles on a bag.
package access

import (
	"time"

	id "bagofholding/pkg/domain"
	dErrors "bagofholding/pkg/domain-errors"
)

// Role orders a principal's rights on a bag. Comparison is by integer value;
// never compare role names.
type Role int

const (
	RoleMember Role = iota + 1
	RoleOwner
)

func (r Role) String() string {
	switch r {
	case RoleMember:
		return "member"
	case RoleOwner:
		return "owner"
	default:
		return "unknown"
	}
}

// AtLeast reports whether r grants everything min does.
func (r Role) AtLeast(min Role) bool {
	return r >= min
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleMember || r == RoleOwner
}

// ParseRole converts a stored role label back to its ordered value.
func ParseRole(s string) (Role, error) {
	switch s {
	case "member":
		return RoleMember, nil
	case "owner":
		return RoleOwner, nil
	default:
		return 0, dErrors.New(dErrors.CodeInvalidInput, "unknown role: "+s)
	}
}

// Grant binds a principal to a bag with a role. Grants are never mutated in
// place; revocation is deletion, and role changes go through revoke+grant.
type Grant struct {
	BagID     id.BagID  `json:"bag_id"`
	UserID    id.UserID `json:"user_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

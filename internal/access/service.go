package access

import (
	"context"
	"errors"
	"log/slog"

	id "bagofholding/pkg/domain"
	dErrors "bagofholding/pkg/domain-errors"
	"bagofholding/pkg/platform/sentinel"
	"bagofholding/pkg/requestcontext"
)

// Service answers access questions and manages grant lifecycle.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Grant gives userID the role on the bag. Granting an identical role a second
// time is a no-op; asking for a different role than the one held is a conflict,
// since role changes must go through revoke+grant.
func (s *Service) Grant(ctx context.Context, bagID id.BagID, userID id.UserID, role Role) (*Grant, error) {
	if !role.Valid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown role")
	}

	if existing, err := s.store.Find(ctx, bagID, userID); err == nil {
		if existing.Role == role {
			return existing, nil
		}
		return nil, dErrors.New(dErrors.CodeConflict, "user already holds a different role on this bag")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check existing grant")
	}

	grant := &Grant{
		BagID:     bagID,
		UserID:    userID,
		Role:      role,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, grant); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// Lost a race with a concurrent grant; re-read and apply the
			// same idempotence rule.
			existing, findErr := s.store.Find(ctx, bagID, userID)
			if findErr != nil {
				return nil, dErrors.Wrap(findErr, dErrors.CodeInternal, "failed to re-read grant after conflict")
			}
			if existing.Role == role {
				return existing, nil
			}
			return nil, dErrors.New(dErrors.CodeConflict, "user already holds a different role on this bag")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create grant")
	}

	s.logger.InfoContext(ctx, "access granted",
		"bag_id", bagID.String(),
		"user_id", userID.String(),
		"role", role.String(),
	)
	return grant, nil
}

// HasAccess reports whether userID holds any role on the bag.
func (s *Service) HasAccess(ctx context.Context, bagID id.BagID, userID id.UserID) (bool, error) {
	_, err := s.store.Find(ctx, bagID, userID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up grant")
}

// RequireRole returns the user's grant when it meets the minimum role, and a
// CodeForbidden error otherwise. Holding no grant at all is also forbidden;
// callers must not be able to distinguish "no grant" from "insufficient role".
func (s *Service) RequireRole(ctx context.Context, bagID id.BagID, userID id.UserID, min Role) (*Grant, error) {
	grant, err := s.store.Find(ctx, bagID, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeForbidden, "access denied")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up grant")
	}
	if !grant.Role.AtLeast(min) {
		return nil, dErrors.New(dErrors.CodeForbidden, "access denied")
	}
	return grant, nil
}

// Members lists every grant on the bag.
func (s *Service) Members(ctx context.Context, bagID id.BagID) ([]*Grant, error) {
	grants, err := s.store.ListByBag(ctx, bagID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list grants")
	}
	return grants, nil
}

// BagsFor lists every grant the user holds, across bags.
func (s *Service) BagsFor(ctx context.Context, userID id.UserID) ([]*Grant, error) {
	grants, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list grants")
	}
	return grants, nil
}

// Revoke removes the user's grant on the bag. The last owner cannot be
// revoked; a bag always has at least one owner.
func (s *Service) Revoke(ctx context.Context, bagID id.BagID, userID id.UserID) error {
	grant, err := s.store.Find(ctx, bagID, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "grant not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up grant")
	}

	if grant.Role == RoleOwner {
		grants, err := s.store.ListByBag(ctx, bagID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list grants")
		}
		owners := 0
		for _, g := range grants {
			if g.Role == RoleOwner {
				owners++
			}
		}
		if owners <= 1 {
			return dErrors.New(dErrors.CodeInvariantViolation, "cannot revoke the last owner of a bag")
		}
	}

	if err := s.store.Delete(ctx, bagID, userID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "grant not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete grant")
	}

	s.logger.InfoContext(ctx, "access revoked",
		"bag_id", bagID.String(),
		"user_id", userID.String(),
	)
	return nil
}

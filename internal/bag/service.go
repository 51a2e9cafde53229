package bag

import (
	"context"
	"errors"
	"log/slog"

	"bagofholding/internal/access"
	"bagofholding/internal/audit"
	"bagofholding/internal/platform/metrics"
	id "bagofholding/pkg/domain"
	dErrors "bagofholding/pkg/domain-errors"
	"bagofholding/pkg/platform/sentinel"
	"bagofholding/pkg/requestcontext"
)

// AccessManager is the slice of the access service bags depend on.
type AccessManager interface {
	Grant(ctx context.Context, bagID id.BagID, userID id.UserID, role access.Role) (*access.Grant, error)
	RequireRole(ctx context.Context, bagID id.BagID, userID id.UserID, min access.Role) (*access.Grant, error)
	BagsFor(ctx context.Context, userID id.UserID) ([]*access.Grant, error)
	Members(ctx context.Context, bagID id.BagID) ([]*access.Grant, error)
}

// Auditor records security-relevant actions.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns bag lifecycle. Creating a bag grants the creator the owner
// role in the same operation, so a bag never exists without an owner.
type Service struct {
	store   Store
	access  AccessManager
	auditor Auditor
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewService(store Store, accessMgr AccessManager, auditor Auditor, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		access:  accessMgr,
		auditor: auditor,
		metrics: m,
		logger:  logger,
	}
}

// Create makes a new bag owned by creatorID.
func (s *Service) Create(ctx context.Context, name, description string, creatorID id.UserID) (*Bag, error) {
	newBag, err := NewBag(name, description, creatorID, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, newBag); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create bag")
	}

	if _, err := s.access.Grant(ctx, newBag.ID, creatorID, access.RoleOwner); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to grant owner role")
	}

	if err := s.auditor.Emit(ctx, audit.Event{
		Action:    audit.ActionBagCreated,
		BagID:     newBag.ID,
		ActorID:   creatorID,
		RequestID: requestcontext.RequestID(ctx),
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to record audit event", "error", err.Error())
	}

	s.metrics.IncrementBagsCreated()
	s.logger.InfoContext(ctx, "bag created",
		"bag_id", newBag.ID.String(),
		"owner_id", creatorID.String(),
	)
	return newBag, nil
}

// Get returns the bag when callerID holds any role on it. Callers without a
// grant get forbidden, never not-found, so bag ids cannot be probed.
func (s *Service) Get(ctx context.Context, bagID id.BagID, callerID id.UserID) (*Bag, error) {
	if _, err := s.access.RequireRole(ctx, bagID, callerID, access.RoleMember); err != nil {
		return nil, err
	}
	found, err := s.store.Find(ctx, bagID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "bag not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load bag")
	}
	return found, nil
}

// Name returns only the bag's display name, with no access check. It serves
// the unauthenticated invitation preview, where holding the token is the
// capability; nothing else about the bag is exposed.
func (s *Service) Name(ctx context.Context, bagID id.BagID) (string, error) {
	found, err := s.store.Find(ctx, bagID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeNotFound, "bag not found")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load bag")
	}
	return found.Name, nil
}

// ListForUser returns every bag the user holds a grant on.
func (s *Service) ListForUser(ctx context.Context, userID id.UserID) ([]*Bag, error) {
	grants, err := s.access.BagsFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	bagIDs := make([]id.BagID, 0, len(grants))
	for _, grant := range grants {
		bagIDs = append(bagIDs, grant.BagID)
	}
	bags, err := s.store.FindMany(ctx, bagIDs)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load bags")
	}
	return bags, nil
}

// Members lists the grants on a bag; any member may see who else has access.
func (s *Service) Members(ctx context.Context, bagID id.BagID, callerID id.UserID) ([]*access.Grant, error) {
	if _, err := s.access.RequireRole(ctx, bagID, callerID, access.RoleMember); err != nil {
		return nil, err
	}
	return s.access.Members(ctx, bagID)
}

// Delete removes a bag. Only an owner may delete.
func (s *Service) Delete(ctx context.Context, bagID id.BagID, callerID id.UserID) error {
	if _, err := s.access.RequireRole(ctx, bagID, callerID, access.RoleOwner); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, bagID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "bag not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete bag")
	}
	s.logger.InfoContext(ctx, "bag deleted",
		"bag_id", bagID.String(),
		"actor_id", callerID.String(),
	)
	return nil
}

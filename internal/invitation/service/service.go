// Package service implements the invitation lifecycle.
//
// State machine: Pending -> Accepted | Expired, both terminal. Expiry is
// lazy: nothing scans for overdue invitations, the deadline is enforced at
// read time and the boundary is inclusive. Every decision re-reads store
// state; there is no cross-call caching and no internal retrying.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bagofholding/internal/access"
	"bagofholding/internal/audit"
	"bagofholding/internal/invitation/models"
	"bagofholding/internal/invitation/store"
	"bagofholding/internal/notify"
	id "bagofholding/pkg/domain"
	dErrors "bagofholding/pkg/domain-errors"
	"bagofholding/pkg/email"
	"bagofholding/pkg/platform/sentinel"
	"bagofholding/pkg/requestcontext"
	"bagofholding/pkg/secrets"
)

// AccessManager is the slice of the access service invitations depend on.
type AccessManager interface {
	Grant(ctx context.Context, bagID id.BagID, userID id.UserID, role access.Role) (*access.Grant, error)
	RequireRole(ctx context.Context, bagID id.BagID, userID id.UserID, min access.Role) (*access.Grant, error)
}

// Auditor records security-relevant actions.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns invitation creation, validation, and acceptance.
type Service struct {
	store      store.Store
	access     AccessManager
	sink       notify.Sink
	auditor    Auditor
	metrics    *Metrics
	logger     *slog.Logger
	tracer     trace.Tracer
	defaultTTL time.Duration
}

func New(invitations store.Store, accessMgr AccessManager, sink notify.Sink, auditor Auditor, m *Metrics, logger *slog.Logger, defaultTTL time.Duration) *Service {
	return &Service{
		store:      invitations,
		access:     accessMgr,
		sink:       sink,
		auditor:    auditor,
		metrics:    m,
		logger:     logger,
		tracer:     otel.Tracer("bagofholding/invitation"),
		defaultTTL: defaultTTL,
	}
}

// Create issues a Pending invitation to the bag. Only an owner may invite.
// No notification is sent at creation; delivery of the token to the invitee
// is out of band.
func (s *Service) Create(ctx context.Context, bagID id.BagID, requesterID id.UserID, inviteeEmail string, ttl time.Duration) (*models.Invitation, error) {
	ctx, span := s.tracer.Start(ctx, "invitation.Create",
		trace.WithAttributes(attribute.String("bag_id", bagID.String())))
	defer span.End()

	if _, err := s.access.RequireRole(ctx, bagID, requesterID, access.RoleOwner); err != nil {
		return nil, err
	}

	if inviteeEmail != "" {
		inviteeEmail = email.Normalize(inviteeEmail)
		if !email.Valid(inviteeEmail) {
			return nil, dErrors.New(dErrors.CodeValidation, "invalid invitee email")
		}
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	token, err := secrets.GenerateToken()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate invitation token")
	}

	now := requestcontext.Now(ctx)
	invitation := &models.Invitation{
		ID:        id.NewInvitationID(),
		BagID:     bagID,
		Token:     token,
		Email:     inviteeEmail,
		InvitedBy: requesterID,
		Status:    models.StatusPending,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := s.store.Create(ctx, invitation); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "invitation token collision")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist invitation")
	}

	s.emitAudit(ctx, audit.ActionInvitationCreated, invitation, requesterID)
	s.metrics.incrementCreated()
	s.logger.InfoContext(ctx, "invitation created",
		"invitation_id", invitation.ID.String(),
		"bag_id", bagID.String(),
		"expires_at", invitation.ExpiresAt,
	)
	return invitation, nil
}

// Validate previews the invitation behind a token without consuming it. The
// only side effect is lazy expiry: an overdue Pending invitation is moved to
// Expired before the error is returned.
func (s *Service) Validate(ctx context.Context, token string) (*models.Invitation, error) {
	ctx, span := s.tracer.Start(ctx, "invitation.Validate")
	defer span.End()

	invitation, err := s.lookupLive(ctx, token)
	if err != nil {
		return nil, err
	}
	return invitation, nil
}

// Accept consumes the invitation and grants its Member role to userID.
// Exactly one concurrent acceptance wins; losers observe AlreadyAccepted (or
// Expired when the deadline passed first). An owner accepting their own bag's
// invitation consumes the token without changing their role.
func (s *Service) Accept(ctx context.Context, token string, userID id.UserID) (*models.Invitation, error) {
	ctx, span := s.tracer.Start(ctx, "invitation.Accept",
		trace.WithAttributes(attribute.String("user_id", userID.String())))
	defer span.End()

	invitation, err := s.lookupLive(ctx, token)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	accepted, err := s.store.Transition(ctx, invitation.ID, models.StatusAccepted, userID, now)
	if err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) {
			// Lost the race. Re-read to report what actually happened.
			return nil, s.terminalError(ctx, token)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to accept invitation")
	}

	// The grant is idempotent: a user who already holds a role on the bag
	// (the owner accepting their own invitation, or a re-invited member)
	// keeps it, and the token is still consumed.
	if _, err := s.access.Grant(ctx, accepted.BagID, userID, access.RoleMember); err != nil {
		if !dErrors.HasCode(err, dErrors.CodeConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to grant member role")
		}
	}

	s.sink.Broadcast(ctx, accepted.BagID, notify.Event{
		Type:       notify.EventMemberJoined,
		BagID:      accepted.BagID,
		ActorID:    userID,
		OccurredAt: now,
	})
	s.emitAudit(ctx, audit.ActionInvitationAccepted, accepted, userID)
	s.emitAudit(ctx, audit.ActionMemberGranted, accepted, userID)
	s.metrics.incrementAccepted()
	s.logger.InfoContext(ctx, "invitation accepted",
		"invitation_id", accepted.ID.String(),
		"bag_id", accepted.BagID.String(),
		"user_id", userID.String(),
	)
	return accepted, nil
}

// List returns all invitations for the bag, newest first, every status
// included. Only an owner may list.
func (s *Service) List(ctx context.Context, bagID id.BagID, requesterID id.UserID) ([]*models.Invitation, error) {
	ctx, span := s.tracer.Start(ctx, "invitation.List",
		trace.WithAttributes(attribute.String("bag_id", bagID.String())))
	defer span.End()

	if _, err := s.access.RequireRole(ctx, bagID, requesterID, access.RoleOwner); err != nil {
		return nil, err
	}
	invitations, err := s.store.ListByBag(ctx, bagID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list invitations")
	}
	return invitations, nil
}

// lookupLive finds the invitation behind a token and enforces lazy expiry.
// It returns the invitation only while it is Pending and before its deadline.
func (s *Service) lookupLive(ctx context.Context, token string) (*models.Invitation, error) {
	invitation, err := s.store.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "invitation not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up invitation")
	}

	switch invitation.Status {
	case models.StatusAccepted:
		return nil, dErrors.New(dErrors.CodeAlreadyAccepted, "invitation has already been accepted")
	case models.StatusExpired:
		return nil, dErrors.New(dErrors.CodeExpired, "invitation has expired")
	}

	now := requestcontext.Now(ctx)
	if invitation.DueToExpire(now) {
		if _, err := s.store.Transition(ctx, invitation.ID, models.StatusExpired, id.UserID{}, now); err != nil {
			if errors.Is(err, sentinel.ErrInvalidState) {
				// Another caller moved it to a terminal state first.
				return nil, s.terminalError(ctx, token)
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to expire invitation")
		}
		s.emitAudit(ctx, audit.ActionInvitationExpired, invitation, id.UserID{})
		s.metrics.incrementExpired()
		s.logger.InfoContext(ctx, "invitation expired",
			"invitation_id", invitation.ID.String(),
			"bag_id", invitation.BagID.String(),
		)
		return nil, dErrors.New(dErrors.CodeExpired, "invitation has expired")
	}

	return invitation, nil
}

// terminalError re-reads a token known to be terminal and maps its status.
func (s *Service) terminalError(ctx context.Context, token string) error {
	invitation, err := s.store.FindByToken(ctx, token)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to re-read invitation")
	}
	if invitation.Status == models.StatusExpired {
		return dErrors.New(dErrors.CodeExpired, "invitation has expired")
	}
	return dErrors.New(dErrors.CodeAlreadyAccepted, "invitation has already been accepted")
}

func (s *Service) emitAudit(ctx context.Context, action audit.Action, invitation *models.Invitation, actorID id.UserID) {
	err := s.auditor.Emit(ctx, audit.Event{
		Action:    action,
		BagID:     invitation.BagID,
		ActorID:   actorID,
		Subject:   invitation.ID.String(),
		RequestID: requestcontext.RequestID(ctx),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to record audit event",
			"action", string(action),
			"error", err.Error(),
		)
	}
}

package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"bagofholding/internal/invitation/models"
	id "bagofholding/pkg/domain"
	"bagofholding/pkg/platform/sentinel"
)

// InMemoryStore stores invitations in memory for tests/dev. The single mutex
// makes Transition atomic, which the acceptance path depends on.
type InMemoryStore struct {
	mu      sync.Mutex
	byID    map[id.InvitationID]*models.Invitation
	byToken map[string]id.InvitationID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[id.InvitationID]*models.Invitation),
		byToken: make(map[string]id.InvitationID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, invitation *models.Invitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byToken[invitation.Token]; ok {
		return fmt.Errorf("token already exists: %w", sentinel.ErrConflict)
	}
	copied := *invitation
	s.byID[invitation.ID] = &copied
	s.byToken[invitation.Token] = invitation.ID
	return nil
}

func (s *InMemoryStore) FindByToken(_ context.Context, token string) (*models.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	invitationID, ok := s.byToken[token]
	if !ok {
		return nil, fmt.Errorf("invitation not found: %w", sentinel.ErrNotFound)
	}
	copied := *s.byID[invitationID]
	return &copied, nil
}

func (s *InMemoryStore) Transition(_ context.Context, invitationID id.InvitationID, to models.Status, acceptedBy id.UserID, now time.Time) (*models.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	invitation, ok := s.byID[invitationID]
	if !ok {
		return nil, fmt.Errorf("invitation not found: %w", sentinel.ErrNotFound)
	}
	if invitation.Status != models.StatusPending {
		return nil, fmt.Errorf("invitation is %s: %w", invitation.Status, sentinel.ErrInvalidState)
	}

	invitation.Status = to
	if to == models.StatusAccepted {
		by := acceptedBy
		at := now
		invitation.AcceptedBy = &by
		invitation.AcceptedAt = &at
	}

	copied := *invitation
	return &copied, nil
}

func (s *InMemoryStore) ListByBag(_ context.Context, bagID id.BagID) ([]*models.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.Invitation
	for _, invitation := range s.byID {
		if invitation.BagID == bagID {
			copied := *invitation
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

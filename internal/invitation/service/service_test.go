package service

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bagofholding/internal/access"
	"bagofholding/internal/audit"
	"bagofholding/internal/invitation/models"
	"bagofholding/internal/invitation/store"
	"bagofholding/internal/notify"
	id "bagofholding/pkg/domain"
	dErrors "bagofholding/pkg/domain-errors"
	"bagofholding/pkg/platform/sentinel"
	"bagofholding/pkg/requestcontext"
)

type fixture struct {
	svc        *Service
	store      *store.InMemoryStore
	accessSvc  *access.Service
	sink       *notify.RecordingSink
	auditStore *audit.InMemoryStore

	bagID   id.BagID
	ownerID id.UserID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	invitations := store.NewInMemoryStore()
	accessSvc := access.NewService(access.NewInMemoryStore(), logger)
	sink := notify.NewRecordingSink()
	auditStore := audit.NewInMemoryStore()

	f := &fixture{
		svc:        New(invitations, accessSvc, sink, audit.NewPublisher(auditStore), nil, logger, 72*time.Hour),
		store:      invitations,
		accessSvc:  accessSvc,
		sink:       sink,
		auditStore: auditStore,
		bagID:      id.NewBagID(),
		ownerID:    id.NewUserID(),
	}
	_, err := accessSvc.Grant(context.Background(), f.bagID, f.ownerID, access.RoleOwner)
	require.NoError(t, err)
	return f
}

func TestService_Create(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	invitation, err := f.svc.Create(ctx, f.bagID, f.ownerID, "", 0)
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, invitation.Status)
	assert.Equal(t, now.Add(72*time.Hour), invitation.ExpiresAt, "default TTL applies when none given")
	assert.Len(t, invitation.Token, 43)
	assert.Empty(t, f.sink.Events(), "creation sends no notification")

	events, err := f.auditStore.ListByBag(ctx, f.bagID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionInvitationCreated, events[0].Action)
}

func TestService_CreateTokensAreUnique(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for range 20 {
		invitation, err := f.svc.Create(ctx, f.bagID, f.ownerID, "", time.Hour)
		require.NoError(t, err)
		require.False(t, seen[invitation.Token])
		seen[invitation.Token] = true
	}
}

// conflictStore forces the duplicate-token path that random generation makes
// unreachable in practice.
type conflictStore struct {
	store.Store
}

func (conflictStore) Create(context.Context, *models.Invitation) error {
	return sentinel.ErrConflict
}

func TestService_CreateTokenCollisionIsConflict(t *testing.T) {
	f := newFixture(t)
	svc := New(conflictStore{f.store}, f.accessSvc, f.sink,
		audit.NewPublisher(f.auditStore), nil, slog.New(slog.DiscardHandler), 72*time.Hour)

	_, err := svc.Create(context.Background(), f.bagID, f.ownerID, "", time.Hour)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestService_CreateRequiresOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := id.NewUserID()
	_, err := f.accessSvc.Grant(ctx, f.bagID, member, access.RoleMember)
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, f.bagID, member, "", 0)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))

	_, err = f.svc.Create(ctx, f.bagID, id.NewUserID(), "", 0)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
}

func TestService_CreateRejectsBadEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.bagID, f.ownerID, "not-an-email", 0)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestService_ValidateIsSideEffectFreeOnLiveTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.bagID, f.ownerID, "", time.Hour)
	require.NoError(t, err)

	for range 3 {
		previewed, err := f.svc.Validate(ctx, created.Token)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, previewed.Status)
	}

	ok, err := f.accessSvc.HasAccess(ctx, f.bagID, id.NewUserID())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, f.sink.Events())
}

func TestService_ValidateUnknownToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Validate(context.Background(), "not-a-real-token")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestService_ExpiryBoundaryIsInclusive(t *testing.T) {
	f := newFixture(t)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), created)

	invitation, err := f.svc.Create(ctx, f.bagID, f.ownerID, "", time.Hour)
	require.NoError(t, err)
	deadline := invitation.ExpiresAt

	justBefore := requestcontext.WithTime(context.Background(), deadline.Add(-time.Nanosecond))
	_, err = f.svc.Validate(justBefore, invitation.Token)
	require.NoError(t, err, "still live just before the deadline")

	atDeadline := requestcontext.WithTime(context.Background(), deadline)
	_, err = f.svc.Validate(atDeadline, invitation.Token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeExpired), "the deadline itself is expired")
}

func TestService_LazyExpiryPersistsAndIsTerminal(t *testing.T) {
	f := newFixture(t)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), created)

	invitation, err := f.svc.Create(ctx, f.bagID, f.ownerID, "", time.Hour)
	require.NoError(t, err)

	late := requestcontext.WithTime(context.Background(), created.Add(2*time.Hour))
	_, err = f.svc.Validate(late, invitation.Token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeExpired))

	// Expiry was written back: even a read at an earlier clock sees Expired.
	early := requestcontext.WithTime(context.Background(), created)
	_, err = f.svc.Validate(early, invitation.Token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeExpired))

	_, err = f.svc.Accept(late, invitation.Token, id.NewUserID())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeExpired), "expired tokens can never be accepted")
}

func TestService_Accept(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	invitee := id.NewUserID()

	created, err := f.svc.Create(ctx, f.bagID, f.ownerID, "", time.Hour)
	require.NoError(t, err)

	accepted, err := f.svc.Accept(ctx, created.Token, invitee)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, accepted.Status)
	require.NotNil(t, accepted.AcceptedBy)
	assert.Equal(t, invitee, *accepted.AcceptedBy)

	grant, err := f.accessSvc.RequireRole(ctx, f.bagID, invitee, access.RoleMember)
	require.NoError(t, err)
	assert.Equal(t, access.RoleMember, grant.Role)

	events := f.sink.EventsFor(f.bagID)
	require.Len(t, events, 1)
	assert.Equal(t, notify.EventMemberJoined, events[0].Type)
	assert.Equal(t, invitee, events[0].ActorID)
}

func TestService_AcceptTwiceIsAlreadyAccepted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.bagID, f.ownerID, "", time.Hour)
	require.NoError(t, err)

	_, err = f.svc.Accept(ctx, created.Token, id.NewUserID())
	require.NoError(t, err)

	_, err = f.svc.Accept(ctx, created.Token, id.NewUserID())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyAccepted))
}

func TestService_AcceptExactlyOnceUnderContention(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.bagID, f.ownerID, "", time.Hour)
	require.NoError(t, err)

	const contenders = 24
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		wins   int
		losses int
	)
	start := make(chan struct{})
	for range contenders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.svc.Accept(ctx, created.Token, id.NewUserID())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case dErrors.HasCode(err, dErrors.CodeAlreadyAccepted):
				losses++
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, wins, "exactly one acceptance wins")
	assert.Equal(t, contenders-1, losses, "losers observe AlreadyAccepted")

	grants, err := f.accessSvc.Members(ctx, f.bagID)
	require.NoError(t, err)
	assert.Len(t, grants, 2, "owner plus the single winner")
}

func TestService_OwnerSelfAcceptKeepsOwnerRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.bagID, f.ownerID, "", time.Hour)
	require.NoError(t, err)

	accepted, err := f.svc.Accept(ctx, created.Token, f.ownerID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, accepted.Status)

	grant, err := f.accessSvc.RequireRole(ctx, f.bagID, f.ownerID, access.RoleOwner)
	require.NoError(t, err)
	assert.Equal(t, access.RoleOwner, grant.Role, "self-accept never downgrades the owner")

	_, err = f.svc.Accept(ctx, created.Token, id.NewUserID())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyAccepted), "token is consumed all the same")
}

func TestService_List(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := range 3 {
		ctx := requestcontext.WithTime(context.Background(), base.Add(time.Duration(i)*time.Minute))
		_, err := f.svc.Create(ctx, f.bagID, f.ownerID, "", time.Hour)
		require.NoError(t, err)
	}

	ctx := context.Background()
	invitations, err := f.svc.List(ctx, f.bagID, f.ownerID)
	require.NoError(t, err)
	require.Len(t, invitations, 3)
	assert.True(t, invitations[0].CreatedAt.After(invitations[1].CreatedAt), "newest first")

	_, err = f.svc.List(ctx, f.bagID, id.NewUserID())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
}

func TestService_AuditTrailOnAccept(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	invitee := id.NewUserID()

	created, err := f.svc.Create(ctx, f.bagID, f.ownerID, "", time.Hour)
	require.NoError(t, err)
	_, err = f.svc.Accept(ctx, created.Token, invitee)
	require.NoError(t, err)

	events, err := f.auditStore.ListByBag(ctx, f.bagID)
	require.NoError(t, err)

	actions := make([]audit.Action, len(events))
	for i, event := range events {
		actions[i] = event.Action
	}
	assert.Contains(t, actions, audit.ActionInvitationCreated)
	assert.Contains(t, actions, audit.ActionInvitationAccepted)
	assert.Contains(t, actions, audit.ActionMemberGranted)
}

package bag

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bagofholding/internal/access"
	"bagofholding/internal/audit"
	id "bagofholding/pkg/domain"
	dErrors "bagofholding/pkg/domain-errors"
)

type bagFixture struct {
	svc        *Service
	accessSvc  *access.Service
	auditStore *audit.InMemoryStore
}

func newBagFixture() *bagFixture {
	logger := slog.New(slog.DiscardHandler)
	accessSvc := access.NewService(access.NewInMemoryStore(), logger)
	auditStore := audit.NewInMemoryStore()
	svc := NewService(NewInMemoryStore(), accessSvc, audit.NewPublisher(auditStore), nil, logger)
	return &bagFixture{svc: svc, accessSvc: accessSvc, auditStore: auditStore}
}

func TestService_CreateGrantsOwner(t *testing.T) {
	f := newBagFixture()
	ctx := context.Background()
	creator := id.NewUserID()

	created, err := f.svc.Create(ctx, "Camping Gear", "shared trip kit", creator)
	require.NoError(t, err)
	assert.Equal(t, "Camping Gear", created.Name)
	assert.Equal(t, creator, created.OwnerID)

	grant, err := f.accessSvc.RequireRole(ctx, created.ID, creator, access.RoleOwner)
	require.NoError(t, err)
	assert.Equal(t, access.RoleOwner, grant.Role)
}

func TestService_CreateRecordsAudit(t *testing.T) {
	f := newBagFixture()
	ctx := context.Background()
	creator := id.NewUserID()

	created, err := f.svc.Create(ctx, "Pantry", "", creator)
	require.NoError(t, err)

	events, err := f.auditStore.ListByBag(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionBagCreated, events[0].Action)
	assert.Equal(t, creator, events[0].ActorID)
}

func TestService_CreateValidation(t *testing.T) {
	f := newBagFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, "   ", "", id.NewUserID())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestService_GetRequiresAccess(t *testing.T) {
	f := newBagFixture()
	ctx := context.Background()
	creator, stranger := id.NewUserID(), id.NewUserID()

	created, err := f.svc.Create(ctx, "Workshop", "", creator)
	require.NoError(t, err)

	found, err := f.svc.Get(ctx, created.ID, creator)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = f.svc.Get(ctx, created.ID, stranger)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
}

// Name backs the unauthenticated invitation preview, so it answers without a
// grant and exposes nothing but the display name.
func TestService_NameNeedsNoGrant(t *testing.T) {
	f := newBagFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, "Workshop", "", id.NewUserID())
	require.NoError(t, err)

	name, err := f.svc.Name(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Workshop", name)

	_, err = f.svc.Name(ctx, id.NewBagID())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestService_ListForUser(t *testing.T) {
	f := newBagFixture()
	ctx := context.Background()
	owner := id.NewUserID()

	_, err := f.svc.Create(ctx, "First", "", owner)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, "Second", "", owner)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, "Other", "", id.NewUserID())
	require.NoError(t, err)

	bags, err := f.svc.ListForUser(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, bags, 2)
}

func TestService_DeleteRequiresOwner(t *testing.T) {
	f := newBagFixture()
	ctx := context.Background()
	owner, member := id.NewUserID(), id.NewUserID()

	created, err := f.svc.Create(ctx, "Doomed", "", owner)
	require.NoError(t, err)
	_, err = f.accessSvc.Grant(ctx, created.ID, member, access.RoleMember)
	require.NoError(t, err)

	err = f.svc.Delete(ctx, created.ID, member)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))

	require.NoError(t, f.svc.Delete(ctx, created.ID, owner))
}

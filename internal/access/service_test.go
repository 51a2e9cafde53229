package access

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "bagofholding/pkg/domain"
	dErrors "bagofholding/pkg/domain-errors"
)

func newTestService() *Service {
	return NewService(NewInMemoryStore(), slog.New(slog.DiscardHandler))
}

func TestService_GrantAndHasAccess(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	bagID, userID := id.NewBagID(), id.NewUserID()

	grant, err := svc.Grant(ctx, bagID, userID, RoleMember)
	require.NoError(t, err)
	assert.Equal(t, RoleMember, grant.Role)
	assert.False(t, grant.CreatedAt.IsZero())

	ok, err := svc.HasAccess(ctx, bagID, userID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.HasAccess(ctx, bagID, id.NewUserID())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_GrantSameRoleIsIdempotent(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	bagID, userID := id.NewBagID(), id.NewUserID()

	first, err := svc.Grant(ctx, bagID, userID, RoleMember)
	require.NoError(t, err)

	second, err := svc.Grant(ctx, bagID, userID, RoleMember)
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
}

func TestService_GrantDifferentRoleConflicts(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	bagID, userID := id.NewBagID(), id.NewUserID()

	_, err := svc.Grant(ctx, bagID, userID, RoleMember)
	require.NoError(t, err)

	_, err = svc.Grant(ctx, bagID, userID, RoleOwner)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestService_GrantRejectsUnknownRole(t *testing.T) {
	svc := newTestService()

	_, err := svc.Grant(context.Background(), id.NewBagID(), id.NewUserID(), Role(99))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestService_RequireRole(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	bagID := id.NewBagID()
	owner, member, stranger := id.NewUserID(), id.NewUserID(), id.NewUserID()

	_, err := svc.Grant(ctx, bagID, owner, RoleOwner)
	require.NoError(t, err)
	_, err = svc.Grant(ctx, bagID, member, RoleMember)
	require.NoError(t, err)

	t.Run("owner meets member floor", func(t *testing.T) {
		grant, err := svc.RequireRole(ctx, bagID, owner, RoleMember)
		require.NoError(t, err)
		assert.Equal(t, RoleOwner, grant.Role)
	})

	t.Run("member below owner floor", func(t *testing.T) {
		_, err := svc.RequireRole(ctx, bagID, member, RoleOwner)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("stranger is forbidden, not not-found", func(t *testing.T) {
		_, err := svc.RequireRole(ctx, bagID, stranger, RoleMember)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func TestService_Revoke(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	bagID := id.NewBagID()
	owner, member := id.NewUserID(), id.NewUserID()

	_, err := svc.Grant(ctx, bagID, owner, RoleOwner)
	require.NoError(t, err)
	_, err = svc.Grant(ctx, bagID, member, RoleMember)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, bagID, member))

	ok, err := svc.HasAccess(ctx, bagID, member)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_RevokeLastOwnerRefused(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	bagID := id.NewBagID()
	owner := id.NewUserID()

	_, err := svc.Grant(ctx, bagID, owner, RoleOwner)
	require.NoError(t, err)

	err = svc.Revoke(ctx, bagID, owner)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	ok, err := svc.HasAccess(ctx, bagID, owner)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestService_RevokeMissingGrant(t *testing.T) {
	svc := newTestService()

	err := svc.Revoke(context.Background(), id.NewBagID(), id.NewUserID())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestRole_Ordering(t *testing.T) {
	assert.True(t, RoleOwner.AtLeast(RoleMember))
	assert.True(t, RoleMember.AtLeast(RoleMember))
	assert.False(t, RoleMember.AtLeast(RoleOwner))
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("owner")
	require.NoError(t, err)
	assert.Equal(t, RoleOwner, role)

	_, err = ParseRole("admin")
	require.Error(t, err)
}

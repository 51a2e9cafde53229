package access

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "bagofholding/pkg/domain"
	"bagofholding/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) newGrant(role Role) *Grant {
	return &Grant{
		BagID:     id.NewBagID(),
		UserID:    id.NewUserID(),
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
}

func (s *InMemoryStoreSuite) TestCreateAndFind() {
	grant := s.newGrant(RoleOwner)
	s.Require().NoError(s.store.Create(s.ctx, grant))

	found, err := s.store.Find(s.ctx, grant.BagID, grant.UserID)
	s.Require().NoError(err)
	s.Equal(RoleOwner, found.Role)
}

func (s *InMemoryStoreSuite) TestCreateDuplicateConflicts() {
	grant := s.newGrant(RoleMember)
	s.Require().NoError(s.store.Create(s.ctx, grant))

	err := s.store.Create(s.ctx, grant)
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

func (s *InMemoryStoreSuite) TestFindMissing() {
	_, err := s.store.Find(s.ctx, id.NewBagID(), id.NewUserID())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestFindReturnsCopy() {
	grant := s.newGrant(RoleMember)
	s.Require().NoError(s.store.Create(s.ctx, grant))

	found, err := s.store.Find(s.ctx, grant.BagID, grant.UserID)
	s.Require().NoError(err)
	found.Role = RoleOwner

	again, err := s.store.Find(s.ctx, grant.BagID, grant.UserID)
	s.Require().NoError(err)
	s.Equal(RoleMember, again.Role)
}

func (s *InMemoryStoreSuite) TestListByBag() {
	bagID := id.NewBagID()
	for range 3 {
		grant := s.newGrant(RoleMember)
		grant.BagID = bagID
		s.Require().NoError(s.store.Create(s.ctx, grant))
	}
	s.Require().NoError(s.store.Create(s.ctx, s.newGrant(RoleMember)))

	grants, err := s.store.ListByBag(s.ctx, bagID)
	s.Require().NoError(err)
	s.Len(grants, 3)
}

func (s *InMemoryStoreSuite) TestListByUser() {
	userID := id.NewUserID()
	for range 2 {
		grant := s.newGrant(RoleOwner)
		grant.UserID = userID
		s.Require().NoError(s.store.Create(s.ctx, grant))
	}

	grants, err := s.store.ListByUser(s.ctx, userID)
	s.Require().NoError(err)
	s.Len(grants, 2)
}

func (s *InMemoryStoreSuite) TestDelete() {
	grant := s.newGrant(RoleMember)
	s.Require().NoError(s.store.Create(s.ctx, grant))
	s.Require().NoError(s.store.Delete(s.ctx, grant.BagID, grant.UserID))

	_, err := s.store.Find(s.ctx, grant.BagID, grant.UserID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestDeleteMissing() {
	err := s.store.Delete(s.ctx, id.NewBagID(), id.NewUserID())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"unibuild/internal/session"
	"unibuild/pkg/platform/sentinel"
)

// contractSuite is shared by every backend so they stay interchangeable.
type contractSuite struct {
	suite.Suite
	storage session.Storage
	ns      string
}

func (s *contractSuite) SetupTest() {
	s.ns = uuid.NewString()
}

func (s *contractSuite) TestGetMissingKey() {
	_, err := s.storage.Get(context.Background(), s.ns, "token")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *contractSuite) TestSetManyThenGet() {
	ctx := context.Background()
	s.Require().NoError(s.storage.SetMany(ctx, s.ns, map[string]string{"token": "t1", "user": `{"id":"u1"}`}, time.Hour))

	token, err := s.storage.Get(ctx, s.ns, "token")
	s.Require().NoError(err)
	s.Equal("t1", token)

	user, err := s.storage.Get(ctx, s.ns, "user")
	s.Require().NoError(err)
	s.Equal(`{"id":"u1"}`, user)
}

func (s *contractSuite) TestSetManyOverwrites() {
	ctx := context.Background()
	s.Require().NoError(s.storage.SetMany(ctx, s.ns, map[string]string{"token": "t1"}, time.Hour))
	s.Require().NoError(s.storage.SetMany(ctx, s.ns, map[string]string{"token": "t2"}, time.Hour))

	token, err := s.storage.Get(ctx, s.ns, "token")
	s.Require().NoError(err)
	s.Equal("t2", token)
}

func (s *contractSuite) TestDelete() {
	ctx := context.Background()
	s.Require().NoError(s.storage.SetMany(ctx, s.ns, map[string]string{"token": "t1", "user": "u", "other": "x"}, time.Hour))
	s.Require().NoError(s.storage.Delete(ctx, s.ns, "token", "user"))

	_, err := s.storage.Get(ctx, s.ns, "token")
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.storage.Get(ctx, s.ns, "user")
	s.ErrorIs(err, sentinel.ErrNotFound)

	other, err := s.storage.Get(ctx, s.ns, "other")
	s.Require().NoError(err)
	s.Equal("x", other)
}

func (s *contractSuite) TestDeleteMissingNamespace() {
	s.NoError(s.storage.Delete(context.Background(), s.ns, "token"))
}

func (s *contractSuite) TestNamespacesAreIsolated() {
	ctx := context.Background()
	other := uuid.NewString()
	s.Require().NoError(s.storage.SetMany(ctx, s.ns, map[string]string{"token": "mine"}, time.Hour))

	_, err := s.storage.Get(ctx, other, "token")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

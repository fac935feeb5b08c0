//go:build integration

package ban_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"scoregate/internal/ban"
	dErrors "scoregate/pkg/domain-errors"
	"scoregate/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *ban.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = ban.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "bans"))
}

func (s *PostgresStoreSuite) TestUpsertAndGet() {
	ctx := context.Background()
	record := ban.Record{
		AccountID: "acct-1",
		Reason:    "replayed token",
		BannedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}

	s.Require().NoError(s.store.Upsert(ctx, record))

	got, err := s.store.Get(ctx, "acct-1")
	s.Require().NoError(err)
	s.Equal(record.AccountID, got.AccountID)
	s.Equal(record.Reason, got.Reason)
	s.WithinDuration(record.BannedAt, got.BannedAt, time.Millisecond)
}

func (s *PostgresStoreSuite) TestUpsertKeepsFirstRecord() {
	ctx := context.Background()
	first := ban.Record{AccountID: "acct-1", Reason: "first", BannedAt: time.Now().UTC()}
	s.Require().NoError(s.store.Upsert(ctx, first))
	s.Require().NoError(s.store.Upsert(ctx, ban.Record{
		AccountID: "acct-1", Reason: "second", BannedAt: time.Now().UTC().Add(time.Hour),
	}))

	got, err := s.store.Get(ctx, "acct-1")
	s.Require().NoError(err)
	s.Equal("first", got.Reason)
}

func (s *PostgresStoreSuite) TestGetMissing() {
	_, err := s.store.Get(context.Background(), "ghost")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *PostgresStoreSuite) TestDelete() {
	ctx := context.Background()
	s.Require().NoError(s.store.Upsert(ctx, ban.Record{
		AccountID: "acct-1", Reason: "bad token", BannedAt: time.Now().UTC(),
	}))

	s.Require().NoError(s.store.Delete(ctx, "acct-1"))
	_, err := s.store.Get(ctx, "acct-1")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	s.Require().NoError(s.store.Delete(ctx, "acct-1"))
}

package ban

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoregate/internal/submission/models"
	dErrors "scoregate/pkg/domain-errors"
	"scoregate/pkg/requestcontext"
)

type fakeDeleter struct {
	mu      sync.Mutex
	deleted []string // "difficulty/account"
	err     error
}

func (f *fakeDeleter) DeleteEntry(_ context.Context, difficulty models.Difficulty, accountID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, string(difficulty)+"/"+accountID)
	return f.err
}

func TestBanRecordsAndWipesAllBrackets(t *testing.T) {
	store := NewMemoryStore()
	deleter := &fakeDeleter{}
	svc, err := NewService(store, deleter)
	require.NoError(t, err)

	now := time.Unix(1_700_000_000, 0)
	ctx := requestcontext.WithNow(context.Background(), now)

	require.NoError(t, svc.Ban(ctx, "acct-1", "replayed token"))

	record, err := store.Get(ctx, "acct-1")
	require.NoError(t, err)
	assert.Equal(t, "replayed token", record.Reason)
	assert.Equal(t, now, record.BannedAt)

	assert.ElementsMatch(t, []string{
		"apprentice/acct-1", "warmage/acct-1", "nightmare/acct-1",
	}, deleter.deleted)
}

func TestBanIsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	svc, err := NewService(store, &fakeDeleter{})
	require.NoError(t, err)

	first := time.Unix(1_700_000_000, 0)
	require.NoError(t, svc.Ban(requestcontext.WithNow(context.Background(), first), "acct-1", "bad signature"))

	later := first.Add(time.Hour)
	require.NoError(t, svc.Ban(requestcontext.WithNow(context.Background(), later), "acct-1", "replayed token"))

	record, err := store.Get(context.Background(), "acct-1")
	require.NoError(t, err)
	assert.Equal(t, "bad signature", record.Reason, "first record wins")
	assert.Equal(t, first, record.BannedAt)
}

func TestBanSurvivesWipeFailure(t *testing.T) {
	store := NewMemoryStore()
	deleter := &fakeDeleter{err: errors.New("leaderboard down")}
	svc, err := NewService(store, deleter)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, svc.Ban(ctx, "acct-1", "identity mismatch"),
		"the ban record is the contract; the wipe is best effort")
	assert.True(t, svc.IsBanned(ctx, "acct-1"))
}

func TestBanWithoutLeaderboard(t *testing.T) {
	svc, err := NewService(NewMemoryStore(), nil)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, svc.Ban(ctx, "acct-1", "structural failure"))
	assert.True(t, svc.IsBanned(ctx, "acct-1"))
}

func TestUnban(t *testing.T) {
	svc, err := NewService(NewMemoryStore(), nil)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, svc.Ban(ctx, "acct-1", "bad token"))
	require.True(t, svc.IsBanned(ctx, "acct-1"))

	require.NoError(t, svc.Unban(ctx, "acct-1"))
	assert.False(t, svc.IsBanned(ctx, "acct-1"))

	require.NoError(t, svc.Unban(ctx, "acct-1"), "lifting an absent ban succeeds")
}

type failingStore struct{ Store }

func (failingStore) Get(context.Context, string) (Record, error) {
	return Record{}, errors.New("store down")
}

func TestIsBannedFailsOpenOnStoreOutage(t *testing.T) {
	svc, err := NewService(failingStore{NewMemoryStore()}, nil)
	require.NoError(t, err)

	assert.False(t, svc.IsBanned(context.Background(), "acct-1"))
}

func TestLookupNotFound(t *testing.T) {
	svc, err := NewService(NewMemoryStore(), nil)
	require.NoError(t, err)

	_, err = svc.Lookup(context.Background(), "ghost")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

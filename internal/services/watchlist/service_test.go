package watchlist

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stockpulse/internal/common"
	"github.com/bobmcallan/stockpulse/internal/interfaces"
)

type fakeStore struct {
	sets map[string]map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{sets: make(map[string]map[string]bool)}
}

func (f *fakeStore) Available() bool { return true }

func (f *fakeStore) Get(context.Context, string) ([]byte, error) {
	return nil, interfaces.ErrNotFound
}
func (f *fakeStore) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (f *fakeStore) Delete(context.Context, string) error                     { return nil }
func (f *fakeStore) HGet(context.Context, string, string) ([]byte, error) {
	return nil, interfaces.ErrNotFound
}
func (f *fakeStore) HSet(context.Context, string, string, []byte) error { return nil }
func (f *fakeStore) HDel(context.Context, string, ...string) error      { return nil }
func (f *fakeStore) HGetAll(context.Context, string) (map[string][]byte, error) {
	return nil, nil
}

func (f *fakeStore) SAdd(_ context.Context, key string, members ...string) error {
	if f.sets[key] == nil {
		f.sets[key] = make(map[string]bool)
	}
	for _, m := range members {
		f.sets[key][m] = true
	}
	return nil
}

func (f *fakeStore) SRem(_ context.Context, key string, members ...string) error {
	for _, m := range members {
		delete(f.sets[key], m)
	}
	return nil
}

func (f *fakeStore) SMembers(_ context.Context, key string) ([]string, error) {
	var out []string
	for m := range f.sets[key] {
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeStore) SIsMember(_ context.Context, key, member string) (bool, error) {
	return f.sets[key][member], nil
}

func (f *fakeStore) Close() error { return nil }

var _ interfaces.KeyedStore = (*fakeStore)(nil)

func TestWatchlist_AddListRemove(t *testing.T) {
	svc := NewService(newFakeStore(), common.NewSilentLogger())
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, "user-1", "nvda"))
	require.NoError(t, svc.Add(ctx, "user-1", " AAPL "))
	require.NoError(t, svc.Add(ctx, "user-1", "AAPL"), "duplicate add is a no-op")

	symbols, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "NVDA"}, symbols, "normalized and sorted")

	require.NoError(t, svc.Remove(ctx, "user-1", "aapl"))
	require.NoError(t, svc.Remove(ctx, "user-1", "MSFT"), "absent remove is a no-op")

	symbols, err = svc.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"NVDA"}, symbols)
}

func TestWatchlist_RejectsBlankSymbol(t *testing.T) {
	svc := NewService(newFakeStore(), common.NewSilentLogger())

	assert.ErrorIs(t, svc.Add(context.Background(), "user-1", "  "), ErrInvalidSymbol)
	assert.ErrorIs(t, svc.Remove(context.Background(), "user-1", ""), ErrInvalidSymbol)
}

func TestWatchlist_PerIdentityIsolation(t *testing.T) {
	svc := NewService(newFakeStore(), common.NewSilentLogger())
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, "user-1", "AAPL"))
	require.NoError(t, svc.Add(ctx, "user-2", "TSLA"))

	symbols, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL"}, symbols)
}

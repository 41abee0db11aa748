package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stockpulse/internal/common"
	"github.com/bobmcallan/stockpulse/internal/interfaces"
	"github.com/bobmcallan/stockpulse/internal/models"
)

type fakeStore struct {
	hashes map[string]map[string][]byte
	sets   map[string]map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		hashes: make(map[string]map[string][]byte),
		sets:   make(map[string]map[string]bool),
	}
}

func (f *fakeStore) Available() bool { return true }

func (f *fakeStore) Get(context.Context, string) ([]byte, error) {
	return nil, interfaces.ErrNotFound
}
func (f *fakeStore) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (f *fakeStore) Delete(context.Context, string) error                     { return nil }

func (f *fakeStore) HGet(_ context.Context, key, field string) ([]byte, error) {
	b, ok := f.hashes[key][field]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return b, nil
}

func (f *fakeStore) HSet(_ context.Context, key, field string, value []byte) error {
	if f.hashes[key] == nil {
		f.hashes[key] = make(map[string][]byte)
	}
	f.hashes[key][field] = value
	return nil
}

func (f *fakeStore) HDel(_ context.Context, key string, fields ...string) error {
	for _, field := range fields {
		delete(f.hashes[key], field)
	}
	return nil
}

func (f *fakeStore) HGetAll(_ context.Context, key string) (map[string][]byte, error) {
	return f.hashes[key], nil
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

func newTestService() (*Service, *fakeStore) {
	store := newFakeStore()
	return NewService(store, common.NewSilentLogger()), store
}

func TestCheckUsername_Reserved(t *testing.T) {
	svc, _ := newTestService()

	for _, name := range []string{"admin", "ADMIN", "root", "Moderator"} {
		check, err := svc.CheckUsername(context.Background(), name)
		require.NoError(t, err)
		assert.False(t, check.Available, "name %q", name)
		assert.Equal(t, "This username is reserved", check.Reason)
	}
}

func TestCheckUsername_UnderscoreEdges(t *testing.T) {
	svc, _ := newTestService()

	for _, name := range []string{"_abc", "abc_", "_abc_"} {
		check, err := svc.CheckUsername(context.Background(), name)
		require.NoError(t, err)
		assert.False(t, check.Available, "name %q", name)
		assert.Equal(t, "Cannot start or end with underscore", check.Reason)
	}

	// Interior underscores are fine
	check, err := svc.CheckUsername(context.Background(), "ab_cd")
	require.NoError(t, err)
	assert.True(t, check.Available)
}

func TestCheckUsername_Length(t *testing.T) {
	svc, _ := newTestService()

	for _, name := range []string{"ab", "abcdefghijklmnopqrstu"} {
		check, err := svc.CheckUsername(context.Background(), name)
		require.NoError(t, err)
		assert.False(t, check.Available, "name %q", name)
		assert.Equal(t, "Must be 3-20 characters", check.Reason)
	}
}

func TestCheckUsername_Charset(t *testing.T) {
	svc, _ := newTestService()

	for _, name := range []string{"a b c", "abc!", "naïve"} {
		check, err := svc.CheckUsername(context.Background(), name)
		require.NoError(t, err)
		assert.False(t, check.Available, "name %q", name)
		assert.Equal(t, "Only letters, numbers and underscores allowed", check.Reason)
	}
}

func TestCheckUsername_TakenIndex(t *testing.T) {
	svc, store := newTestService()
	require.NoError(t, store.SAdd(context.Background(), "usernames", "taken1"))

	check, err := svc.CheckUsername(context.Background(), "taken1")
	require.NoError(t, err)
	assert.False(t, check.Available)
	assert.Equal(t, "This username is taken", check.Reason)

	// Index is lowercase; lookup is case-insensitive
	check, err = svc.CheckUsername(context.Background(), "Taken1")
	require.NoError(t, err)
	assert.False(t, check.Available)
}

func TestCheckUsername_FreshName(t *testing.T) {
	svc, _ := newTestService()

	check, err := svc.CheckUsername(context.Background(), "abc12")
	require.NoError(t, err)
	assert.True(t, check.Available)
	assert.Empty(t, check.Reason)
}

func TestSaveAndGetUser(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	_, err := svc.GetUser(ctx, "user-1")
	assert.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, svc.SaveUser(ctx, &models.UserRecord{
		UserID:   "user-1",
		Username: "Trader99",
		Points:   42,
	}))

	user, err := svc.GetUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Trader99", user.Username)
	assert.Equal(t, 42, user.Points)

	// Saving maintains both indexes
	assert.True(t, store.sets["usernames"]["trader99"])
	assert.True(t, store.sets["users:registered"]["user-1"])
}

func TestSaveUser_RequiresID(t *testing.T) {
	svc, _ := newTestService()
	assert.Error(t, svc.SaveUser(context.Background(), &models.UserRecord{Username: "noid"}))
}

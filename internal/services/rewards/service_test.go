package rewards

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stockpulse/internal/common"
	"github.com/bobmcallan/stockpulse/internal/interfaces"
	"github.com/bobmcallan/stockpulse/internal/models"
	"github.com/bobmcallan/stockpulse/internal/services/users"
)

type fakeUsers struct {
	records map[string]*models.UserRecord
	saves   int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{records: make(map[string]*models.UserRecord)}
}

func (f *fakeUsers) CheckUsername(context.Context, string) (*models.UsernameCheck, error) {
	return &models.UsernameCheck{Available: true}, nil
}

func (f *fakeUsers) GetUser(_ context.Context, identity string) (*models.UserRecord, error) {
	if u, ok := f.records[identity]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, users.ErrUserNotFound
}

func (f *fakeUsers) SaveUser(_ context.Context, user *models.UserRecord) error {
	f.saves++
	clone := *user
	f.records[user.UserID] = &clone
	return nil
}

var _ interfaces.UserService = (*fakeUsers)(nil)

var claimNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestService(store *fakeUsers) *Service {
	svc := NewService(store, common.NewSilentLogger())
	svc.now = func() time.Time { return claimNow }
	return svc
}

func TestClaimDaily_FirstClaim(t *testing.T) {
	store := newFakeUsers()
	svc := newTestService(store)

	claim, err := svc.ClaimDaily(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 10, claim.Awarded)
	assert.Equal(t, 10, claim.Points)
	assert.Equal(t, 1, claim.Streak)
	assert.Equal(t, "2026-03-10", store.records["user-1"].LastClaimDate)
}

func TestClaimDaily_ConsecutiveDayExtendsStreak(t *testing.T) {
	store := newFakeUsers()
	store.records["user-1"] = &models.UserRecord{
		UserID: "user-1", Points: 50, Streak: 5, LastClaimDate: "2026-03-09",
	}
	svc := newTestService(store)

	claim, err := svc.ClaimDaily(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 6, claim.Streak)
	assert.Equal(t, 60, claim.Points)
}

func TestClaimDaily_GapResetsStreak(t *testing.T) {
	store := newFakeUsers()
	store.records["user-1"] = &models.UserRecord{
		UserID: "user-1", Points: 50, Streak: 5, LastClaimDate: "2026-03-07",
	}
	svc := newTestService(store)

	claim, err := svc.ClaimDaily(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, claim.Streak)
	assert.Equal(t, 60, claim.Points)
}

func TestClaimDaily_SameDayRejectedWithoutStateChange(t *testing.T) {
	store := newFakeUsers()
	store.records["user-1"] = &models.UserRecord{
		UserID: "user-1", Points: 50, Streak: 5, LastClaimDate: "2026-03-10",
	}
	svc := newTestService(store)

	_, err := svc.ClaimDaily(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
	assert.Zero(t, store.saves, "rejected claim must not write")
	assert.Equal(t, 50, store.records["user-1"].Points)
	assert.Equal(t, 5, store.records["user-1"].Streak)
}

package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stockpulse/internal/cache"
	"github.com/bobmcallan/stockpulse/internal/common"
	"github.com/bobmcallan/stockpulse/internal/fetch"
	"github.com/bobmcallan/stockpulse/internal/interfaces"
	"github.com/bobmcallan/stockpulse/internal/models"
)

type fakeStore struct {
	kv map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{kv: make(map[string][]byte)}
}

func (f *fakeStore) Available() bool { return true }

func (f *fakeStore) Get(_ context.Context, key string) ([]byte, error) {
	b, ok := f.kv[key]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return b, nil
}

func (f *fakeStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	f.kv[key] = value
	return nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	delete(f.kv, key)
	return nil
}

func (f *fakeStore) HGet(context.Context, string, string) ([]byte, error) {
	return nil, interfaces.ErrNotFound
}
func (f *fakeStore) HSet(context.Context, string, string, []byte) error { return nil }
func (f *fakeStore) HDel(context.Context, string, ...string) error      { return nil }
func (f *fakeStore) HGetAll(context.Context, string) (map[string][]byte, error) {
	return nil, nil
}
func (f *fakeStore) SAdd(context.Context, string, ...string) error      { return nil }
func (f *fakeStore) SRem(context.Context, string, ...string) error      { return nil }
func (f *fakeStore) SMembers(context.Context, string) ([]string, error) { return nil, nil }
func (f *fakeStore) SIsMember(context.Context, string, string) (bool, error) {
	return false, nil
}
func (f *fakeStore) Close() error { return nil }

var _ interfaces.KeyedStore = (*fakeStore)(nil)

type fakeReddit struct {
	posts       map[string][]models.RedditPost
	failAll     bool
	failSubs    map[string]bool
	searchCalls int
}

func (f *fakeReddit) SearchPosts(_ context.Context, subreddit, _, _ string, _ int) ([]models.RedditPost, error) {
	f.searchCalls++
	if f.failAll || f.failSubs[subreddit] {
		return nil, errors.New("reddit error")
	}
	return f.posts[subreddit], nil
}

func (f *fakeReddit) HotPosts(context.Context, string, int) ([]models.RedditPost, error) {
	return nil, errors.New("not implemented")
}

var _ interfaces.RedditClient = (*fakeReddit)(nil)

func newTestService(store *fakeStore, reddit *fakeReddit) *Service {
	logger := common.NewSilentLogger()
	return NewService(reddit, cache.NewEnvelope(store, logger), fetch.New(logger, fetch.WithBatchDelay(0)), logger)
}

func bullishPosts(n int) []models.RedditPost {
	posts := make([]models.RedditPost, n)
	for i := range posts {
		posts[i] = models.RedditPost{Title: "GME calls to the moon", Score: 100, NumComments: 20}
	}
	return posts
}

func TestGetSentiment_ComputeAndCache(t *testing.T) {
	store := newFakeStore()
	reddit := &fakeReddit{posts: map[string][]models.RedditPost{
		"wallstreetbets": bullishPosts(10),
		"stocks":         bullishPosts(4),
	}}
	svc := newTestService(store, reddit)

	data, meta, err := svc.GetSentiment(context.Background(), "gme", models.SentimentPeriod24h)
	require.NoError(t, err)
	assert.False(t, meta.Cached)
	assert.Equal(t, "GME", data.Symbol)
	assert.Equal(t, 14, data.TotalMentions)
	assert.GreaterOrEqual(t, data.RedditScore, 0)
	assert.LessOrEqual(t, data.RedditScore, 100)

	calls := reddit.searchCalls
	_, meta, err = svc.GetSentiment(context.Background(), "GME", models.SentimentPeriod24h)
	require.NoError(t, err)
	assert.True(t, meta.Cached)
	assert.Equal(t, calls, reddit.searchCalls, "fresh entry served without refetch")
}

func TestGetSentiment_PartialSubredditFailureTolerated(t *testing.T) {
	reddit := &fakeReddit{
		posts:    map[string][]models.RedditPost{"wallstreetbets": bullishPosts(3)},
		failSubs: map[string]bool{"stocks": true, "investing": true, "options": true},
	}
	svc := newTestService(newFakeStore(), reddit)

	data, _, err := svc.GetSentiment(context.Background(), "GME", models.SentimentPeriod7d)
	require.NoError(t, err)
	assert.Equal(t, 3, data.TotalMentions)
}

func TestGetSentiment_AllSubredditsFail(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeReddit{failAll: true})

	_, _, err := svc.GetSentiment(context.Background(), "GME", models.SentimentPeriod24h)
	assert.Error(t, err)
}

func TestGetSentiment_StaleServedWithinWindow(t *testing.T) {
	store := newFakeStore()
	reddit := &fakeReddit{posts: map[string][]models.RedditPost{"wallstreetbets": bullishPosts(5)}}
	svc := newTestService(store, reddit)

	_, _, err := svc.GetSentiment(context.Background(), "GME", models.SentimentPeriod24h)
	require.NoError(t, err)

	reddit.failAll = true
	ageEntry(t, store, sentimentKey("GME", models.SentimentPeriod24h), 3*time.Hour)

	data, meta, err := svc.GetSentiment(context.Background(), "GME", models.SentimentPeriod24h)
	require.NoError(t, err)
	assert.True(t, meta.Stale)
	assert.Equal(t, 5, data.TotalMentions)
}

func TestGetSentiment_StaleBeyondWindowErrors(t *testing.T) {
	store := newFakeStore()
	reddit := &fakeReddit{posts: map[string][]models.RedditPost{"wallstreetbets": bullishPosts(5)}}
	svc := newTestService(store, reddit)

	_, _, err := svc.GetSentiment(context.Background(), "GME", models.SentimentPeriod24h)
	require.NoError(t, err)

	reddit.failAll = true
	ageEntry(t, store, sentimentKey("GME", models.SentimentPeriod24h), 5*time.Hour)

	_, _, err = svc.GetSentiment(context.Background(), "GME", models.SentimentPeriod24h)
	assert.Error(t, err, "entries past the 4h window are not served")
}

func TestGetSentiment_InvalidPeriod(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeReddit{})
	_, _, err := svc.GetSentiment(context.Background(), "GME", "1y")
	assert.Error(t, err)
}

// ageEntry rewrites a stored envelope entry as stored `age` ago.
func ageEntry(t *testing.T, store *fakeStore, key string, age time.Duration) {
	t.Helper()
	raw, ok := store.kv[key]
	require.True(t, ok, "entry %s must exist", key)

	var entry cache.Entry
	require.NoError(t, json.Unmarshal(raw, &entry))
	entry.StoredAtMs = time.Now().Add(-age).UnixMilli()
	updated, err := json.Marshal(entry)
	require.NoError(t, err)
	store.kv[key] = updated
}

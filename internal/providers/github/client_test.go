package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chungquantin/chaseOS/internal/infrastructure/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ownedJSON = `[
  {"id": 1, "name": "chaseOS", "full_name": "chungquantin/chaseOS", "description": "desktop portfolio",
   "language": "TypeScript", "stargazers_count": 12, "forks_count": 2, "watchers_count": 12,
   "updated_at": "2025-03-01T10:00:00Z", "html_url": "https://github.com/chungquantin/chaseOS"},
  {"id": 2, "name": "notes", "full_name": "chungquantin/notes", "description": null,
   "language": null, "stargazers_count": 0, "forks_count": 0, "watchers_count": 0,
   "updated_at": "2025-01-15T08:00:00Z", "html_url": "https://github.com/chungquantin/notes"}
]`

const eventsJSON = `[
  {"type": "PushEvent", "created_at": "2025-06-01T00:00:00Z", "repo": {"id": 1, "name": "chungquantin/chaseOS"}},
  {"type": "PushEvent", "created_at": "2025-05-20T00:00:00Z", "repo": {"id": 77, "name": "paritytech/polkadot-sdk"}},
  {"type": "PushEvent", "created_at": "2025-04-02T00:00:00Z", "repo": {"id": 77, "name": "paritytech/polkadot-sdk"}},
  {"type": "WatchEvent", "created_at": "2025-07-01T00:00:00Z", "repo": {"id": 88, "name": "rust-lang/rust"}},
  {"type": "PushEvent", "created_at": "2025-07-02T00:00:00Z"}
]`

type upstream struct {
	owned, events         int32
	ownedStatus, evStatus int
	lastAuth, lastAgent   atomic.Value
}

func (u *upstream) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/chungquantin/repos", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&u.owned, 1)
		u.lastAuth.Store(r.Header.Get("Authorization"))
		u.lastAgent.Store(r.Header.Get("User-Agent"))
		assert.Equal(t, "updated", r.URL.Query().Get("sort"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		if u.ownedStatus != 0 {
			w.WriteHeader(u.ownedStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(ownedJSON))
	})
	mux.HandleFunc("/users/chungquantin/events/public", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&u.events, 1)
		if u.evStatus != 0 {
			w.WriteHeader(u.evStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(eventsJSON))
	})
	return mux
}

func newTestClient(t *testing.T, u *upstream, cfg Config) *Client {
	t.Helper()
	srv := httptest.NewServer(u.handler(t))
	t.Cleanup(srv.Close)

	cfg.Username = "chungquantin"
	cfg.BaseURL = srv.URL
	cfg.RetryWait = time.Millisecond
	return NewClient(cfg, nil)
}

func TestRepositoriesMergesOwnedAndContributed(t *testing.T) {
	c := newTestClient(t, &upstream{}, Config{})

	repos, err := c.Repositories(context.Background())
	require.NoError(t, err)
	require.Len(t, repos, 3)

	names := []string{repos[0].FullName, repos[1].FullName, repos[2].FullName}
	assert.Equal(t, []string{"paritytech/polkadot-sdk", "chungquantin/chaseOS", "chungquantin/notes"}, names)

	contributed := repos[0]
	assert.True(t, contributed.IsContributed)
	assert.Equal(t, "polkadot-sdk", contributed.Name)
	assert.Equal(t, int64(77), contributed.ID)
	assert.Equal(t, "https://github.com/paritytech/polkadot-sdk", contributed.URL)
	assert.Equal(t, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), contributed.UpdatedAt.UTC())
	assert.Nil(t, contributed.Description)

	// The owned entry wins over a push to the same repository.
	owned := repos[1]
	assert.False(t, owned.IsContributed)
	assert.Equal(t, 12, owned.Stars)
	assert.Equal(t, 2, owned.Forks)
	assert.Equal(t, 12, owned.Watchers)
	require.NotNil(t, owned.Language)
	assert.Equal(t, "TypeScript", *owned.Language)
	assert.Equal(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), owned.UpdatedAt.UTC())

	assert.Nil(t, repos[2].Description)
}

func TestRepositoriesDegradesWhenEventsFail(t *testing.T) {
	c := newTestClient(t, &upstream{evStatus: http.StatusForbidden}, Config{})

	repos, err := c.Repositories(context.Background())
	require.NoError(t, err)
	require.Len(t, repos, 2)
	for _, r := range repos {
		assert.False(t, r.IsContributed)
	}
}

func TestRepositoriesFailsWhenOwnedFails(t *testing.T) {
	c := newTestClient(t, &upstream{ownedStatus: http.StatusNotFound}, Config{})

	_, err := c.Repositories(context.Background())
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestRepositoriesServerErrorIsUpstreamError(t *testing.T) {
	u := &upstream{ownedStatus: http.StatusBadGateway}
	c := newTestClient(t, u, Config{MaxRetries: 2})

	_, err := c.Repositories(context.Background())
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, int32(3), atomic.LoadInt32(&u.owned))
}

func TestRepositoriesCaches(t *testing.T) {
	u := &upstream{}
	var mu sync.Mutex
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	c := newTestClient(t, u, Config{CacheTTL: time.Minute}).WithClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	})
	ctx := context.Background()

	first, err := c.Repositories(ctx)
	require.NoError(t, err)
	first[0].Name = "mutated"

	second, err := c.Repositories(ctx)
	require.NoError(t, err)
	assert.Equal(t, "polkadot-sdk", second[0].Name)
	assert.Equal(t, int32(1), atomic.LoadInt32(&u.owned))

	mu.Lock()
	now = now.Add(2 * time.Minute)
	mu.Unlock()
	_, err = c.Repositories(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&u.owned))

	c.Invalidate()
	_, err = c.Repositories(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&u.owned))
}

func TestRepositoriesSendsHeaders(t *testing.T) {
	u := &upstream{}
	c := newTestClient(t, u, Config{Token: "secret"})

	_, err := c.Repositories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", u.lastAuth.Load())
	assert.Equal(t, userAgent, u.lastAgent.Load())
}

func TestRepositoriesHonoursCancellation(t *testing.T) {
	u := &upstream{}
	c := newTestClient(t, u, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Repositories(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), atomic.LoadInt32(&u.owned))
	assert.Equal(t, resilience.StateClosed, c.Breaker().State())
}

func TestBreakerOpensOnRepeatedFailures(t *testing.T) {
	u := &upstream{ownedStatus: http.StatusNotFound, evStatus: http.StatusNotFound}
	c := newTestClient(t, u, Config{})
	ctx := context.Background()

	var err error
	for range 4 {
		_, err = c.Repositories(ctx)
	}
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, resilience.StateOpen, c.Breaker().State())
}

func TestMergeSkipsNonPushEvents(t *testing.T) {
	events := []apiEvent{{Type: "IssuesEvent", CreatedAt: time.Now()}}
	assert.Empty(t, merge(nil, events))
}

package nominatim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meteorwatch/skyfall-alert/internal/domain"
	"github.com/meteorwatch/skyfall-alert/internal/observability"
)

// --- mocks ---

type mapCache struct {
	entries map[string]domain.GeocacheEntry
	gets    int
	puts    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]domain.GeocacheEntry)}
}

func (m *mapCache) GetGeocache(_ context.Context, query string) (domain.GeocacheEntry, bool, error) {
	m.gets++
	entry, ok := m.entries[query]
	return entry, ok, nil
}

func (m *mapCache) UpsertGeocache(_ context.Context, entry *domain.GeocacheEntry) error {
	m.puts++
	m.entries[entry.Query] = *entry
	return nil
}

type countingSearcher struct {
	result *domain.Coordinates
	err    error
	calls  int
}

func (s *countingSearcher) Search(_ context.Context, _ string) (*domain.Coordinates, error) {
	s.calls++
	return s.result, s.err
}

func testResolver(cache GeocacheStore, client Searcher, clock clockwork.Clock) *Resolver {
	return NewResolver(cache, client, clock, 1100*time.Millisecond,
		discardLogger(), observability.NewMetricsForTesting())
}

// --- tests ---

func TestResolve_ShortQuery_NoExternalCall(t *testing.T) {
	cache := newMapCache()
	searcher := &countingSearcher{}
	r := testResolver(cache, searcher, clockwork.NewFakeClock())

	for _, q := range []string{"", "  ", "ab", " a ", "\tXY\n"} {
		result, err := r.Resolve(context.Background(), q)
		require.NoError(t, err)
		assert.Nil(t, result, "query %q", q)
	}

	assert.Equal(t, 0, searcher.calls)
	assert.Equal(t, 0, cache.gets, "short queries never reach the cache")
}

func TestResolve_MissThenHit(t *testing.T) {
	cache := newMapCache()
	searcher := &countingSearcher{
		result: &domain.Coordinates{Latitude: 39.9612, Longitude: -82.9988, DisplayName: "Columbus, Ohio"},
	}
	r := testResolver(cache, searcher, clockwork.NewFakeClock())

	first, err := r.Resolve(context.Background(), "Columbus, United States")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 39.9612, first.Latitude)
	assert.Equal(t, 1, searcher.calls)
	assert.Equal(t, 1, cache.puts)

	// The identical query must be served from the cache: no external call,
	// no rate-limit delay (the fake clock would otherwise block the wait).
	second, err := r.Resolve(context.Background(), "Columbus, United States")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, 39.9612, second.Latitude)
	assert.Equal(t, -82.9988, second.Longitude)
	assert.Equal(t, "Columbus, Ohio", second.DisplayName)
	assert.Equal(t, 1, searcher.calls)
}

func TestResolve_EmptyResult_NotCached(t *testing.T) {
	cache := newMapCache()
	searcher := &countingSearcher{result: nil}
	clock := clockwork.NewFakeClock()
	r := testResolver(cache, searcher, clock)

	result, err := r.Resolve(context.Background(), "Nowhere In Particular")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, 0, cache.puts, "no-result lookups are not cached")

	// Past the rate-limit window, the same query retries the external service.
	clock.Advance(2 * time.Second)
	result, err = r.Resolve(context.Background(), "Nowhere In Particular")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, 2, searcher.calls)
}

func TestResolve_SearchError_Propagates(t *testing.T) {
	cache := newMapCache()
	searcher := &countingSearcher{err: errors.New("connection refused")}
	r := testResolver(cache, searcher, clockwork.NewFakeClock())

	_, err := r.Resolve(context.Background(), "Columbus")
	require.Error(t, err)
	assert.Equal(t, 0, cache.puts)
}

func TestResolve_EnforcesMinimumSpacing(t *testing.T) {
	cache := newMapCache()
	searcher := &countingSearcher{
		result: &domain.Coordinates{Latitude: 1, Longitude: 2},
	}
	clock := clockwork.NewFakeClock()
	r := testResolver(cache, searcher, clock)

	_, err := r.Resolve(context.Background(), "First Place")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = r.Resolve(context.Background(), "Second Place")
	}()

	// The second miss must wait on the limiter before calling out.
	clock.BlockUntil(1)
	assert.Equal(t, 1, searcher.calls, "second call must not fire before the interval elapses")

	clock.Advance(1100 * time.Millisecond)
	<-done
	assert.Equal(t, 2, searcher.calls)
}

func TestIntervalLimiter_NoDelayBeforeFirstCall(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := newIntervalLimiter(clock, time.Second)

	// No prior mark: wait returns immediately even with a fake clock.
	require.NoError(t, l.wait(context.Background()))
}

func TestIntervalLimiter_ContextCancelledWhileWaiting(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := newIntervalLimiter(clock, time.Second)
	l.mark()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.wait(ctx) }()

	clock.BlockUntil(1)
	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)
}

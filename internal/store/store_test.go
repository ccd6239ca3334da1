package store

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meteorwatch/skyfall-alert/internal/domain"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func strPtr(s string) *string { return &s }

func testEvent(url string, detected time.Time) *domain.Event {
	return &domain.Event{
		Title:      "Meteorite crashes into farmhouse",
		SourceURL:  url,
		DetectedAt: detected,
		Country:    strPtr("United States"),
	}
}

func TestInsertEvent_DuplicateURL(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 14, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.InsertEvent(ctx, testEvent("http://x/1", now)))

	err := s.InsertEvent(ctx, testEvent("http://x/1", now.Add(time.Hour)))
	require.ErrorIs(t, err, ErrDuplicateEvent)

	// Exactly one row stored despite the second attempt.
	events, err := s.ListEvents(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, "http://x/1", events[0].SourceURL)
}

func TestHasEvent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 14, 12, 0, 0, 0, time.UTC)

	seen, err := s.HasEvent(ctx, "http://x/1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, s.InsertEvent(ctx, testEvent("http://x/1", now)))

	seen, err = s.HasEvent(ctx, "http://x/1")
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = s.HasEvent(ctx, "http://x/2")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestListEvents_OrderAndLimit(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 14, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.InsertEvent(ctx, testEvent("http://x/old", base)))
	require.NoError(t, s.InsertEvent(ctx, testEvent("http://x/new", base.Add(2*time.Hour))))
	require.NoError(t, s.InsertEvent(ctx, testEvent("http://x/mid", base.Add(time.Hour))))

	events, err := s.ListEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "http://x/new", events[0].SourceURL)
	assert.Equal(t, "http://x/mid", events[1].SourceURL)
	assert.Equal(t, "http://x/old", events[2].SourceURL)

	events, err = s.ListEvents(ctx, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "http://x/new", events[0].SourceURL)
}

func TestEvent_NullableFieldsRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	lat, lon := 40.1, -83.0
	event := &domain.Event{
		Title:           "Meteorite lands near Columbus",
		SourceURL:       "http://x/full",
		PublishedAt:     strPtr("2024-05-13"),
		DetectedAt:      time.Date(2024, 5, 14, 12, 0, 0, 0, time.UTC),
		Country:         strPtr("United States"),
		City:            strPtr("Columbus"),
		Latitude:        &lat,
		Longitude:       &lon,
		RawLocationText: strPtr("Columbus, United States"),
	}
	require.NoError(t, s.InsertEvent(ctx, event))

	bare := &domain.Event{
		Title:      "(no title)",
		SourceURL:  "http://x/bare",
		DetectedAt: time.Date(2024, 5, 14, 13, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.InsertEvent(ctx, bare))

	events, err := s.ListEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)

	got := events[1] // oldest = the full one
	require.NotNil(t, got.Latitude)
	assert.Equal(t, 40.1, *got.Latitude)
	require.NotNil(t, got.City)
	assert.Equal(t, "Columbus", *got.City)

	gotBare := events[0]
	assert.Nil(t, gotBare.Latitude)
	assert.Nil(t, gotBare.Country)
	assert.Nil(t, gotBare.PublishedAt)
}

func TestGeocache_GetMissAndHit(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, ok, err := s.GetGeocache(ctx, "Columbus, United States")
	require.NoError(t, err)
	assert.False(t, ok)

	entry := &domain.GeocacheEntry{
		Query:       "Columbus, United States",
		Latitude:    39.9612,
		Longitude:   -82.9988,
		DisplayName: "Columbus, Franklin County, Ohio, United States",
		CreatedAt:   time.Date(2024, 5, 14, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.UpsertGeocache(ctx, entry))

	got, ok, err := s.GetGeocache(ctx, "Columbus, United States")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 39.9612, got.Latitude)
	assert.Equal(t, -82.9988, got.Longitude)
	assert.Equal(t, "Columbus, Franklin County, Ohio, United States", got.DisplayName)
}

func TestGeocache_UpsertLastWriteWins(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	first := &domain.GeocacheEntry{
		Query: "Springfield", Latitude: 1, Longitude: 2,
		DisplayName: "Springfield, A",
		CreatedAt:   time.Date(2024, 5, 14, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.UpsertGeocache(ctx, first))

	second := &domain.GeocacheEntry{
		Query: "Springfield", Latitude: 3, Longitude: 4,
		DisplayName: "Springfield, B",
		CreatedAt:   time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.UpsertGeocache(ctx, second))

	got, ok, err := s.GetGeocache(ctx, "Springfield")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3.0, got.Latitude)
	assert.Equal(t, "Springfield, B", got.DisplayName)
}

func TestGeocache_QueryIsCaseSensitive(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	entry := &domain.GeocacheEntry{
		Query: "Columbus", Latitude: 1, Longitude: 2,
		CreatedAt: time.Date(2024, 5, 14, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.UpsertGeocache(ctx, entry))

	_, ok, err := s.GetGeocache(ctx, "columbus")
	require.NoError(t, err)
	assert.False(t, ok, "cache keys are exact strings")
}

package nominatim

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		userAgent:  "skyfall-alert-bot/1.0",
		httpClient: &http.Client{Timeout: 5 * time.Second},
		logger:     discardLogger(),
	}
}

func TestClient_Search_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Columbus, United States", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "skyfall-alert-bot/1.0", r.Header.Get("User-Agent"))

		_, _ = io.WriteString(w, `[{"lat":"39.9612","lon":"-82.9988","display_name":"Columbus, Franklin County, Ohio, United States"}]`)
	}))
	defer srv.Close()

	result, err := testClient(srv.URL).Search(context.Background(), "Columbus, United States")
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 39.9612, result.Latitude)
	assert.Equal(t, -82.9988, result.Longitude)
	assert.Equal(t, "Columbus, Franklin County, Ohio, United States", result.DisplayName)
}

func TestClient_Search_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	result, err := testClient(srv.URL).Search(context.Background(), "Nowhere In Particular")
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestClient_Search_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Search(context.Background(), "Columbus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestClient_Search_MalformedCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[{"lat":"not-a-number","lon":"-82.9988"}]`)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Search(context.Background(), "Columbus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse latitude")
}

// Package article fetches the full text of a news article for location
// extraction. Extraction quality does not need clean prose, only the place
// names buried in the page, so a blunt HTML-to-text conversion is enough.
package article

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/k3a/html2text"
)

const (
	// maxTextChars caps the extracted text; anything past this adds latency
	// to the substring scans without improving the location guess.
	maxTextChars = 20000

	// maxBodyBytes bounds how much of the page is downloaded at all.
	maxBodyBytes = 2 << 20
)

var blankRuns = regexp.MustCompile(`\n{2,}`)

// Fetcher retrieves article pages and reduces them to plain text.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
}

// NewFetcher creates an article fetcher with a bounded request timeout.
func NewFetcher(userAgent string, timeout time.Duration, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		logger:     logger,
	}
}

// Text downloads the page at url and returns its visible text with script
// and style content stripped, blank-line runs collapsed, and length capped.
func (f *Fetcher) Text(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create article request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch article: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read article body: %w", err)
	}

	text := html2text.HTML2Text(string(body))
	text = blankRuns.ReplaceAllString(text, "\n")
	return truncateRunes(text, maxTextChars), nil
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

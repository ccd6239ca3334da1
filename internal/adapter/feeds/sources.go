// Package feeds builds news-search feed URLs and fetches their items.
package feeds

import (
	"fmt"
	"net/url"
)

// regionVariants are the Google News editions polled each scan. The same
// query is searched per edition because regional editions surface different
// local outlets for the same story.
var regionVariants = []struct {
	hl   string
	gl   string
	ceid string
}{
	{"en", "US", "US:en"},
	{"en", "GB", "GB:en"},
	{"en", "AU", "AU:en"},
	{"en", "CA", "CA:en"},
}

// GoogleNewsURL builds a Google News RSS search URL for one regional edition,
// e.g. https://news.google.com/rss/search?q=meteorite&hl=en-US&gl=US&ceid=US:en
func GoogleNewsURL(query, hl, gl, ceid string) string {
	return fmt.Sprintf(
		"https://news.google.com/rss/search?q=%s&hl=%s&gl=%s&ceid=%s",
		url.QueryEscape(query), hl, gl, ceid,
	)
}

// Source provides the feed URLs for one topical search query.
type Source struct{}

// FeedURLs returns one search feed URL per regional variant.
func (Source) FeedURLs(query string) []string {
	urls := make([]string, 0, len(regionVariants))
	for _, v := range regionVariants {
		urls = append(urls, GoogleNewsURL(query, v.hl, v.gl, v.ceid))
	}
	return urls
}

// Package pipeline orchestrates the repeating scan cycle: fetch feeds,
// filter items, enrich with article text and coordinates, persist, notify.
//
// Every failure below the scan itself is isolated: a broken feed skips to
// the next feed, a broken item skips to the next item, and a failed
// notification still leaves the event stored. Storage is at-most-once per
// source URL; alerting is best-effort and explicitly not at-least-once.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/meteorwatch/skyfall-alert/internal/domain"
	"github.com/meteorwatch/skyfall-alert/internal/observability"
	"github.com/meteorwatch/skyfall-alert/internal/store"
)

// FeedSource provides the feed URLs scanned each cycle.
type FeedSource interface {
	FeedURLs(query string) []string
}

// FeedFetcher retrieves the items of one feed.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]domain.FeedItem, error)
}

// ArticleFetcher retrieves an article's plain text for location extraction.
type ArticleFetcher interface {
	Text(ctx context.Context, url string) (string, error)
}

// Resolver translates a place query to coordinates, or nil when unresolvable.
type Resolver interface {
	Resolve(ctx context.Context, query string) (*domain.Coordinates, error)
}

// Notifier delivers one rendered alert.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// EventStore is the dedup check and the durable sink for detected events.
// Implementations must enforce source-URL uniqueness atomically in
// InsertEvent; HasEvent is only a cheap pre-filter.
type EventStore interface {
	HasEvent(ctx context.Context, sourceURL string) (bool, error)
	InsertEvent(ctx context.Context, event *domain.Event) error
}

// Outcome classifies what happened to one feed item.
type Outcome int

const (
	// OutcomeInserted: a new event was stored (whether or not the
	// notification went out).
	OutcomeInserted Outcome = iota
	// OutcomeSkippedDuplicate: the source URL was already stored, found
	// either by the pre-filter or by losing the insert race.
	OutcomeSkippedDuplicate
	// OutcomeSkippedNotCandidate: the item failed classification or had no
	// usable link.
	OutcomeSkippedNotCandidate
	// OutcomeFailed: an unexpected storage error; the item was dropped.
	OutcomeFailed
)

// Summary tallies one scan cycle.
type Summary struct {
	Feeds         int
	FeedErrors    int
	Items         int
	NewEvents     int
	Duplicates    int
	NotCandidates int
	Failures      int
}

// Deps wires the pipeline's collaborators and settings.
type Deps struct {
	Store    EventStore
	Source   FeedSource
	Feeds    FeedFetcher
	Articles ArticleFetcher
	Resolver Resolver
	Notifier Notifier

	Query    string
	Interval time.Duration
	Clock    clockwork.Clock
	Logger   *slog.Logger
	Metrics  *observability.Metrics
}

// Pipeline runs scan cycles on a fixed interval measured from the end of
// each cycle.
type Pipeline struct {
	deps  Deps
	ready atomic.Bool
}

// New creates a Pipeline from its dependencies.
func New(deps Deps) *Pipeline {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	return &Pipeline{deps: deps}
}

// CheckReadiness returns nil once at least one scan cycle has completed.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no scan cycle completed yet")
	}
	return nil
}

// Run repeats scan cycles until the context is cancelled, sleeping the
// configured interval after each cycle finishes regardless of how long the
// cycle took. Per-cycle problems are logged, never fatal.
func (p *Pipeline) Run(ctx context.Context) error {
	log := p.deps.Logger
	log.Info("worker started", "interval", p.deps.Interval, "query", p.deps.Query)
	p.deps.Metrics.WorkerRunning.Set(1)
	defer p.deps.Metrics.WorkerRunning.Set(0)

	for {
		summary := p.RunOnce(ctx)
		log.Info("scan complete",
			"new_events", summary.NewEvents,
			"items", summary.Items,
			"duplicates", summary.Duplicates,
			"feed_errors", summary.FeedErrors,
			"failures", summary.Failures,
		)

		select {
		case <-ctx.Done():
			log.Info("worker stopping", "reason", ctx.Err())
			return nil
		case <-p.deps.Clock.After(p.deps.Interval):
		}
	}
}

// RunOnce performs one full scan over all feeds and returns its tally.
func (p *Pipeline) RunOnce(ctx context.Context) Summary {
	start := time.Now()
	var s Summary

	for _, feedURL := range p.deps.Source.FeedURLs(p.deps.Query) {
		s.Feeds++
		items, err := p.deps.Feeds.Fetch(ctx, feedURL)
		if err != nil {
			// One failing feed never aborts the scan.
			p.deps.Logger.Warn("feed fetch failed", "url", feedURL, "error", err)
			p.deps.Metrics.FeedErrors.Inc()
			s.FeedErrors++
			continue
		}

		for _, item := range items {
			s.Items++
			p.deps.Metrics.ItemsSeen.Inc()

			switch p.processItem(ctx, item) {
			case OutcomeInserted:
				s.NewEvents++
				p.deps.Metrics.EventsInserted.Inc()
			case OutcomeSkippedDuplicate:
				s.Duplicates++
				p.deps.Metrics.ItemsSkipped.WithLabelValues("duplicate").Inc()
			case OutcomeSkippedNotCandidate:
				s.NotCandidates++
				p.deps.Metrics.ItemsSkipped.WithLabelValues("not_candidate").Inc()
			case OutcomeFailed:
				s.Failures++
				p.deps.Metrics.ItemFailures.Inc()
			}
		}
	}

	p.deps.Metrics.ScansTotal.Inc()
	p.deps.Metrics.ScanDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)
	return s
}

// processItem takes one feed item through filter, enrich, persist, notify.
func (p *Pipeline) processItem(ctx context.Context, item domain.FeedItem) Outcome {
	title := strings.TrimSpace(item.Title)
	link := strings.TrimSpace(item.Link)
	summary := strings.TrimSpace(item.Summary)

	if link == "" {
		return OutcomeSkippedNotCandidate
	}

	seen, err := p.deps.Store.HasEvent(ctx, link)
	if err != nil {
		p.deps.Logger.Error("dedup check failed", "url", link, "error", err)
		return OutcomeFailed
	}
	if seen {
		return OutcomeSkippedDuplicate
	}

	if !domain.IsCandidate(title, summary) {
		return OutcomeSkippedNotCandidate
	}

	// Enrichment is best-effort from here: a missing article or an
	// unresolvable location degrades the event, never drops it.
	articleText := ""
	if text, err := p.deps.Articles.Text(ctx, link); err != nil {
		p.deps.Logger.Warn("article fetch failed", "url", link, "error", err)
		p.deps.Metrics.ArticleErrors.Inc()
	} else {
		articleText = text
	}

	guess := domain.ExtractLocation(title, summary, articleText)

	var coords *domain.Coordinates
	if query := guess.GeocodeQuery(); query != "" {
		if resolved, err := p.deps.Resolver.Resolve(ctx, query); err != nil {
			p.deps.Logger.Warn("geocode failed", "query", query, "error", err)
		} else {
			coords = resolved
		}
	}

	event := buildEvent(title, link, item.Published, guess, coords)
	if err := p.deps.Store.InsertEvent(ctx, &event); err != nil {
		if errors.Is(err, store.ErrDuplicateEvent) {
			// Lost a race with a concurrent writer, or the URL appeared in
			// two regional feeds within this run. Expected, not an error.
			return OutcomeSkippedDuplicate
		}
		p.deps.Logger.Error("insert failed", "url", link, "error", err)
		return OutcomeFailed
	}

	if err := p.deps.Notifier.Send(ctx, domain.FormatAlert(event)); err != nil {
		// The event stays stored; there is no retry and no rollback.
		p.deps.Logger.Warn("notification failed", "url", link, "error", err)
		p.deps.Metrics.NotifyFailures.Inc()
	}

	return OutcomeInserted
}

func buildEvent(title, link, published string, guess domain.LocationGuess, coords *domain.Coordinates) domain.Event {
	if title == "" {
		title = "(no title)"
	}

	event := domain.Event{
		Title:      title,
		SourceURL:  link,
		DetectedAt: domain.Now(),
	}

	if date := domain.NormalizeDate(published); date != "" {
		event.PublishedAt = &date
	}
	if guess.Country != "" {
		event.Country = &guess.Country
	}
	if guess.Region != "" {
		event.Region = &guess.Region
	}
	if guess.City != "" {
		event.City = &guess.City
	}
	if guess.RawText != "" {
		event.RawLocationText = &guess.RawText
	}
	if coords != nil {
		event.Latitude = &coords.Latitude
		event.Longitude = &coords.Longitude
	}
	return event
}

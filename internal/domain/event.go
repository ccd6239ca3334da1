package domain

import "time"

// Event is one detected meteorite-fall report tied to a unique article URL.
// Events are insert-only: once stored they are never updated or deleted by
// the pipeline. The unique index on SourceURL is the sole dedup guard, and
// concurrent writers rely on it entirely — a second insert of the same URL
// must fail at the storage layer, never silently succeed.
type Event struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Title     string `gorm:"not null" json:"title"`
	SourceURL string `gorm:"uniqueIndex;not null" json:"source_url"`

	// PublishedAt is the article's publication date ("2006-01-02"), nil when
	// the feed date could not be parsed. DetectedAt is always set.
	PublishedAt *string   `json:"published_at"`
	DetectedAt  time.Time `gorm:"not null;index" json:"detected_at"`

	Country *string `json:"country"`
	Region  *string `json:"region"`
	City    *string `json:"city"`

	// Denormalized copies of the geocode result at insert time, not a live
	// reference into the geocache.
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	RawLocationText *string `json:"raw_location_text,omitempty"`
}

// GeocacheEntry memoizes one resolution of a free-text place query against
// the external geocoder. At most one entry per query; writes are upserts.
// Only successful resolutions are stored, so an unresolvable query is
// retried on every later scan.
type GeocacheEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Query       string    `gorm:"uniqueIndex;not null" json:"query"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

// TableName keeps the original table name used by earlier deployments.
func (GeocacheEntry) TableName() string { return "geocache" }

// Coordinates is a resolved WGS-84 position with the geocoder's description.
type Coordinates struct {
	Latitude    float64
	Longitude   float64
	DisplayName string
}

// FeedItem is one entry fetched from a news feed, before any filtering.
type FeedItem struct {
	Title     string
	Link      string
	Published string
	Summary   string
}

// LocationGuess is the classifier's best guess at where a report happened.
// Empty strings mean "not found". Region is never populated in this design.
type LocationGuess struct {
	City    string
	Region  string
	Country string
	RawText string
}

// GeocodeQuery builds the place query handed to the geocoder: "city, country"
// when both are known, otherwise whichever is present, otherwise empty.
func (g LocationGuess) GeocodeQuery() string {
	switch {
	case g.City != "" && g.Country != "":
		return g.City + ", " + g.Country
	case g.City != "":
		return g.City
	default:
		return g.Country
	}
}

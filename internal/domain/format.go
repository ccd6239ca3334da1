package domain

import (
	"fmt"
	"strings"
)

// FormatAlert renders the outbound notification for a newly stored event:
// a location line, a date line, and the source link.
func FormatAlert(event Event) string {
	var parts []string
	for _, p := range []*string{event.Country, event.Region, event.City} {
		if p != nil && *p != "" {
			parts = append(parts, *p)
		}
	}

	loc := "Unknown"
	switch {
	case len(parts) > 0:
		loc = strings.Join(parts, ", ")
	case event.RawLocationText != nil && *event.RawLocationText != "":
		loc = *event.RawLocationText
	}

	date := event.DetectedAt.Format("2006-01-02")
	if event.PublishedAt != nil && *event.PublishedAt != "" {
		date = *event.PublishedAt
	}

	return fmt.Sprintf(
		"☄️ Meteorite fall report detected\n\n📍 Location: %s\n📅 Date: %s\n📰 Source: %s\n",
		loc, date, event.SourceURL,
	)
}

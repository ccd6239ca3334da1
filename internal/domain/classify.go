package domain

import (
	"regexp"
	"strings"
	"time"
)

// impactSignals are the verbs that separate a fall report from generic
// astronomy coverage. "meteorite" alone is a strong enough signal without
// them; "meteor" alone is not.
var impactSignals = []string{"fell", "landed", "crash", "crashed", "impact", "hit", "struck", "smash"}

// IsCandidate reports whether a feed item looks like a genuine meteorite-fall
// report. The check is case-insensitive over title and summary concatenated:
// the text must mention "meteor"/"meteorite", must not mention "meteor shower"
// or "meteorological", and must contain either "meteorite" or at least one
// impact-signal word.
func IsCandidate(title, summary string) bool {
	text := strings.ToLower(title + " " + summary)

	// "meteor" is a prefix of "meteorite", so one check covers both tokens.
	if !strings.Contains(text, "meteor") {
		return false
	}
	if strings.Contains(text, "meteor shower") || strings.Contains(text, "meteorological") {
		return false
	}
	if strings.Contains(text, "meteorite") {
		return true
	}
	for _, s := range impactSignals {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}

// placeRe anchors capitalized place candidates to the prepositions news
// headlines actually use: "crashes into farmhouse in Ohio", "lands near
// Aguas Zarcas". Up to three capitalized words are taken as one candidate.
// Only horizontal whitespace may join them: a headline ends without
// punctuation, and a candidate must not run across into the next segment's
// opening word.
var placeRe = regexp.MustCompile(`\b(?:in|near|at|over|outside|above)[ \t]+([A-Z][a-zA-Z'-]+(?:[ \t]+[A-Z][a-zA-Z'-]+){0,2})`)

// placeStopwords are capitalized words that follow the anchor prepositions
// without naming a place: month names, weekdays, and common sentence openers.
var placeStopwords = map[string]bool{
	"January": true, "February": true, "March": true, "April": true,
	"May": true, "June": true, "July": true, "August": true,
	"September": true, "October": true, "November": true, "December": true,
	"Monday": true, "Tuesday": true, "Wednesday": true, "Thursday": true,
	"Friday": true, "Saturday": true, "Sunday": true,
	"The": true, "A": true, "An": true, "This": true, "That": true,
}

// ExtractLocation guesses the place a report refers to from the item's title,
// summary, and fetched article text. The segments are joined with newlines so
// a candidate can never span two of them. Two independent passes run over the
// joined text: a named-place scan for city-level mentions and a substring
// scan over the canonical country list (first match wins). The first city and
// first country found become the guess; Region stays empty.
func ExtractLocation(title, summary, articleText string) LocationGuess {
	blob := strings.Join([]string{title, summary, articleText}, "\n")

	var city, country string
	for _, m := range placeRe.FindAllStringSubmatch(blob, -1) {
		candidate := trimAtStopword(m[1])
		if candidate == "" {
			continue
		}
		if isCountryName(candidate) {
			if country == "" {
				country = canonicalCountry(candidate)
			}
			continue
		}
		if city == "" {
			city = candidate
		}
		if city != "" && country != "" {
			break
		}
	}

	// Country names often appear without a preposition anchor; the substring
	// scan catches those. The named-place scan keeps priority when it found one.
	if country == "" {
		country = matchCountry(blob)
	}

	guess := LocationGuess{City: city, Country: country}
	switch {
	case city != "" && country != "":
		guess.RawText = city + ", " + country
	case city != "":
		guess.RawText = city
	case country != "":
		guess.RawText = country
	}
	return guess
}

// trimAtStopword cuts a place candidate at its first stopword, so trailing
// sentence words ("Columbus Friday") never pollute the place name. An empty
// result means the whole candidate was sentence filler.
func trimAtStopword(candidate string) string {
	words := strings.Fields(candidate)
	for i, w := range words {
		if placeStopwords[w] {
			words = words[:i]
			break
		}
	}
	return strings.Join(words, " ")
}

// dateLayouts covers the publication date formats RSS publishers emit.
var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2 Jan 2006 15:04:05 MST",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// NormalizeDate parses a free-text publication date into an ISO calendar
// date ("2006-01-02"). It returns the empty string on any input it cannot
// parse and never panics.
func NormalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

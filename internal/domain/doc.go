// Package domain models meteorite-fall reports detected in public news feeds.
//
// # Data Source
//
// Candidate items come from Google News RSS search feeds, one feed per
// regional variant (US, GB, AU, CA). Each item carries a title, an article
// link, an optional publication date string, and an HTML summary. The article
// link is the natural key: one stored event per distinct source URL, forever.
//
// # Classification
//
// Whether an item is a genuine fall report is decided by a cheap keyword
// filter, not a statistical model. The downstream cost of a false positive is
// one wasted geocode and one noisy alert, while false negatives are silent,
// so the filter is tuned to reject the common confusions ("meteor shower",
// "meteorological") and to require either the word "meteorite" or an
// impact-signal word alongside "meteor". See [IsCandidate].
//
// # Location extraction
//
// Locations are guessed from text with two independent passes: a
// preposition-anchored proper-noun scan ("... in Ohio", "... near Aguas
// Zarcas") for city-level mentions, and a case-insensitive substring scan
// over a canonical country-name list where the first match wins. Multi-country
// text therefore resolves to whichever country appears first in the list;
// that nondeterminism is accepted. No sub-national region extraction is
// attempted. See [ExtractLocation].
//
// # Dates
//
// Feed publication dates arrive in whatever format the publisher emits.
// [NormalizeDate] tries the layouts seen in the wild and degrades to an empty
// string on anything it cannot parse; it never fails loudly.
package domain

// Package models defines the domain types shared between the storage and
// service layers: the short link record, the click events collected for it,
// and the aggregated statistics view.
package models

import "time"

// Fallback values recorded when a click arrives without request metadata.
const (
	// DefaultUserAgent is recorded when the client sent no User-Agent header.
	DefaultUserAgent = "Unknown"
	// DefaultReferrer is recorded for direct visits without a Referer header.
	DefaultReferrer = "Direct"
	// DefaultIP is recorded when the client address could not be determined.
	DefaultIP = "Unknown"
)

// URL represents a shortened URL and its associated metadata.
type URL struct {
	// ShortCode is the short code or key associated with the original URL.
	ShortCode string
	// OriginalURL is the original, full-length URL that the short code points to.
	OriginalURL string
	// ClickCount tracks the number of times the short link has been resolved.
	ClickCount int64
	// CreatedAt is the timestamp indicating when the short link was created.
	CreatedAt time.Time
	// ExpiresAt is the timestamp after which the short link no longer redirects.
	ExpiresAt time.Time
}

// ClickEvent is a single recorded resolution of a short link. Events are
// append-only; once recorded they are never modified or removed.
type ClickEvent struct {
	Timestamp time.Time
	UserAgent string
	Referrer  string
	IP        string
}

// LinkStats is the read-side view of a short link's click history. The
// OriginalURL, CreatedAt and ExpiresAt fields are captured when the link is
// created and are never re-synced with the link record afterwards.
type LinkStats struct {
	TotalClicks int64
	OriginalURL string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	Clicks      []ClickEvent
}

package memory

import (
	"time"

	"github.com/okravets/linktally/internal/models"
	"github.com/okravets/linktally/internal/storage"
)

// analyticsEntry accumulates the click history for a single short code.
// The originalURL, createdAt and expiresAt fields are snapshots taken when
// the link was created; they are never re-synced with the link record.
type analyticsEntry struct {
	originalURL string
	createdAt   time.Time
	expiresAt   time.Time
	totalClicks int64
	clicks      []models.ClickEvent
}

// analyticsLog maps short codes to their append-only click histories. It is
// not safe for concurrent use on its own; the owning Store serializes all
// access under its lock.
type analyticsLog struct {
	entries map[string]*analyticsEntry
}

func newAnalyticsLog() analyticsLog {
	return analyticsLog{entries: make(map[string]*analyticsEntry)}
}

// init creates the empty click history for a freshly created link. A second
// init for the same code means the registry and the log have diverged.
func (l *analyticsLog) init(link *models.URL) error {
	if _, ok := l.entries[link.ShortCode]; ok {
		return storage.ErrAnalyticsExists
	}

	l.entries[link.ShortCode] = &analyticsEntry{
		originalURL: link.OriginalURL,
		createdAt:   link.CreatedAt,
		expiresAt:   link.ExpiresAt,
	}

	return nil
}

// append records a click for the code, keeping clicks in insertion order.
func (l *analyticsLog) append(shortCode string, click models.ClickEvent) error {
	entry, ok := l.entries[shortCode]
	if !ok {
		return storage.ErrAnalyticsMissing
	}

	entry.clicks = append(entry.clicks, click)
	entry.totalClicks++

	return nil
}

// stats returns a snapshot of the entry for the code. The click slice is
// copied so callers can read it after the store lock is released.
func (l *analyticsLog) stats(shortCode string) (*models.LinkStats, bool) {
	entry, ok := l.entries[shortCode]
	if !ok {
		return nil, false
	}

	clicks := make([]models.ClickEvent, len(entry.clicks))
	copy(clicks, entry.clicks)

	return &models.LinkStats{
		TotalClicks: entry.totalClicks,
		OriginalURL: entry.originalURL,
		CreatedAt:   entry.createdAt,
		ExpiresAt:   entry.expiresAt,
		Clicks:      clicks,
	}, true
}

// Package memory provides the in-process storage backend for short links.
// A single Store owns both the link registry and the analytics log behind
// one mutex, so the collision check on create and the count-and-append pair
// on resolve are atomic with respect to every other operation. Nothing is
// ever deleted: expired links stay in place, deny redirects and keep
// serving statistics.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okravets/linktally/internal/models"
	"github.com/okravets/linktally/internal/storage"
)

// Store holds every short link and its click history in memory. The zero
// value is not usable; create instances with NewStore.
type Store struct {
	mu        sync.Mutex
	links     map[string]*models.URL
	analytics analyticsLog

	// now is the single clock for creation, expiry evaluation and click
	// timestamps. Tests substitute it to simulate the passage of time.
	now func() time.Time
}

// NewStore returns an empty store backed by the wall clock.
func NewStore() *Store {
	return &Store{
		links:     make(map[string]*models.URL),
		analytics: newAnalyticsLog(),
		now:       time.Now,
	}
}

// CreateLink stores a new link under shortCode and initializes its click
// history in one step, so no partial state survives a failure. The link
// expires validity from now; a zero or negative validity yields a link
// that is already expired. Returns storage.ErrShortCodeExists if the code
// is taken, even by an expired link.
func (s *Store) CreateLink(ctx context.Context, shortCode, originalURL string, validity time.Duration) (*models.URL, error) {
	const op = "storage.memory.Store.CreateLink"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.links[shortCode]; ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrShortCodeExists)
	}

	now := s.now()
	link := &models.URL{
		ShortCode:   shortCode,
		OriginalURL: originalURL,
		CreatedAt:   now,
		ExpiresAt:   now.Add(validity),
	}

	if err := s.analytics.init(link); err != nil {
		return nil, fmt.Errorf("%s: failed to initialize analytics: %w", op, err)
	}
	s.links[shortCode] = link

	cp := *link
	return &cp, nil
}

// ResolveLink looks up shortCode and, if the link is still live, increments
// its click count and appends click to its history. The two mutations happen
// under the same lock acquisition as the lookup, so they either both take
// effect or neither does. The click's timestamp is assigned from the store
// clock. Expired links return storage.ErrLinkExpired and record nothing.
func (s *Store) ResolveLink(ctx context.Context, shortCode string, click models.ClickEvent) (*models.URL, error) {
	const op = "storage.memory.Store.ResolveLink"

	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.links[shortCode]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrLinkNotFound)
	}

	now := s.now()
	if now.After(link.ExpiresAt) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrLinkExpired)
	}

	click.Timestamp = now
	if err := s.analytics.append(shortCode, click); err != nil {
		return nil, fmt.Errorf("%s: failed to record click: %w", op, err)
	}
	link.ClickCount++

	cp := *link
	return &cp, nil
}

// LinkStats returns the click history snapshot for shortCode. Expired links
// are served like live ones; only unknown codes fail. A code known to the
// registry but absent from the analytics log is a defect and surfaces as
// storage.ErrAnalyticsMissing.
func (s *Store) LinkStats(ctx context.Context, shortCode string) (*models.LinkStats, error) {
	const op = "storage.memory.Store.LinkStats"

	s.mu.Lock()
	defer s.mu.Unlock()

	stats, ok := s.analytics.stats(shortCode)
	if !ok {
		if _, registered := s.links[shortCode]; registered {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAnalyticsMissing)
		}

		return nil, fmt.Errorf("%s: %w", op, storage.ErrLinkNotFound)
	}

	return stats, nil
}

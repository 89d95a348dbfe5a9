package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sync/errgroup"

	"github.com/okravets/linktally/internal/models"
	"github.com/okravets/linktally/internal/storage"
)

var baseTime = time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func setupStore(t testing.TB) (*Store, *fakeClock) {
	t.Helper()

	clock := &fakeClock{now: baseTime}
	store := NewStore()
	store.now = clock.Now

	return store, clock
}

func TestStore_CreateLink(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		store, _ := setupStore(t)

		link, err := store.CreateLink(context.TODO(), "code1", "https://example.com", 30*time.Minute)

		assert.NoError(t, err)
		assert.NotNil(t, link)
		assert.Equal(t, "code1", link.ShortCode)
		assert.Equal(t, "https://example.com", link.OriginalURL)
		assert.Zero(t, link.ClickCount)
		assert.Equal(t, baseTime, link.CreatedAt)
		assert.Equal(t, baseTime.Add(30*time.Minute), link.ExpiresAt)

		stats, err := store.LinkStats(context.TODO(), "code1")

		assert.NoError(t, err)
		assert.NotNil(t, stats)
		assert.Zero(t, stats.TotalClicks)
		assert.Empty(t, stats.Clicks)
	})

	t.Run("short code exists", func(t *testing.T) {
		store, _ := setupStore(t)

		_, err := store.CreateLink(context.TODO(), "code1", "https://example.com", 30*time.Minute)
		assert.NoError(t, err)

		link, err := store.CreateLink(context.TODO(), "code1", "https://another.com", 30*time.Minute)

		assert.Error(t, err)
		assert.ErrorIs(t, err, storage.ErrShortCodeExists)
		assert.Nil(t, link)

		stats, err := store.LinkStats(context.TODO(), "code1")

		assert.NoError(t, err)
		assert.NotNil(t, stats)
		assert.Equal(t, "https://example.com", stats.OriginalURL)
	})

	t.Run("expired link still occupies its code", func(t *testing.T) {
		store, clock := setupStore(t)

		_, err := store.CreateLink(context.TODO(), "code1", "https://example.com", time.Minute)
		assert.NoError(t, err)

		clock.Advance(2 * time.Minute)

		link, err := store.CreateLink(context.TODO(), "code1", "https://another.com", 30*time.Minute)

		assert.Error(t, err)
		assert.ErrorIs(t, err, storage.ErrShortCodeExists)
		assert.Nil(t, link)
	})

	t.Run("negative validity yields an expired link", func(t *testing.T) {
		store, _ := setupStore(t)

		link, err := store.CreateLink(context.TODO(), "code1", "https://example.com", -5*time.Minute)

		assert.NoError(t, err)
		assert.NotNil(t, link)
		assert.True(t, link.ExpiresAt.Before(link.CreatedAt))

		_, err = store.ResolveLink(context.TODO(), "code1", models.ClickEvent{})

		assert.ErrorIs(t, err, storage.ErrLinkExpired)
	})

	t.Run("no partial state on analytics failure", func(t *testing.T) {
		store, _ := setupStore(t)
		store.analytics.entries["code1"] = &analyticsEntry{}

		link, err := store.CreateLink(context.TODO(), "code1", "https://example.com", 30*time.Minute)

		assert.Error(t, err)
		assert.ErrorIs(t, err, storage.ErrAnalyticsExists)
		assert.Nil(t, link)
		assert.NotContains(t, store.links, "code1")
	})

	t.Run("returned link is a copy", func(t *testing.T) {
		store, _ := setupStore(t)

		link, err := store.CreateLink(context.TODO(), "code1", "https://example.com", 30*time.Minute)
		assert.NoError(t, err)

		link.OriginalURL = "https://tampered.com"

		got, err := store.ResolveLink(context.TODO(), "code1", models.ClickEvent{})

		assert.NoError(t, err)
		assert.NotNil(t, got)
		assert.Equal(t, "https://example.com", got.OriginalURL)
	})
}

func TestStore_ResolveLink(t *testing.T) {
	t.Run("link not found", func(t *testing.T) {
		store, _ := setupStore(t)

		link, err := store.ResolveLink(context.TODO(), "missing", models.ClickEvent{})

		assert.Error(t, err)
		assert.ErrorIs(t, err, storage.ErrLinkNotFound)
		assert.Nil(t, link)
	})

	t.Run("expired link records nothing", func(t *testing.T) {
		store, clock := setupStore(t)

		_, err := store.CreateLink(context.TODO(), "code1", "https://example.com", time.Minute)
		assert.NoError(t, err)

		clock.Advance(2 * time.Minute)

		link, err := store.ResolveLink(context.TODO(), "code1", models.ClickEvent{UserAgent: "curl/8.6.0"})

		assert.Error(t, err)
		assert.ErrorIs(t, err, storage.ErrLinkExpired)
		assert.Nil(t, link)

		stats, err := store.LinkStats(context.TODO(), "code1")

		assert.NoError(t, err)
		assert.NotNil(t, stats)
		assert.Zero(t, stats.TotalClicks)
		assert.Empty(t, stats.Clicks)
	})

	t.Run("link is live at the exact expiry instant", func(t *testing.T) {
		store, clock := setupStore(t)

		_, err := store.CreateLink(context.TODO(), "code1", "https://example.com", 30*time.Minute)
		assert.NoError(t, err)

		clock.Advance(30 * time.Minute)

		link, err := store.ResolveLink(context.TODO(), "code1", models.ClickEvent{})

		assert.NoError(t, err)
		assert.NotNil(t, link)
		assert.Equal(t, int64(1), link.ClickCount)
	})

	t.Run("clicks are timestamped by the store in order", func(t *testing.T) {
		store, clock := setupStore(t)

		_, err := store.CreateLink(context.TODO(), "code1", "https://example.com", 30*time.Minute)
		assert.NoError(t, err)

		click := models.ClickEvent{
			Timestamp: time.Date(1999, time.January, 1, 0, 0, 0, 0, time.UTC),
			UserAgent: "curl/8.6.0",
			Referrer:  "https://news.ycombinator.com",
			IP:        "203.0.113.7",
		}

		clock.Advance(5 * time.Minute)
		_, err = store.ResolveLink(context.TODO(), "code1", click)
		assert.NoError(t, err)

		clock.Advance(5 * time.Minute)
		link, err := store.ResolveLink(context.TODO(), "code1", models.ClickEvent{UserAgent: "Mozilla/5.0"})
		assert.NoError(t, err)
		assert.Equal(t, int64(2), link.ClickCount)

		stats, err := store.LinkStats(context.TODO(), "code1")

		assert.NoError(t, err)
		assert.NotNil(t, stats)
		assert.Equal(t, int64(2), stats.TotalClicks)
		assert.Len(t, stats.Clicks, 2)

		assert.Equal(t, baseTime.Add(5*time.Minute), stats.Clicks[0].Timestamp)
		assert.Equal(t, "curl/8.6.0", stats.Clicks[0].UserAgent)
		assert.Equal(t, "https://news.ycombinator.com", stats.Clicks[0].Referrer)
		assert.Equal(t, "203.0.113.7", stats.Clicks[0].IP)

		assert.Equal(t, baseTime.Add(10*time.Minute), stats.Clicks[1].Timestamp)
		assert.Equal(t, "Mozilla/5.0", stats.Clicks[1].UserAgent)
	})

	t.Run("count and history stay in step on analytics failure", func(t *testing.T) {
		store, _ := setupStore(t)

		_, err := store.CreateLink(context.TODO(), "code1", "https://example.com", 30*time.Minute)
		assert.NoError(t, err)

		delete(store.analytics.entries, "code1")

		link, err := store.ResolveLink(context.TODO(), "code1", models.ClickEvent{})

		assert.Error(t, err)
		assert.ErrorIs(t, err, storage.ErrAnalyticsMissing)
		assert.Nil(t, link)
		assert.Zero(t, store.links["code1"].ClickCount)
	})
}

func TestStore_LinkStats(t *testing.T) {
	t.Run("link not found", func(t *testing.T) {
		store, _ := setupStore(t)

		stats, err := store.LinkStats(context.TODO(), "missing")

		assert.Error(t, err)
		assert.ErrorIs(t, err, storage.ErrLinkNotFound)
		assert.Nil(t, stats)
	})

	t.Run("expired link keeps serving stats", func(t *testing.T) {
		store, clock := setupStore(t)

		_, err := store.CreateLink(context.TODO(), "code1", "https://example.com", time.Minute)
		assert.NoError(t, err)

		_, err = store.ResolveLink(context.TODO(), "code1", models.ClickEvent{UserAgent: "curl/8.6.0"})
		assert.NoError(t, err)

		clock.Advance(2 * time.Minute)

		stats, err := store.LinkStats(context.TODO(), "code1")

		assert.NoError(t, err)
		assert.NotNil(t, stats)
		assert.Equal(t, int64(1), stats.TotalClicks)
		assert.Equal(t, "https://example.com", stats.OriginalURL)
		assert.Equal(t, baseTime, stats.CreatedAt)
		assert.Equal(t, baseTime.Add(time.Minute), stats.ExpiresAt)
	})

	t.Run("snapshot is not affected by later clicks", func(t *testing.T) {
		store, _ := setupStore(t)

		_, err := store.CreateLink(context.TODO(), "code1", "https://example.com", 30*time.Minute)
		assert.NoError(t, err)

		_, err = store.ResolveLink(context.TODO(), "code1", models.ClickEvent{})
		assert.NoError(t, err)

		stats, err := store.LinkStats(context.TODO(), "code1")
		assert.NoError(t, err)
		assert.Len(t, stats.Clicks, 1)

		_, err = store.ResolveLink(context.TODO(), "code1", models.ClickEvent{})
		assert.NoError(t, err)

		assert.Len(t, stats.Clicks, 1)
		assert.Equal(t, int64(1), stats.TotalClicks)
	})

	t.Run("analytics entry missing for a registered code", func(t *testing.T) {
		store, _ := setupStore(t)

		_, err := store.CreateLink(context.TODO(), "code1", "https://example.com", 30*time.Minute)
		assert.NoError(t, err)

		delete(store.analytics.entries, "code1")

		stats, err := store.LinkStats(context.TODO(), "code1")

		assert.Error(t, err)
		assert.ErrorIs(t, err, storage.ErrAnalyticsMissing)
		assert.Nil(t, stats)
	})
}

func TestStore_ConcurrentResolves(t *testing.T) {
	store, _ := setupStore(t)

	_, err := store.CreateLink(context.TODO(), "code1", "https://example.com", 30*time.Minute)
	assert.NoError(t, err)

	const clicks = 100

	var g errgroup.Group
	for i := 0; i < clicks; i++ {
		g.Go(func() error {
			_, err := store.ResolveLink(context.TODO(), "code1", models.ClickEvent{UserAgent: "curl/8.6.0"})
			return err
		})
	}
	assert.NoError(t, g.Wait())

	stats, err := store.LinkStats(context.TODO(), "code1")

	assert.NoError(t, err)
	assert.NotNil(t, stats)
	assert.Equal(t, int64(clicks), stats.TotalClicks)
	assert.Len(t, stats.Clicks, clicks)

	link, err := store.ResolveLink(context.TODO(), "code1", models.ClickEvent{})

	assert.NoError(t, err)
	assert.NotNil(t, link)
	assert.Equal(t, int64(clicks+1), link.ClickCount)
}

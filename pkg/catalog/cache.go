// Package catalog flattens the remote category→product hierarchy into a
// single, stably-ordered list and serves filtered, paginated slices of it.
//
// The list is fetched once per session, shuffled once, and memoized.
// Re-shuffling per request would break pagination continuity (items
// reappearing or vanishing across pages), so every later call — whatever
// its filter or offset — slices the same permuted snapshot.
package catalog

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/shashiranjanraj/kankarej/app/models"
	"github.com/shashiranjanraj/kankarej/pkg/collection"
	"github.com/shashiranjanraj/kankarej/pkg/feed"
	"github.com/shashiranjanraj/kankarej/pkg/logger"
	"github.com/shashiranjanraj/kankarej/pkg/metrics"
)

// Fetcher is the slice of the feed client the cache needs.
type Fetcher interface {
	FetchOnce(ctx context.Context, path string) (feed.Snapshot, error)
}

// Cache owns the memoized product and category snapshots.
type Cache struct {
	fetcher Fetcher
	log     *slog.Logger
	rng     *rand.Rand

	mu         sync.RWMutex
	products   []models.Product  // nil until the first fill
	categories []models.Category // nil until the first fill

	// flight collapses concurrent first-callers onto one fetch, so the
	// fill cannot be entered twice before the first completes.
	flight singleflight.Group
}

// New returns a Cache reading through fetcher.
func New(fetcher Fetcher) *Cache {
	return NewWithRand(fetcher, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithRand pins the shuffle source; tests use it to fix the permutation.
func NewWithRand(fetcher Fetcher, rng *rand.Rand) *Cache {
	return &Cache{
		fetcher: fetcher,
		log:     logger.For("catalog"),
		rng:     rng,
	}
}

// LoadCategories fetches the category list once and memoizes it.
// Fetch failures (including feed.ErrFetchTimeout) propagate to the
// caller; there is no internal retry.
func (c *Cache) LoadCategories(ctx context.Context) ([]models.Category, error) {
	c.mu.RLock()
	if c.categories != nil {
		cached := c.categories
		c.mu.RUnlock()
		return cached, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.flight.Do("categories", func() (any, error) {
		c.mu.RLock()
		if c.categories != nil {
			cached := c.categories
			c.mu.RUnlock()
			return cached, nil
		}
		c.mu.RUnlock()

		snap, err := c.fetcher.FetchOnce(ctx, "categories")
		if err != nil {
			return nil, err
		}

		var cats []models.Category
		for _, child := range snap.Children() {
			var cat models.Category
			if err := child.Decode(&cat); err != nil {
				c.log.Warn("skipping malformed category", "key", child.Key, "err", err)
				continue
			}
			cats = append(cats, cat)
		}

		c.mu.Lock()
		c.categories = cats
		c.mu.Unlock()
		c.log.Debug("categories filled", "count", len(cats))
		return cats, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Category), nil
}

// LoadProductsPage serves the [offset, offset+limit) slice of the memoized
// snapshot, optionally narrowed first to one category (case-insensitive).
// The first call fetches the whole nested tree, flattens it category by
// category, applies a single random permutation, and memoizes the result.
// An offset past the end of the (filtered) list yields an empty page, not
// an error. Filtering is recomputed per call and never memoized per value.
func (c *Cache) LoadProductsPage(ctx context.Context, offset, limit int, categoryFilter string) ([]models.Product, error) {
	all, err := c.ensureProducts(ctx)
	if err != nil {
		return nil, err
	}

	filtered := all
	if categoryFilter != "" {
		filtered = collection.Filter(all, func(p models.Product) bool {
			return strings.EqualFold(p.Category, categoryFilter)
		})
	}

	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || offset >= len(filtered) {
		return []models.Product{}, nil
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}

	metrics.CatalogPages.Inc()
	page := make([]models.Product, end-offset)
	copy(page, filtered[offset:end])
	return page, nil
}

// FindByName scans the memoized snapshot for an exact name match.
// It deliberately never fetches: before any page load the snapshot is
// empty and the lookup misses even when the product exists remotely.
// That coupling matches the app it serves; see Products to pre-check.
func (c *Cache) FindByName(name string) (models.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return collection.First(c.products, func(p models.Product) bool {
		return p.Name == name
	})
}

// Search returns every product whose name contains query
// (case-insensitive), in snapshot order. An empty snapshot is populated
// first via a minimal page load, so search works from a cold start.
func (c *Cache) Search(ctx context.Context, query string) ([]models.Product, error) {
	c.mu.RLock()
	empty := c.products == nil
	c.mu.RUnlock()
	if empty {
		if _, err := c.LoadProductsPage(ctx, 0, 1, ""); err != nil {
			return nil, err
		}
	}

	q := strings.ToLower(query)
	c.mu.RLock()
	defer c.mu.RUnlock()
	return collection.Filter(c.products, func(p models.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), q)
	}), nil
}

// Products returns the memoized snapshot as-is (possibly nil) without
// triggering a fetch. The game engine polls this for its pool.
func (c *Cache) Products() []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.products
}

// Invalidate drops both memos. The next load fetches and re-shuffles,
// starting a fresh session ordering.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.products = nil
	c.categories = nil
	c.mu.Unlock()
}

func (c *Cache) ensureProducts(ctx context.Context) ([]models.Product, error) {
	c.mu.RLock()
	if c.products != nil {
		cached := c.products
		c.mu.RUnlock()
		return cached, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.flight.Do("products", func() (any, error) {
		c.mu.RLock()
		if c.products != nil {
			cached := c.products
			c.mu.RUnlock()
			return cached, nil
		}
		c.mu.RUnlock()

		snap, err := c.fetcher.FetchOnce(ctx, "products")
		if err != nil {
			return nil, err
		}

		flat := Flatten(snap)
		shuffled := collection.Shuffle(flat, c.rng)

		c.mu.Lock()
		c.products = shuffled
		c.mu.Unlock()

		metrics.CatalogFills.Inc()
		c.log.Debug("product snapshot filled", "count", len(shuffled))
		return shuffled, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Product), nil
}

// Flatten walks a products snapshot category→product and collects every
// record in deterministic key order, skipping nodes that do not decode.
func Flatten(snap feed.Snapshot) []models.Product {
	log := logger.For("catalog")
	var out []models.Product
	for _, catSnap := range snap.Children() {
		for _, prodSnap := range catSnap.Children() {
			var p models.Product
			if err := prodSnap.Decode(&p); err != nil {
				log.Warn("skipping malformed product", "category", catSnap.Key, "key", prodSnap.Key, "err", err)
				continue
			}
			out = append(out, p)
		}
	}
	return out
}

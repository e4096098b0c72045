// Package loader fetches the remote collections a screen needs. Failed
// collections degrade to empty ones; an expired session is the only error
// that stops a load.
package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/spesa/internal/catalog"
	"github.com/angelmondragon/spesa/internal/session"
	pkgerrors "github.com/angelmondragon/spesa/pkg/errors"
	"github.com/angelmondragon/spesa/pkg/logger"
)

// API is the read side of the REST client.
type API interface {
	Products(ctx context.Context) ([]catalog.Product, error)
	Supermarkets(ctx context.Context) ([]catalog.Supermarket, error)
	Cart(ctx context.Context) ([]catalog.CartItem, error)
	Favorites(ctx context.Context) ([]int64, error)
	Recipes(ctx context.Context, ownerID int64) ([]catalog.Recipe, error)
}

// PartialError lists the collections that failed and were replaced by empty
// ones.
type PartialError struct {
	Err error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("some data could not be loaded: %v", e.Err)
}

func (e *PartialError) Unwrap() error { return e.Err }

// IsPartial reports whether err only signals degraded collections.
func IsPartial(err error) bool {
	var p *PartialError
	return errors.As(err, &p)
}

type Loader struct {
	api       API
	favorites session.FavoritesCache
	logg      *logger.Logger
}

type Option func(*Loader)

func WithFavoritesCache(cache session.FavoritesCache) Option {
	return func(l *Loader) { l.favorites = cache }
}

func WithLogger(logg *logger.Logger) Option {
	return func(l *Loader) {
		if logg != nil {
			l.logg = logg
		}
	}
}

func New(api API, opts ...Option) *Loader {
	l := &Loader{api: api, logg: logger.Nop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Data is everything the product and cart screens start from.
type Data struct {
	Snapshot  catalog.Snapshot
	Rows      []catalog.CartRow
	Orphans   []catalog.CartItem
	Favorites catalog.IDSet
}

// LoadCatalog fetches products and supermarkets concurrently.
func (l *Loader) LoadCatalog(ctx context.Context) (catalog.Snapshot, error) {
	var (
		products     []catalog.Product
		supermarkets []catalog.Supermarket
		degraded     collector
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = l.api.Products(gctx)
		return l.settle(gctx, "products", err, &degraded)
	})
	g.Go(func() error {
		var err error
		supermarkets, err = l.api.Supermarkets(gctx)
		return l.settle(gctx, "supermarkets", err, &degraded)
	})
	if err := g.Wait(); err != nil {
		return catalog.Snapshot{}, err
	}
	return catalog.NewSnapshot(products, supermarkets), degraded.partial()
}

// LoadCart joins the cart against snap. Call it after LoadCatalog: rows are
// resolved through the snapshot lookups. Rows whose product is missing are
// skipped and logged.
func (l *Loader) LoadCart(ctx context.Context, snap catalog.Snapshot) ([]catalog.CartRow, []catalog.CartItem, error) {
	var degraded collector
	items, err := l.api.Cart(ctx)
	if err := l.settle(ctx, "cart", err, &degraded); err != nil {
		return nil, nil, err
	}
	rows, orphans := snap.Join(items)
	for _, o := range orphans {
		l.logg.Warn(l.logg.WithFields(ctx, map[string]any{
			"cart_item_id": o.ID,
			"product_id":   o.ProductID,
		}), "skipping cart row with unknown product")
	}
	return rows, orphans, degraded.partial()
}

// LoadFavorites returns the server favorite set and refreshes the cache. When
// the server call fails the cached set for userID is used instead.
func (l *Loader) LoadFavorites(ctx context.Context, userID int64) (catalog.IDSet, error) {
	ids, err := l.api.Favorites(ctx)
	if err == nil {
		if l.favorites != nil && userID > 0 {
			if cerr := l.favorites.Store(ctx, userID, ids); cerr != nil {
				l.logg.Warn(l.logg.WithFields(ctx, pkgerrors.Dump(cerr).Fields()), "favorites cache not refreshed")
			}
		}
		return catalog.NewIDSet(ids...), nil
	}
	if pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
		return nil, err
	}

	var degraded collector
	_ = l.settle(ctx, "favorites", err, &degraded)
	if l.favorites != nil && userID > 0 {
		cached, ok, cerr := l.favorites.Load(ctx, userID)
		switch {
		case cerr != nil:
			degraded.add(fmt.Errorf("favorites cache: %w", cerr))
		case ok:
			l.logg.Info(l.logg.WithField(ctx, "count", len(cached)), "favorites seeded from cache")
			return catalog.NewIDSet(cached...), degraded.partial()
		}
	}
	return catalog.NewIDSet(), degraded.partial()
}

// LoadAll loads the catalog, then the cart and the favorites concurrently.
func (l *Loader) LoadAll(ctx context.Context, userID int64) (Data, error) {
	var degraded collector
	snap, err := l.LoadCatalog(ctx)
	if err := degraded.merge(err); err != nil {
		return Data{}, err
	}

	data := Data{Snapshot: snap}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, orphans, err := l.LoadCart(gctx, snap)
		data.Rows, data.Orphans = rows, orphans
		return degraded.merge(err)
	})
	g.Go(func() error {
		favs, err := l.LoadFavorites(gctx, userID)
		data.Favorites = favs
		return degraded.merge(err)
	})
	if err := g.Wait(); err != nil {
		return Data{}, err
	}
	if data.Favorites == nil {
		data.Favorites = catalog.NewIDSet()
	}
	return data, degraded.partial()
}

// LoadRecipes returns the recipes of ownerID, empty on failure.
func (l *Loader) LoadRecipes(ctx context.Context, ownerID int64) ([]catalog.Recipe, error) {
	var degraded collector
	recipes, err := l.api.Recipes(ctx, ownerID)
	if err := l.settle(ctx, "recipes", err, &degraded); err != nil {
		return nil, err
	}
	if recipes == nil {
		recipes = []catalog.Recipe{}
	}
	return recipes, degraded.partial()
}

// settle logs a failed fetch and records it in degraded. Only an expired
// session is returned.
func (l *Loader) settle(ctx context.Context, collection string, err error, degraded *collector) error {
	if err == nil {
		return nil
	}
	if pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
		return err
	}
	fields := pkgerrors.Dump(err).Fields()
	fields["collection"] = collection
	l.logg.Warn(l.logg.WithFields(ctx, fields), "collection load failed, using empty set")
	degraded.add(fmt.Errorf("%s: %w", collection, err))
	return nil
}

// collector accumulates degraded collections across goroutines.
type collector struct {
	mu  sync.Mutex
	err error
}

func (c *collector) add(err error) {
	c.mu.Lock()
	c.err = multierr.Append(c.err, err)
	c.mu.Unlock()
}

// merge absorbs a partial error and passes any other error through.
func (c *collector) merge(err error) error {
	var p *PartialError
	if errors.As(err, &p) {
		c.add(p.Err)
		return nil
	}
	return err
}

func (c *collector) partial() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		return nil
	}
	return &PartialError{Err: c.err}
}

package session

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/angelmondragon/spesa/pkg/config"
	"github.com/angelmondragon/spesa/pkg/db"
	"github.com/angelmondragon/spesa/pkg/logger"
	"github.com/angelmondragon/spesa/pkg/migrate"
	"github.com/angelmondragon/spesa/pkg/redis"
)

// Backend bundles the token store and the optional favorites cache of the
// configured driver.
type Backend struct {
	Tokens    Store
	Favorites FavoritesCache

	closers []func() error
}

// Open connects the session driver selected by cfg.Session.Driver.
func Open(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*Backend, error) {
	if cfg.Session.UsesRedis() {
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, fmt.Errorf("connecting session redis: %w", err)
		}
		b := &Backend{
			Tokens:  NewRedisStore(client, DefaultProfile),
			closers: []func() error{client.Close},
		}
		if cfg.Session.FavoritesCache {
			b.Favorites = NewRedisFavorites(client, cfg.Session.FavoritesCacheTTL)
		}
		return b, nil
	}

	client, err := db.New(ctx, cfg.Session, logg)
	if err != nil {
		return nil, err
	}
	if err := migrate.MaybeRun(ctx, cfg, logg, client); err != nil {
		return nil, multierr.Append(err, client.Close())
	}
	b := &Backend{
		Tokens:  NewSQLStore(client.DB(), DefaultProfile),
		closers: []func() error{client.Close},
	}
	if cfg.Session.FavoritesCache {
		b.Favorites = NewSQLFavorites(client, cfg.Session.FavoritesCacheTTL)
	}
	return b, nil
}

// Close releases every connection the backend opened.
func (b *Backend) Close() error {
	var err error
	for _, closeFn := range b.closers {
		err = multierr.Append(err, closeFn())
	}
	return err
}

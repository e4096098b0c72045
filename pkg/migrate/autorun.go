package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/spesa/pkg/config"
	"github.com/angelmondragon/spesa/pkg/db"
	"github.com/angelmondragon/spesa/pkg/logger"
)

// MaybeRun brings the local session database up to date when the sqlite
// driver is active and auto-migration is enabled.
func MaybeRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if cfg.Session.UsesRedis() || !cfg.Session.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	SetLogger(ctx, logg)
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "path": cfg.Session.Path})
	logg.Debug(ctx, "running session migrations")

	if err := Run(ctx, sqlDB, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Debug(ctx, "session migrations completed")
	return nil
}

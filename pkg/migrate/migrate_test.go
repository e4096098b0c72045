package migrate_test

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/spesa/pkg/config"
	"github.com/angelmondragon/spesa/pkg/db"
	"github.com/angelmondragon/spesa/pkg/logger"
	"github.com/angelmondragon/spesa/pkg/migrate"
)

func openSessionDB(t *testing.T) *db.Client {
	t.Helper()
	client, err := db.New(context.Background(), config.SessionConfig{Path: filepath.Join(t.TempDir(), "spesa.db")}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func tableExists(t *testing.T, client *db.Client, name string) bool {
	t.Helper()
	var count int64
	require.NoError(t, client.DB().
		Raw("SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).
		Scan(&count).Error)
	return count == 1
}

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	require.NoError(t, migrate.Validate())
}

func TestValidateFSRejectsBadFiles(t *testing.T) {
	bad := fstest.MapFS{
		"m/1_bad.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
	}
	assert.Error(t, migrate.ValidateFS(bad, "m"))

	noDown := fstest.MapFS{
		"m/20260101000000_x.sql": {Data: []byte("-- +goose Up\nSELECT 1;\n")},
	}
	assert.Error(t, migrate.ValidateFS(noDown, "m"))

	empty := fstest.MapFS{"m/readme.txt": {Data: []byte("hi")}}
	assert.Error(t, migrate.ValidateFS(empty, "m"))
}

func TestMaybeRunCreatesSessionTables(t *testing.T) {
	client := openSessionDB(t)
	cfg := &config.Config{Session: config.SessionConfig{Driver: config.SessionDriverSQLite, AutoMigrate: true}}

	require.NoError(t, migrate.MaybeRun(context.Background(), cfg, logger.Nop(), client))
	assert.True(t, tableExists(t, client, "sessions"))
	assert.True(t, tableExists(t, client, "favorites_cache"))

	// second run is a no-op
	require.NoError(t, migrate.MaybeRun(context.Background(), cfg, logger.Nop(), client))
}

func TestMaybeRunSkipsWhenDisabled(t *testing.T) {
	client := openSessionDB(t)
	cfg := &config.Config{Session: config.SessionConfig{Driver: config.SessionDriverSQLite}}

	require.NoError(t, migrate.MaybeRun(context.Background(), cfg, logger.Nop(), client))
	assert.False(t, tableExists(t, client, "sessions"))
}

func TestMigrateToVersionDownAndUp(t *testing.T) {
	client := openSessionDB(t)
	sqlDB, err := client.DB().DB()
	require.NoError(t, err)
	ctx := context.Background()
	migrate.SetLogger(ctx, nil)

	require.NoError(t, migrate.Run(ctx, sqlDB, "up"))
	version, err := migrate.Version(ctx, sqlDB)
	require.NoError(t, err)
	assert.Equal(t, int64(20261002090500), version)

	require.NoError(t, migrate.MigrateToVersion(ctx, sqlDB, "20261002090000"))
	assert.True(t, tableExists(t, client, "sessions"))
	assert.False(t, tableExists(t, client, "favorites_cache"))

	require.NoError(t, migrate.MigrateToVersion(ctx, sqlDB, "20261002090500"))
	assert.True(t, tableExists(t, client, "favorites_cache"))

	assert.Error(t, migrate.MigrateToVersion(ctx, sqlDB, "latest"))
}

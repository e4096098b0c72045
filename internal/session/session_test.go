package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/spesa/pkg/auth"
	"github.com/angelmondragon/spesa/pkg/config"
	"github.com/angelmondragon/spesa/pkg/logger"
)

func openBackend(t *testing.T) *Backend {
	t.Helper()
	cfg := &config.Config{Session: config.SessionConfig{
		Driver:            config.SessionDriverSQLite,
		Path:              filepath.Join(t.TempDir(), "spesa.db"),
		AutoMigrate:       true,
		FavoritesCache:    true,
		FavoritesCacheTTL: time.Hour,
	}}
	b, err := Open(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func mintToken(t *testing.T, now time.Time, userID int64) string {
	t.Helper()
	token, err := auth.MintAccessToken(config.JWTConfig{Secret: "s", ExpirationMinutes: 30}, now, auth.AccessTokenPayload{
		UserID: userID, Username: "mario", Role: auth.RoleUser,
	})
	require.NoError(t, err)
	return token
}

func TestSQLStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := openBackend(t).Tokens

	token, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	first := mintToken(t, time.Now(), 3)
	require.NoError(t, store.Save(ctx, first))
	token, err = store.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, token)

	second := mintToken(t, time.Now().Add(time.Second), 3)
	require.NoError(t, store.Save(ctx, second))
	token, err = store.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, token, "save must overwrite the previous token")

	claims, err := CurrentClaims(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, int64(3), claims.UserID)

	require.NoError(t, store.Clear(ctx))
	token, err = store.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	claims, err = CurrentClaims(ctx, store)
	require.NoError(t, err)
	assert.Nil(t, claims)
}

func TestSQLStoreDropsExpiredToken(t *testing.T) {
	ctx := context.Background()
	store := openBackend(t).Tokens.(*SQLStore)

	require.NoError(t, store.Save(ctx, mintToken(t, time.Now(), 1)))
	store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	token, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	store.now = time.Now
	token, err = store.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token, "expired token should have been deleted")
}

func TestSQLStoreRejectsEmptyToken(t *testing.T) {
	assert.Error(t, openBackend(t).Tokens.Save(context.Background(), " "))
}

func TestSQLFavoritesRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := openBackend(t).Favorites.(*SQLFavorites)

	_, ok, err := cache.Load(ctx, 9)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Store(ctx, 9, []int64{5, 2, 5}))
	ids, ok, err := cache.Load(ctx, 9)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []int64{2, 5}, ids)

	require.NoError(t, cache.Store(ctx, 9, []int64{7}))
	ids, _, err = cache.Load(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, ids)

	_, ok, err = cache.Load(ctx, 10)
	require.NoError(t, err)
	assert.False(t, ok, "cache is per user")

	cache.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, ok, err = cache.Load(ctx, 9)
	require.NoError(t, err)
	assert.False(t, ok, "stale entries are ignored")
}

type memoryKV struct {
	tokens    map[string]string
	ttls      map[string]time.Duration
	favorites map[int64][]int64
	favTTL    time.Duration
	fail      error
}

func newMemoryKV() *memoryKV {
	return &memoryKV{tokens: map[string]string{}, ttls: map[string]time.Duration{}, favorites: map[int64][]int64{}}
}

func (m *memoryKV) Token(_ context.Context, profile string) (string, error) {
	return m.tokens[profile], m.fail
}

func (m *memoryKV) SaveToken(_ context.Context, profile, token string, ttl time.Duration) error {
	m.tokens[profile] = token
	m.ttls[profile] = ttl
	return m.fail
}

func (m *memoryKV) DropToken(_ context.Context, profile string) error {
	delete(m.tokens, profile)
	return m.fail
}

func (m *memoryKV) Favorites(_ context.Context, userID int64) ([]int64, bool, error) {
	ids, ok := m.favorites[userID]
	return ids, ok, m.fail
}

func (m *memoryKV) ReplaceFavorites(_ context.Context, userID int64, ids []int64, ttl time.Duration) error {
	m.favorites[userID] = append([]int64{}, ids...)
	m.favTTL = ttl
	return m.fail
}

func TestRedisStoreUsesTokenExpiryAsTTL(t *testing.T) {
	ctx := context.Background()
	kv := newMemoryKV()
	now := time.Now()
	store := &RedisStore{kv: kv, profile: DefaultProfile, now: func() time.Time { return now }}

	token, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	minted := mintToken(t, now, 4)
	require.NoError(t, store.Save(ctx, minted))
	assert.InDelta(t, (30 * time.Minute).Seconds(), kv.ttls[DefaultProfile].Seconds(), 1)

	token, err = store.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, minted, token)

	require.NoError(t, store.Clear(ctx))
	token, err = store.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	store.now = func() time.Time { return now.Add(time.Hour) }
	assert.Error(t, store.Save(ctx, minted))
}

func TestRedisFavorites(t *testing.T) {
	ctx := context.Background()
	kv := newMemoryKV()
	cache := &RedisFavorites{kv: kv, ttl: time.Minute}

	_, ok, err := cache.Load(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Store(ctx, 1, []int64{3, 4}))
	assert.Equal(t, time.Minute, kv.favTTL)

	ids, ok, err := cache.Load(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []int64{3, 4}, ids)

	kv.fail = errors.New("connection refused")
	_, _, err = cache.Load(ctx, 1)
	assert.ErrorContains(t, err, "reading favorites cache")
}

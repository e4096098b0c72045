package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/spesa/pkg/config"
	"github.com/angelmondragon/spesa/pkg/logger"
)

const (
	keyNamespace    = "spesa"
	sessionPrefix   = "session"
	favoritesPrefix = "favorites"

	// presentMember keeps an empty favorites set distinguishable from a
	// missing one. Product ids are always positive.
	presentMember = "0"
)

var errNotInitialized = errors.New("redis client not initialized")

type cmdable interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	SAdd(ctx context.Context, key string, members ...any) *redis.IntCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// Client stores the client's bearer token per profile and a cached copy of
// each user's favorite product ids.
type Client struct {
	store cmdable
	raw   *redis.Client
}

// New connects with the configured pool and timeouts and pings the server.
func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "redis_addr", opts.Addr), "redis connection established")
	}
	return &Client{store: raw, raw: raw}, nil
}

func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	var opts *redis.Options
	switch {
	case cfg.URL != "":
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	case cfg.Address != "":
		opts = &redis.Options{Addr: cfg.Address, Password: cfg.Password, DB: cfg.DB}
	default:
		return nil, errors.New("redis url or address is required")
	}

	if opts.DB == 0 {
		opts.DB = cfg.DB
	}
	opts.PoolSize = orConfig(opts.PoolSize, cfg.PoolSize)
	opts.MinIdleConns = orConfig(opts.MinIdleConns, cfg.MinIdleConns)
	opts.DialTimeout = orConfig(opts.DialTimeout, cfg.DialTimeout)
	opts.ReadTimeout = orConfig(opts.ReadTimeout, cfg.ReadTimeout)
	opts.WriteTimeout = orConfig(opts.WriteTimeout, cfg.WriteTimeout)
	return opts, nil
}

// orConfig keeps a value set by the URL and falls back to the config otherwise.
func orConfig[T comparable](fromURL, fromConfig T) T {
	var zero T
	if fromURL != zero {
		return fromURL
	}
	return fromConfig
}

// Token returns the token saved for profile, or "" when there is none.
func (c *Client) Token(ctx context.Context, profile string) (string, error) {
	if c.store == nil {
		return "", errNotInitialized
	}
	token, err := c.store.Get(ctx, sessionKey(profile)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return token, err
}

// SaveToken stores token for profile. A positive ttl makes the key expire
// together with the token.
func (c *Client) SaveToken(ctx context.Context, profile, token string, ttl time.Duration) error {
	if c.store == nil {
		return errNotInitialized
	}
	return c.store.Set(ctx, sessionKey(profile), token, ttl).Err()
}

func (c *Client) DropToken(ctx context.Context, profile string) error {
	if c.store == nil {
		return errNotInitialized
	}
	return c.store.Del(ctx, sessionKey(profile)).Err()
}

// Favorites reads the cached favorite ids of userID in ascending order. ok
// is false when nothing is cached or the entry expired.
func (c *Client) Favorites(ctx context.Context, userID int64) (ids []int64, ok bool, err error) {
	if c.store == nil {
		return nil, false, errNotInitialized
	}
	members, err := c.store.SMembers(ctx, favoritesKey(userID)).Result()
	if err != nil {
		return nil, false, err
	}
	if len(members) == 0 {
		return nil, false, nil
	}
	ids = make([]int64, 0, len(members))
	for _, m := range members {
		if m == presentMember {
			continue
		}
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, false, fmt.Errorf("favorites member %q: %w", m, err)
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, true, nil
}

// ReplaceFavorites overwrites the cached set of userID. The three commands
// are not atomic.
func (c *Client) ReplaceFavorites(ctx context.Context, userID int64, ids []int64, ttl time.Duration) error {
	if c.store == nil {
		return errNotInitialized
	}
	key := favoritesKey(userID)
	if err := c.store.Del(ctx, key).Err(); err != nil {
		return err
	}
	members := make([]any, 0, len(ids)+1)
	members = append(members, presentMember)
	for _, id := range ids {
		members = append(members, strconv.FormatInt(id, 10))
	}
	if err := c.store.SAdd(ctx, key, members...).Err(); err != nil {
		return err
	}
	if ttl > 0 {
		return c.store.Expire(ctx, key, ttl).Err()
	}
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	if c.store == nil {
		return errNotInitialized
	}
	return c.store.Ping(ctx).Err()
}

func (c *Client) Close() error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

func sessionKey(profile string) string {
	return buildKey(sessionPrefix, profile)
}

func favoritesKey(userID int64) string {
	return buildKey(favoritesPrefix, strconv.FormatInt(userID, 10))
}

func buildKey(parts ...string) string {
	clean := []string{keyNamespace}
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			clean = append(clean, part)
		}
	}
	return strings.Join(clean, ":")
}

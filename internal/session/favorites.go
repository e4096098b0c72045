package session

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/spesa/pkg/db"
	"github.com/angelmondragon/spesa/pkg/redis"
)

// FavoritesCache remembers the last favorite set fetched from the server. It
// only seeds the set when the server cannot be reached.
type FavoritesCache interface {
	Load(ctx context.Context, userID int64) ([]int64, bool, error)
	Store(ctx context.Context, userID int64, ids []int64) error
}

type favoriteRecord struct {
	UserID    int64 `gorm:"primaryKey"`
	ProductID int64 `gorm:"primaryKey"`
	CachedAt  time.Time
}

func (favoriteRecord) TableName() string { return "favorites_cache" }

type SQLFavorites struct {
	client *db.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewSQLFavorites(client *db.Client, ttl time.Duration) *SQLFavorites {
	return &SQLFavorites{client: client, ttl: ttl, now: time.Now}
}

// Load returns the cached ids. ok is false when nothing fresh is cached.
func (c *SQLFavorites) Load(ctx context.Context, userID int64) ([]int64, bool, error) {
	q := c.client.DB().WithContext(ctx).Model(&favoriteRecord{}).Where("user_id = ?", userID)
	if c.ttl > 0 {
		q = q.Where("cached_at > ?", c.now().UTC().Add(-c.ttl))
	}
	var records []favoriteRecord
	if err := q.Order("product_id").Find(&records).Error; err != nil {
		return nil, false, fmt.Errorf("reading favorites cache: %w", err)
	}
	if len(records) == 0 {
		return nil, false, nil
	}
	ids := make([]int64, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ProductID)
	}
	return ids, true, nil
}

// Store replaces the cached set for userID.
func (c *SQLFavorites) Store(ctx context.Context, userID int64, ids []int64) error {
	now := c.now().UTC()
	return c.client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&favoriteRecord{}).Error; err != nil {
			return fmt.Errorf("clearing favorites cache: %w", err)
		}
		if len(ids) == 0 {
			return nil
		}
		records := make([]favoriteRecord, 0, len(ids))
		seen := make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			records = append(records, favoriteRecord{UserID: userID, ProductID: id, CachedAt: now})
		}
		if err := tx.Create(&records).Error; err != nil {
			return fmt.Errorf("writing favorites cache: %w", err)
		}
		return nil
	})
}

type favoritesKV interface {
	Favorites(ctx context.Context, userID int64) ([]int64, bool, error)
	ReplaceFavorites(ctx context.Context, userID int64, ids []int64, ttl time.Duration) error
}

// RedisFavorites keeps each user's favorites as a redis set that expires
// after ttl.
type RedisFavorites struct {
	kv  favoritesKV
	ttl time.Duration
}

func NewRedisFavorites(client *redis.Client, ttl time.Duration) *RedisFavorites {
	return &RedisFavorites{kv: client, ttl: ttl}
}

func (c *RedisFavorites) Load(ctx context.Context, userID int64) ([]int64, bool, error) {
	ids, ok, err := c.kv.Favorites(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("reading favorites cache: %w", err)
	}
	return ids, ok, nil
}

func (c *RedisFavorites) Store(ctx context.Context, userID int64, ids []int64) error {
	if err := c.kv.ReplaceFavorites(ctx, userID, ids, c.ttl); err != nil {
		return fmt.Errorf("writing favorites cache: %w", err)
	}
	return nil
}

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/spesa/pkg/auth"
	"github.com/angelmondragon/spesa/pkg/redis"
)

// DefaultProfile names the token slot used when a single account is logged in.
const DefaultProfile = "default"

// Store keeps the bearer token between runs. It satisfies apiclient.TokenSource.
type Store interface {
	Token(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

type sessionRecord struct {
	Profile     string `gorm:"primaryKey"`
	AccessToken string
	UserID      *int64
	ExpiresAt   *time.Time
	UpdatedAt   time.Time
}

func (sessionRecord) TableName() string { return "sessions" }

// SQLStore persists the token in the local sqlite database.
type SQLStore struct {
	db      *gorm.DB
	profile string
	now     func() time.Time
}

func NewSQLStore(db *gorm.DB, profile string) *SQLStore {
	if strings.TrimSpace(profile) == "" {
		profile = DefaultProfile
	}
	return &SQLStore{db: db, profile: profile, now: time.Now}
}

// Token returns the stored token, or "" when none is stored or it has expired.
// An expired token is removed.
func (s *SQLStore) Token(ctx context.Context) (string, error) {
	var rec sessionRecord
	err := s.db.WithContext(ctx).Where("profile = ?", s.profile).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading session: %w", err)
	}
	if rec.ExpiresAt != nil && !s.now().Before(*rec.ExpiresAt) {
		return "", s.Clear(ctx)
	}
	return rec.AccessToken, nil
}

func (s *SQLStore) Save(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("token is required")
	}
	rec := sessionRecord{Profile: s.profile, AccessToken: token, UpdatedAt: s.now().UTC()}
	if claims, err := auth.ReadClaims(token); err == nil {
		if claims.UserID > 0 {
			id := claims.UserID
			rec.UserID = &id
		}
		if claims.ExpiresAt != nil {
			exp := claims.ExpiresAt.Time.UTC()
			rec.ExpiresAt = &exp
		}
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func (s *SQLStore) Clear(ctx context.Context) error {
	err := s.db.WithContext(ctx).Where("profile = ?", s.profile).Delete(&sessionRecord{}).Error
	if err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

type tokenKV interface {
	Token(ctx context.Context, profile string) (string, error)
	SaveToken(ctx context.Context, profile, token string, ttl time.Duration) error
	DropToken(ctx context.Context, profile string) error
}

// RedisStore keeps the token in redis; the key expires with the token.
type RedisStore struct {
	kv      tokenKV
	profile string
	now     func() time.Time
}

func NewRedisStore(client *redis.Client, profile string) *RedisStore {
	if strings.TrimSpace(profile) == "" {
		profile = DefaultProfile
	}
	return &RedisStore{kv: client, profile: profile, now: time.Now}
}

func (s *RedisStore) Token(ctx context.Context) (string, error) {
	token, err := s.kv.Token(ctx, s.profile)
	if err != nil {
		return "", fmt.Errorf("reading session: %w", err)
	}
	return token, nil
}

func (s *RedisStore) Save(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("token is required")
	}
	var ttl time.Duration
	if claims, err := auth.ReadClaims(token); err == nil && claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Time.Sub(s.now())
		if ttl <= 0 {
			return fmt.Errorf("token already expired")
		}
	}
	if err := s.kv.SaveToken(ctx, s.profile, token, ttl); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.kv.DropToken(ctx, s.profile); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// CurrentClaims decodes the stored token. It returns nil claims when logged out.
func CurrentClaims(ctx context.Context, store Store) (*auth.AccessTokenClaims, error) {
	token, err := store.Token(ctx)
	if err != nil || token == "" {
		return nil, err
	}
	return auth.ReadClaims(token)
}

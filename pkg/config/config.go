package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	API      APIConfig
	Session  SessionConfig
	Redis    RedisConfig
	View     ViewConfig
	Metrics  MetricsConfig
	DevAPI   DevAPIConfig
	JWT      JWTConfig
	Password PasswordConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Session.validate(cfg.Redis); err != nil {
		return nil, err
	}
	if err := cfg.View.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SPESA_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"SPESA_LOG_LEVEL" default:"info"`
	LogFile      string `envconfig:"SPESA_LOG_FILE" default:"spesa.log"`
	LogFormat    string `envconfig:"SPESA_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"SPESA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// APIConfig points the client at the grocery REST backend.
type APIConfig struct {
	BaseURL string        `envconfig:"SPESA_API_BASE_URL" default:"http://localhost:8000"`
	Timeout time.Duration `envconfig:"SPESA_API_TIMEOUT" default:"10s"`
}

type SessionConfig struct {
	Driver            string        `envconfig:"SPESA_SESSION_DRIVER" default:"sqlite"`
	Path              string        `envconfig:"SPESA_SESSION_PATH" default:"spesa.db"`
	AutoMigrate       bool          `envconfig:"SPESA_SESSION_AUTO_MIGRATE" default:"true"`
	FavoritesCache    bool          `envconfig:"SPESA_FAVORITES_CACHE" default:"true"`
	FavoritesCacheTTL time.Duration `envconfig:"SPESA_FAVORITES_CACHE_TTL" default:"24h"`
}

func (s SessionConfig) UsesRedis() bool {
	return strings.EqualFold(s.Driver, SessionDriverRedis)
}

func (s SessionConfig) validate(redis RedisConfig) error {
	switch strings.ToLower(strings.TrimSpace(s.Driver)) {
	case SessionDriverSQLite:
		if strings.TrimSpace(s.Path) == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvSessionPath, EnvSessionDriver, SessionDriverSQLite)
		}
	case SessionDriverRedis:
		if redis.URL == "" && redis.Address == "" {
			return fmt.Errorf("either %s or %s is required when %s=%s", EnvRedisURL, EnvRedisAddr, EnvSessionDriver, SessionDriverRedis)
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvSessionDriver, s.Driver)
	}
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"SPESA_REDIS_URL"`
	Address      string        `envconfig:"SPESA_REDIS_ADDR"`
	Password     string        `envconfig:"SPESA_REDIS_PASSWORD"`
	DB           int           `envconfig:"SPESA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SPESA_REDIS_POOL_SIZE" default:"4"`
	MinIdleConns int           `envconfig:"SPESA_REDIS_MIN_IDLE_CONNS" default:"1"`
	DialTimeout  time.Duration `envconfig:"SPESA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SPESA_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"SPESA_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// ViewConfig holds the fixed row geometry of the product list. Heights are
// terminal rows and switch on the Breakpoint column count.
type ViewConfig struct {
	Breakpoint        int  `envconfig:"SPESA_VIEW_BREAKPOINT" default:"60"`
	ItemHeight        int  `envconfig:"SPESA_VIEW_ITEM_HEIGHT" default:"4"`
	ItemHeightCompact int  `envconfig:"SPESA_VIEW_ITEM_HEIGHT_COMPACT" default:"5"`
	Spacing           int  `envconfig:"SPESA_VIEW_SPACING" default:"0"`
	SpacingCompact    int  `envconfig:"SPESA_VIEW_SPACING_COMPACT" default:"1"`
	Buffer            int  `envconfig:"SPESA_VIEW_BUFFER" default:"10"`
	Virtualize        bool `envconfig:"SPESA_VIEW_VIRTUALIZE" default:"true"`
}

func (v ViewConfig) validate() error {
	if v.ItemHeight <= 0 || v.ItemHeightCompact <= 0 {
		return fmt.Errorf("%s and %s must be positive", EnvViewItemHeight, EnvViewItemHeightCompact)
	}
	if v.Spacing < 0 || v.SpacingCompact < 0 || v.Buffer < 0 {
		return fmt.Errorf("view spacing and buffer cannot be negative")
	}
	return nil
}

type MetricsConfig struct {
	Addr string `envconfig:"SPESA_METRICS_ADDR"`
}

func (m MetricsConfig) Enabled() bool {
	return strings.TrimSpace(m.Addr) != ""
}

type DevAPIConfig struct {
	Port string `envconfig:"SPESA_DEVAPI_PORT" default:"8000"`
	Seed bool   `envconfig:"SPESA_DEVAPI_SEED" default:"true"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SPESA_DEVAPI_JWT_SECRET" default:"spesa-dev-secret"`
	Issuer            string `envconfig:"SPESA_DEVAPI_JWT_ISSUER" default:"spesa-devapi"`
	ExpirationMinutes int    `envconfig:"SPESA_DEVAPI_JWT_EXPIRATION_MINUTES" default:"60"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SPESA_ARGON_MEMORY_KB" default:"19456"`
	ArgonTime        int `envconfig:"SPESA_ARGON_TIME" default:"2"`
	ArgonParallelism int `envconfig:"SPESA_ARGON_PARALLELISM" default:"1"`
	ArgonSaltLen     int `envconfig:"SPESA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SPESA_ARGON_KEY_LEN" default:"32"`
}

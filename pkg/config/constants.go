package config

const EnvPrefix = "SPESA"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	SessionDriverSQLite = "sqlite"
	SessionDriverRedis  = "redis"
)

const (
	EnvAppEnv                = "SPESA_APP_ENV"
	EnvLogLevel              = "SPESA_LOG_LEVEL"
	EnvLogFile               = "SPESA_LOG_FILE"
	EnvAPIBaseURL            = "SPESA_API_BASE_URL"
	EnvAPITimeout            = "SPESA_API_TIMEOUT"
	EnvSessionDriver         = "SPESA_SESSION_DRIVER"
	EnvSessionPath           = "SPESA_SESSION_PATH"
	EnvFavoritesCacheTTL     = "SPESA_FAVORITES_CACHE_TTL"
	EnvRedisURL              = "SPESA_REDIS_URL"
	EnvRedisAddr             = "SPESA_REDIS_ADDR"
	EnvViewBreakpoint        = "SPESA_VIEW_BREAKPOINT"
	EnvViewItemHeight        = "SPESA_VIEW_ITEM_HEIGHT"
	EnvViewItemHeightCompact = "SPESA_VIEW_ITEM_HEIGHT_COMPACT"
	EnvViewBuffer            = "SPESA_VIEW_BUFFER"
	EnvMetricsAddr           = "SPESA_METRICS_ADDR"
	EnvDevAPIPort            = "SPESA_DEVAPI_PORT"
	EnvDevAPIJWTSecret       = "SPESA_DEVAPI_JWT_SECRET"
)

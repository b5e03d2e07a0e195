package config

const EnvPrefix = "PHARMACY"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv     = "PHARMACY_APP_ENV"
	EnvPort       = "PHARMACY_APP_PORT"
	EnvLogLevel   = "PHARMACY_LOG_LEVEL"
	EnvDBDSN      = "PHARMACY_DB_DSN"
	EnvDBDriver   = "PHARMACY_DB_DRIVER"
	EnvDBHost     = "PHARMACY_DB_HOST"
	EnvDBPort     = "PHARMACY_DB_PORT"
	EnvDBUser     = "PHARMACY_DB_USER"
	EnvDBPassword = "PHARMACY_DB_PASSWORD"
	EnvDBName     = "PHARMACY_DB_NAME"
	EnvRedisURL   = "PHARMACY_REDIS_URL"
	EnvJWTSecret  = "PHARMACY_JWT_SECRET"
	EnvJWTIssuer  = "PHARMACY_JWT_ISSUER"
	EnvJWTExpMins = "PHARMACY_JWT_EXPIRATION_MINUTES"

	EnvTimezone           = "PHARMACY_TIMEZONE"
	EnvPickupOpenHour     = "PHARMACY_PICKUP_OPEN_HOUR"
	EnvPickupCloseHour    = "PHARMACY_PICKUP_CLOSE_HOUR"
	EnvExpiringWithinDays = "PHARMACY_EXPIRING_WITHIN_DAYS"
	EnvLowStockThreshold  = "PHARMACY_DEFAULT_LOW_STOCK_THRESHOLD"
	EnvAllowedOrigins     = "PHARMACY_HTTP_ALLOWED_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	HTTP         HTTPConfig
	FeatureFlags FeatureFlagsConfig
	Pharmacy     PharmacyConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Pharmacy.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PHARMACY_APP_ENV" required:"true"`
	Port         string `envconfig:"PHARMACY_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"PHARMACY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PHARMACY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PHARMACY_DB_DSN"`
	Driver string `envconfig:"PHARMACY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PHARMACY_DB_HOST"`
	LegacyPort     int    `envconfig:"PHARMACY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PHARMACY_DB_USER"`
	LegacyPassword string `envconfig:"PHARMACY_DB_PASSWORD"`
	LegacyName     string `envconfig:"PHARMACY_DB_NAME"`
	LegacySSLMode  string `envconfig:"PHARMACY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PHARMACY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PHARMACY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PHARMACY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PHARMACY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the sqlite driver is selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DriverSQLite)
}

// RedisConfig is optional; idempotency is disabled when neither URL nor Address is set.
type RedisConfig struct {
	URL          string        `envconfig:"PHARMACY_REDIS_URL"`
	Address      string        `envconfig:"PHARMACY_REDIS_ADDR"`
	Password     string        `envconfig:"PHARMACY_REDIS_PASSWORD"`
	DB           int           `envconfig:"PHARMACY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PHARMACY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PHARMACY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PHARMACY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PHARMACY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PHARMACY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"PHARMACY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PHARMACY_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PHARMACY_JWT_EXPIRATION_MINUTES" default:"60"`
}

type HTTPConfig struct {
	AllowedOrigins  []string      `envconfig:"PHARMACY_HTTP_ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	ReadTimeout     time.Duration `envconfig:"PHARMACY_HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"PHARMACY_HTTP_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"PHARMACY_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
	// OrderRateLimit caps order placements per customer per window; 0 disables it.
	OrderRateLimit  int           `envconfig:"PHARMACY_HTTP_ORDER_RATE_LIMIT" default:"20"`
	OrderRateWindow time.Duration `envconfig:"PHARMACY_HTTP_ORDER_RATE_WINDOW" default:"1m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PHARMACY_AUTO_MIGRATE" default:"false"`
}

// PharmacyConfig holds the business rules that vary per deployment.
type PharmacyConfig struct {
	Timezone           string `envconfig:"PHARMACY_TIMEZONE" default:"UTC"`
	PickupOpenHour     int    `envconfig:"PHARMACY_PICKUP_OPEN_HOUR" default:"9"`
	PickupCloseHour    int    `envconfig:"PHARMACY_PICKUP_CLOSE_HOUR" default:"17"`
	ExpiringWithinDays int    `envconfig:"PHARMACY_EXPIRING_WITHIN_DAYS" default:"30"`
	LowStockThreshold  int    `envconfig:"PHARMACY_DEFAULT_LOW_STOCK_THRESHOLD" default:"10"`
}

// Location resolves the configured time zone, falling back to UTC.
func (p PharmacyConfig) Location() *time.Location {
	loc, err := time.LoadLocation(strings.TrimSpace(p.Timezone))
	if err != nil {
		return time.UTC
	}
	return loc
}

func (p PharmacyConfig) validate() error {
	if _, err := time.LoadLocation(strings.TrimSpace(p.Timezone)); err != nil {
		return fmt.Errorf("invalid %s %q: %w", EnvTimezone, p.Timezone, err)
	}
	if p.PickupOpenHour < 0 || p.PickupCloseHour > 24 || p.PickupOpenHour >= p.PickupCloseHour {
		return fmt.Errorf("pickup window %d-%d is invalid", p.PickupOpenHour, p.PickupCloseHour)
	}
	if p.ExpiringWithinDays <= 0 {
		return fmt.Errorf("%s must be positive", EnvExpiringWithinDays)
	}
	if p.LowStockThreshold < 0 {
		return fmt.Errorf("%s must not be negative", EnvLowStockThreshold)
	}
	return nil
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

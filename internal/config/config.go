package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App      AppConfig
	Store    StoreConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Admin    AdminConfig
	Sync     SyncConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
}

type StoreConfig struct {
	Driver        string
	Dir           string
	SQLitePath    string
	SQLitePoll    time.Duration
	MigrationsDir string
}

type DatabaseConfig struct {
	URL        string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	AccessSecret     string
	RefreshSecret    string
	AccessExpiresIn  time.Duration
	RefreshExpiresIn time.Duration
}

type AdminConfig struct {
	Username     string
	PasswordHash string
	// Password is accepted for local development only; it is hashed at boot.
	Password string
}

type SyncConfig struct {
	Interval time.Duration
}

const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
)

var (
	errMissingRequiredEnv = errors.New("missing required environment variables")
	errInvalidEnv         = errors.New("invalid environment variables")
)

// Load reads the full server configuration from the environment.
func Load() (Config, error) {
	return load(true)
}

// LoadStore reads the configuration with only the store settings enforced.
// Maintenance commands use it; they never serve HTTP or issue tokens.
func LoadStore() (Config, error) {
	return load(false)
}

func load(server bool) (Config, error) {
	cfg := Config{}

	var missing, invalid []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" && server {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}
	optDefault := func(key, def string) string {
		if v := opt(key); v != "" {
			return v
		}
		return def
	}
	dur := func(key string, def time.Duration) time.Duration {
		raw := opt(key)
		if raw == "" {
			return def
		}
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			invalid = append(invalid, key)
			return def
		}
		return d
	}
	num := func(key string, def int) int {
		raw := opt(key)
		if raw == "" {
			return def
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			invalid = append(invalid, key)
			return def
		}
		return v
	}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
	}

	cfg.Store = StoreConfig{
		Driver:        strings.ToLower(optDefault("STORE_DRIVER", DriverFile)),
		Dir:           optDefault("STORE_DIR", "data"),
		SQLitePath:    optDefault("SQLITE_PATH", "data/portfolio.db"),
		SQLitePoll:    dur("SQLITE_POLL_INTERVAL", time.Second),
		MigrationsDir: optDefault("MIGRATIONS_DIR", "migrations"),
	}
	switch cfg.Store.Driver {
	case DriverFile, DriverMemory, DriverPostgres, DriverRedis, DriverSQLite:
	default:
		invalid = append(invalid, "STORE_DRIVER")
	}

	cfg.Database = DatabaseConfig{
		URL:        opt("DATABASE_URL"),
		DBHost:     opt("DB_HOST"),
		DBPort:     opt("DB_PORT"),
		DBName:     opt("DB_NAME"),
		DBUser:     opt("DB_USER"),
		DBPassword: opt("DB_PASSWORD"),
		DBSSLMode:  optDefault("DB_SSL_MODE", "disable"),

		ConnectTimeout:        dur("DB_CONNECT_TIMEOUT", 5*time.Second),
		PoolMaxConns:          int32(num("DB_POOL_MAX_CONNS", 0)),
		PoolMinConns:          int32(num("DB_POOL_MIN_CONNS", 0)),
		PoolMaxConnLifetime:   dur("DB_POOL_MAX_CONN_LIFETIME", 0),
		PoolMaxConnIdleTime:   dur("DB_POOL_MAX_CONN_IDLE_TIME", 0),
		PoolHealthCheckPeriod: dur("DB_POOL_HEALTH_CHECK_PERIOD", 0),
	}
	if cfg.Store.Driver == DriverPostgres && cfg.Database.URL == "" && cfg.Database.DBHost == "" {
		missing = append(missing, "DATABASE_URL|DB_HOST")
	}

	cfg.Redis = RedisConfig{
		Host:     optDefault("REDIS_HOST", "localhost"),
		Port:     optDefault("REDIS_PORT", "6379"),
		Password: opt("REDIS_PASSWORD"),
		DB:       num("REDIS_DB", 0),
	}

	cfg.JWT = JWTConfig{
		AccessSecret:     req("JWT_ACCESS_SECRET"),
		RefreshSecret:    req("JWT_REFRESH_SECRET"),
		AccessExpiresIn:  dur("JWT_ACCESS_TTL", 24*time.Hour),
		RefreshExpiresIn: dur("JWT_REFRESH_TTL", 7*24*time.Hour),
	}

	cfg.Admin = AdminConfig{
		Username:     req("ADMIN_USERNAME"),
		PasswordHash: opt("ADMIN_PASSWORD_HASH"),
		Password:     opt("ADMIN_PASSWORD"),
	}
	if server && cfg.Admin.PasswordHash == "" && cfg.Admin.Password == "" {
		missing = append(missing, "ADMIN_PASSWORD_HASH")
	}

	cfg.Sync = SyncConfig{
		Interval: dur("SYNC_INTERVAL", 0),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errInvalidEnv, strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.App.Environment, "production")
}

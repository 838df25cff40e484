package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App           AppConfig
	Database      DatabaseConfig
	Cache         CacheConfig
	JWT           JWTConfig
	Brevo         BrevoConfig
	Notifications NotificationsConfig
	Favicon       FaviconConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
	SiteBaseURL string
}

type DatabaseConfig struct {
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

type CacheConfig struct {
	RedisURL      string
	DefaultTTL    time.Duration
	SweepInterval time.Duration
}

type JWTConfig struct {
	AccessSecret     string
	RefreshSecret    string
	AccessExpiresIn  time.Duration
	RefreshExpiresIn time.Duration
}

type BrevoConfig struct {
	APIKey      string
	BaseURL     string
	SenderEmail string
	SenderName  string
}

type NotificationsConfig struct {
	Cron               string
	Timezone           string
	DeadlineThresholds []int
	MatchMinScore      int
}

type FaviconConfig struct {
	TTL     time.Duration
	Workers int
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

func Load() (Config, error) {
	// .env is optional; real deployments inject the environment directly.
	_ = godotenv.Load()

	cfg := Config{}

	var missing []string
	var invalid []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key, def string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			return def
		}
		return v
	}
	optInt := func(key string, def int) int {
		raw := strings.TrimSpace(os.Getenv(key))
		if raw == "" {
			return def
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			invalid = append(invalid, key)
			return def
		}
		return v
	}
	optDuration := func(key string, def time.Duration) time.Duration {
		raw := strings.TrimSpace(os.Getenv(key))
		if raw == "" {
			return def
		}
		v, err := time.ParseDuration(raw)
		if err != nil || v < 0 {
			invalid = append(invalid, key)
			return def
		}
		return v
	}
	optInts := func(key string, def []int) []int {
		raw := strings.TrimSpace(os.Getenv(key))
		if raw == "" {
			return def
		}
		out, err := parseIntList(raw)
		if err != nil {
			invalid = append(invalid, key)
			return def
		}
		return out
	}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
		SiteBaseURL: strings.TrimRight(opt("SITE_BASE_URL", "https://www.concoro.it"), "/"),
	}

	cfg.Database = DatabaseConfig{
		DBHost:                opt("DB_HOST", "localhost"),
		DBPort:                opt("DB_PORT", "5432"),
		DBName:                opt("DB_NAME", "concoro"),
		DBUser:                opt("DB_USER", "postgres"),
		DBPassword:            opt("DB_PASSWORD", ""),
		DBSSLMode:             opt("DB_SSL_MODE", "disable"),
		ConnectTimeout:        optDuration("DB_CONNECT_TIMEOUT", 5*time.Second),
		PoolMaxConns:          int32(optInt("DB_POOL_MAX_CONNS", 10)),
		PoolMinConns:          int32(optInt("DB_POOL_MIN_CONNS", 1)),
		PoolMaxConnLifetime:   optDuration("DB_POOL_MAX_CONN_LIFETIME", time.Hour),
		PoolMaxConnIdleTime:   optDuration("DB_POOL_MAX_CONN_IDLE_TIME", 30*time.Minute),
		PoolHealthCheckPeriod: optDuration("DB_POOL_HEALTH_CHECK_PERIOD", time.Minute),
	}

	cfg.Cache = CacheConfig{
		RedisURL:      opt("REDIS_URL", ""),
		DefaultTTL:    optDuration("CACHE_DEFAULT_TTL", 5*time.Minute),
		SweepInterval: optDuration("CACHE_SWEEP_INTERVAL", time.Minute),
	}

	cfg.JWT = JWTConfig{
		AccessSecret:     req("JWT_ACCESS_SECRET"),
		RefreshSecret:    req("JWT_REFRESH_SECRET"),
		AccessExpiresIn:  optDuration("JWT_ACCESS_EXPIRES_IN", 15*time.Minute),
		RefreshExpiresIn: optDuration("JWT_REFRESH_EXPIRES_IN", 30*24*time.Hour),
	}

	cfg.Brevo = BrevoConfig{
		APIKey:      opt("BREVO_API_KEY", ""),
		BaseURL:     opt("BREVO_BASE_URL", "https://api.brevo.com/v3"),
		SenderEmail: opt("BREVO_SENDER_EMAIL", "notifiche@concoro.it"),
		SenderName:  opt("BREVO_SENDER_NAME", "Concoro"),
	}

	cfg.Notifications = NotificationsConfig{
		Cron:               opt("NOTIFY_CRON", "0 8 * * *"),
		Timezone:           opt("NOTIFY_TIMEZONE", "Europe/Rome"),
		DeadlineThresholds: optInts("DEADLINE_THRESHOLDS", []int{7, 3, 1, 0}),
		MatchMinScore:      optInt("MATCH_MIN_SCORE", 60),
	}

	cfg.Favicon = FaviconConfig{
		TTL:     optDuration("FAVICON_TTL", 30*24*time.Hour),
		Workers: optInt("FAVICON_WORKERS", 4),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func parseIntList(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		if v < 0 {
			return nil, fmt.Errorf("negative value %d", v)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, errors.New("empty list")
	}
	return out, nil
}

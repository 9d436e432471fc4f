package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Session storage backends.
const (
	SessionStorageFile   = "file"
	SessionStorageRedis  = "redis"
	SessionStorageMemory = "memory"
)

// Config holds runtime configuration values for the dashboard shell.
type Config struct {
	AppName  string
	AppEnv   string
	AppPort  string
	LogLevel string

	BackendURL     string
	BackendTimeout time.Duration

	SessionStorage string
	SessionFile    string
	SessionKey     string
	SessionTTL     time.Duration
	RedisURL       string

	DashboardRangeDays  int
	OrdersPerPage       int
	TopRestaurantsLimit int
	ValidateFilters     bool

	AuthRateLimit  int
	AuthRateWindow time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("RESTODASH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Restaurant Analytics")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "3000")
	v.SetDefault("log.level", "info")
	v.SetDefault("backend.url", "http://localhost:8000/api")
	v.SetDefault("backend.timeout", "0s")
	v.SetDefault("session.storage", SessionStorageFile)
	v.SetDefault("session.file", ".restodash/session")
	v.SetDefault("session.key", "token")
	v.SetDefault("session.ttl", "0s")
	v.SetDefault("dashboard.range_days", 7)
	v.SetDefault("dashboard.orders_per_page", 10)
	v.SetDefault("dashboard.top_limit", 3)
	v.SetDefault("filters.validate", true)
	v.SetDefault("auth.rate_limit", 10)
	v.SetDefault("auth.rate_window", "1m")

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	backendTimeout, err := parseDuration(v, "backend.timeout")
	if err != nil {
		return Config{}, err
	}
	sessionTTL, err := parseDuration(v, "session.ttl")
	if err != nil {
		return Config{}, err
	}
	rateWindow, err := parseDuration(v, "auth.rate_window")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		LogLevel:            strings.ToLower(v.GetString("log.level")),
		BackendURL:          strings.TrimRight(v.GetString("backend.url"), "/"),
		BackendTimeout:      backendTimeout,
		SessionStorage:      strings.ToLower(strings.TrimSpace(v.GetString("session.storage"))),
		SessionFile:         v.GetString("session.file"),
		SessionKey:          v.GetString("session.key"),
		SessionTTL:          sessionTTL,
		RedisURL:            v.GetString("redis.url"),
		DashboardRangeDays:  v.GetInt("dashboard.range_days"),
		OrdersPerPage:       v.GetInt("dashboard.orders_per_page"),
		TopRestaurantsLimit: v.GetInt("dashboard.top_limit"),
		ValidateFilters:     v.GetBool("filters.validate"),
		AuthRateLimit:       v.GetInt("auth.rate_limit"),
		AuthRateWindow:      rateWindow,
	}

	if cfg.BackendURL == "" {
		return Config{}, fmt.Errorf("backend url must be provided")
	}

	switch cfg.SessionStorage {
	case SessionStorageFile:
		if cfg.SessionFile == "" {
			return Config{}, fmt.Errorf("session file must be provided for file storage")
		}
	case SessionStorageRedis:
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("redis url must be provided for redis session storage")
		}
	case SessionStorageMemory:
	default:
		return Config{}, fmt.Errorf("unknown session storage %q", cfg.SessionStorage)
	}

	if cfg.SessionKey == "" {
		cfg.SessionKey = "token"
	}
	if cfg.DashboardRangeDays <= 0 {
		cfg.DashboardRangeDays = 7
	}
	if cfg.OrdersPerPage <= 0 {
		cfg.OrdersPerPage = 10
	}
	if cfg.TopRestaurantsLimit <= 0 {
		cfg.TopRestaurantsLimit = 3
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return d, nil
}

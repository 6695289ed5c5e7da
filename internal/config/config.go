// README: Config loader with env defaults for HTTP, providers, routing retries,
// Redis, Postgres, RabbitMQ and the pricing policy file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderOSRM   = "osrm"
	ProviderGoogle = "google"
)

type MapsConfig struct {
	Provider    string
	GeocoderURL string
	RouterURL   string
	GoogleKey   string
	Timeout     time.Duration
	UserAgent   string
	Region      string // ccTLD bias for Google lookups
}

type RoutingConfig struct {
	Attempts int
	Backoff  time.Duration
}

type Config struct {
	HTTP struct {
		Addr string
	}
	Log struct {
		Format string
		Level  string
	}
	Maps    MapsConfig
	Routing RoutingConfig

	// Empty Redis, DB and RabbitMQ addresses disable the geocode cache,
	// rate overrides and quote events respectively.
	Redis struct {
		Addr       string
		GeocodeTTL time.Duration
	}
	DB struct {
		DSN string
	}
	RabbitMQ struct {
		URL string
	}
	PolicyFile string
}

// Load reads .env (if present) and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the config from environment variables only.
func FromEnv() (Config, error) {
	var (
		cfg Config
		e   envParser
	)
	cfg.HTTP.Addr = envOrDefault("ROUTECOST_HTTP_ADDR", ":8080")
	cfg.Log.Format = envOrDefault("ROUTECOST_LOG_FORMAT", "json")
	cfg.Log.Level = envOrDefault("ROUTECOST_LOG_LEVEL", "info")

	cfg.Maps.Provider = strings.ToLower(envOrDefault("ROUTECOST_PROVIDER", ProviderOSRM))
	cfg.Maps.GeocoderURL = envOrDefault("ROUTECOST_GEOCODER_URL", "https://nominatim.openstreetmap.org/search")
	cfg.Maps.RouterURL = envOrDefault("ROUTECOST_ROUTER_URL", "https://router.project-osrm.org")
	cfg.Maps.GoogleKey = os.Getenv("ROUTECOST_GOOGLE_MAPS_KEY")
	cfg.Maps.Timeout = e.duration("ROUTECOST_HTTP_TIMEOUT", 10*time.Second)
	cfg.Maps.UserAgent = envOrDefault("ROUTECOST_USER_AGENT", "routecost/1.0")
	cfg.Maps.Region = envOrDefault("ROUTECOST_REGION", "in")

	cfg.Routing.Attempts = e.integer("ROUTECOST_ROUTE_ATTEMPTS", 3)
	cfg.Routing.Backoff = e.duration("ROUTECOST_ROUTE_BACKOFF", time.Second)

	cfg.Redis.Addr = os.Getenv("ROUTECOST_REDIS_ADDR")
	cfg.Redis.GeocodeTTL = e.duration("ROUTECOST_GEOCODE_TTL", 24*time.Hour)
	cfg.DB.DSN = os.Getenv("ROUTECOST_DB_DSN")
	cfg.RabbitMQ.URL = os.Getenv("ROUTECOST_RABBITMQ_URL")
	cfg.PolicyFile = os.Getenv("ROUTECOST_POLICY_FILE")

	if err := errors.Join(e.errs...); err != nil {
		return Config{}, err
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Maps.Provider {
	case ProviderOSRM:
	case ProviderGoogle:
		if c.Maps.GoogleKey == "" {
			return errors.New("config: ROUTECOST_GOOGLE_MAPS_KEY is required for the google provider")
		}
	default:
		return fmt.Errorf("config: unknown provider %q", c.Maps.Provider)
	}
	if c.Routing.Attempts < 1 {
		return fmt.Errorf("config: ROUTECOST_ROUTE_ATTEMPTS must be at least 1, got %d", c.Routing.Attempts)
	}
	if c.Routing.Backoff < 0 || c.Maps.Timeout <= 0 {
		return errors.New("config: durations must be positive")
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envParser reads typed variables and records every malformed one.
type envParser struct {
	errs []error
}

func (e *envParser) integer(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("config: %s: invalid integer %q", key, v))
		return def
	}
	return n
}

// duration accepts Go duration strings ("1500ms") or bare seconds.
func (e *envParser) duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
		return time.Duration(n * float64(time.Second))
	}
	e.errs = append(e.errs, fmt.Errorf("config: %s: invalid duration %q", key, v))
	return def
}

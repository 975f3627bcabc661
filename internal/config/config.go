package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New()

// AppConfig carries the per-run configuration. The API key lives here, not
// in process-global state; the config object is built once per run and
// handed to the client constructor.
type AppConfig struct {
	// APIKey may arrive via env or the --api-key flag; commands verify
	// presence after merging both.
	APIKey  string
	BaseURL string `validate:"required,url"`

	// Outbound HTTP behaviour.
	HTTPTimeout time.Duration
	MaxRetries  int `validate:"gte=0,lte=10"`

	// Station selection defaults; flags may override per command.
	Network       string `validate:"required"`
	StationStatus string

	// Concurrency bounds parallel station fetches.
	Concurrency int `validate:"gte=1,lte=32"`

	// Serve mode.
	Port            string        `validate:"required"`
	CollectInterval time.Duration `validate:"gte=1m"`

	// Logging.
	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=text json"`
}

// Load reads configuration from the environment (and an optional .env
// file) with sensible defaults, then validates the result.
func Load() (*AppConfig, error) {
	// Missing .env is fine; env vars may be set directly.
	_ = godotenv.Load()

	cfg := &AppConfig{
		APIKey:        os.Getenv("METEOCAT_API_KEY"),
		BaseURL:       getenvDefault("METEOCAT_BASE_URL", "https://api.meteocat.gencat.cat/xema/v1"),
		Network:       getenvDefault("XEMA_NETWORK", "XEMA"),
		StationStatus: os.Getenv("XEMA_STATION_STATUS"),
		Concurrency:   getenvInt("FETCH_CONCURRENCY", 4),
		Port:          getenvDefault("PORT", "8080"),
		LogLevel:      getenvDefault("LOG_LEVEL", "info"),
		LogFormat:     getenvDefault("LOG_FORMAT", "text"),
	}

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.MaxRetries = getenvInt("HTTP_MAX_RETRIES", 3)

	interval, err := time.ParseDuration(getenvDefault("COLLECT_INTERVAL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid COLLECT_INTERVAL: %w", err)
	}
	cfg.CollectInterval = interval

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvProduction is the TS_ENV value of a deployed server.
const EnvProduction = "production"

const csrfKeyLen = 32

// Config holds every runtime setting of the server.
type Config struct {
	Addr           string   `env:"TS_ADDR" envDefault:":8080"`
	Env            string   `env:"TS_ENV" envDefault:"development"`
	DBPath         string   `env:"TS_DB_PATH" envDefault:"toursights.db"`
	StaticDir      string   `env:"TS_STATIC_DIR" envDefault:"static"`
	CSRFKeyHex     string   `env:"TS_CSRF_KEY"`
	TrustedOrigins []string `env:"TS_TRUSTED_ORIGINS" envSeparator:"," envDefault:"localhost:8080,127.0.0.1:8080"`

	RateLimitPerSecond float64 `env:"TS_RATE_LIMIT" envDefault:"10"`
	RateBurst          int     `env:"TS_RATE_BURST" envDefault:"20"`

	SlowQuery   time.Duration `env:"TS_SLOW_QUERY" envDefault:"50ms"`
	SlowRequest time.Duration `env:"TS_SLOW_REQUEST" envDefault:"200ms"`

	TickInterval time.Duration `env:"TS_TICK_INTERVAL" envDefault:"800ms"`
	IncrementKm  float64       `env:"TS_INCREMENT_KM" envDefault:"0.01"`

	LogLevel string `env:"TS_LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"TS_LOG_FILE"`

	TrackingIdleTTL time.Duration `env:"TS_TRACKING_IDLE_TTL" envDefault:"30m"`
	// TrackingRunTTL ends running sessions nobody has polled for this long; 0 disables it.
	TrackingRunTTL time.Duration `env:"TS_TRACKING_RUN_TTL" envDefault:"12h"`
	SweepInterval  time.Duration `env:"TS_SWEEP_INTERVAL" envDefault:"5m"`
	// DeviceRetention deletes devices untouched for longer than this; 0 keeps them forever.
	DeviceRetention time.Duration `env:"TS_DEVICE_RETENTION" envDefault:"0s"`

	ShutdownTimeout time.Duration `env:"TS_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads and validates the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.RateLimitPerSecond <= 0 {
		errs = append(errs, errors.New("TS_RATE_LIMIT must be positive"))
	}
	if c.RateBurst < 1 {
		errs = append(errs, errors.New("TS_RATE_BURST must be at least 1"))
	}
	if c.TickInterval <= 0 {
		errs = append(errs, errors.New("TS_TICK_INTERVAL must be positive"))
	}
	if c.IncrementKm <= 0 {
		errs = append(errs, errors.New("TS_INCREMENT_KM must be positive"))
	}
	if c.SweepInterval <= 0 {
		errs = append(errs, errors.New("TS_SWEEP_INTERVAL must be positive"))
	}
	if c.TrackingRunTTL < 0 {
		errs = append(errs, errors.New("TS_TRACKING_RUN_TTL must not be negative"))
	}
	if c.DeviceRetention < 0 {
		errs = append(errs, errors.New("TS_DEVICE_RETENTION must not be negative"))
	}
	if c.CSRFKeyHex != "" {
		if _, err := decodeCSRFKey(c.CSRFKeyHex); err != nil {
			errs = append(errs, err)
		}
	}
	if c.IsProduction() && c.CSRFKeyHex == "" {
		errs = append(errs, errors.New("TS_CSRF_KEY is required in production"))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether the server runs behind HTTPS in production.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// CSRFKey returns the configured CSRF secret, or a random one outside production.
// A random key invalidates issued tokens on every restart.
// POST: on success the key is 32 bytes; generated reports whether it is random
func (c Config) CSRFKey() (key []byte, generated bool, err error) {
	if c.CSRFKeyHex != "" {
		key, err := decodeCSRFKey(c.CSRFKeyHex)
		return key, false, err
	}
	if c.IsProduction() {
		return nil, false, errors.New("TS_CSRF_KEY is required in production")
	}
	key = make([]byte, csrfKeyLen)
	if _, err := rand.Read(key); err != nil {
		return nil, false, fmt.Errorf("generate CSRF key: %w", err)
	}
	return key, true, nil
}

func decodeCSRFKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err != nil || len(key) != csrfKeyLen {
		return nil, fmt.Errorf("TS_CSRF_KEY must be %d hex characters (%d bytes)", 2*csrfKeyLen, csrfKeyLen)
	}
	return key, nil
}

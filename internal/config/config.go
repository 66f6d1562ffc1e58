// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN; empty until DB is wired.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA) or path to file; used with JWT_PUBLIC_KEY for RS256/ES256.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path to file; used with JWT_PRIVATE_KEY.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTIssuer is the iss claim (e.g. "authguard"); required when auth is enabled.
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim (e.g. "authguard-api"); required when auth is enabled.
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the access token lifetime (e.g. "15m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// SessionTTL is the session / refresh token lifetime (e.g. "168h" for 7 days).
	SessionTTL string `mapstructure:"SESSION_TTL"`
	// BcryptCost is the bcrypt cost factor (4 to 31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`

	// LockoutMaxAttempts is the number of failed logins before an identifier is locked (default 5).
	LockoutMaxAttempts int `mapstructure:"LOCKOUT_MAX_ATTEMPTS"`
	// LockoutDuration is how long a locked identifier stays locked (e.g. "15m").
	LockoutDuration string `mapstructure:"LOCKOUT_DURATION"`
	// LockoutSweepInterval is how often the lockout guard sweeps stale entries (e.g. "5m").
	LockoutSweepInterval string `mapstructure:"LOCKOUT_SWEEP_INTERVAL"`

	// AuthRateWindow and AuthRateMax configure the strict limiter for auth endpoints (default 15m / 5).
	AuthRateWindow string `mapstructure:"AUTH_RATE_WINDOW"`
	AuthRateMax    int    `mapstructure:"AUTH_RATE_MAX"`
	// APIRateWindow and APIRateMax configure the general API limiter (default 1m / 300).
	APIRateWindow string `mapstructure:"API_RATE_WINDOW"`
	APIRateMax    int    `mapstructure:"API_RATE_MAX"`

	// KafkaBrokers is a comma-separated list of Kafka broker addresses; empty disables the security-event stream.
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// SecurityEventTopic is the Kafka topic for security events (default authguard-security-events).
	SecurityEventTopic string `mapstructure:"SECURITY_EVENT_TOPIC"`

	// OTLPEndpoint is the OTLP gRPC collector endpoint (e.g. http://localhost:4317); empty disables export.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP export even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`

	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_ISSUER", "authguard")
	v.SetDefault("JWT_AUDIENCE", "authguard-api")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("SESSION_TTL", "168h") // 7d
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("LOCKOUT_MAX_ATTEMPTS", 5)
	v.SetDefault("LOCKOUT_DURATION", "15m")
	v.SetDefault("LOCKOUT_SWEEP_INTERVAL", "5m")
	v.SetDefault("AUTH_RATE_WINDOW", "15m")
	v.SetDefault("AUTH_RATE_MAX", 5)
	v.SetDefault("API_RATE_WINDOW", "1m")
	v.SetDefault("API_RATE_MAX", 300)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("SECURITY_EVENT_TOPIC", "authguard-security-events")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	if cfg.LockoutMaxAttempts <= 0 {
		return nil, errors.New("config: LOCKOUT_MAX_ATTEMPTS must be positive")
	}
	if cfg.AuthRateMax <= 0 || cfg.APIRateMax <= 0 {
		return nil, errors.New("config: AUTH_RATE_MAX and API_RATE_MAX must be positive")
	}

	return &cfg, nil
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	return parseDuration(c.JWTAccessTTL, 15*time.Minute)
}

// SessionTTLDuration parses SessionTTL as a time.Duration. Returns 168h if unset or invalid.
func (c *Config) SessionTTLDuration() time.Duration {
	return parseDuration(c.SessionTTL, 168*time.Hour)
}

// LockoutDurationValue parses LockoutDuration. Returns 15m if unset or invalid.
func (c *Config) LockoutDurationValue() time.Duration {
	return parseDuration(c.LockoutDuration, 15*time.Minute)
}

// LockoutSweepIntervalValue parses LockoutSweepInterval. Returns 5m if unset or invalid.
func (c *Config) LockoutSweepIntervalValue() time.Duration {
	return parseDuration(c.LockoutSweepInterval, 5*time.Minute)
}

// AuthRateWindowValue parses AuthRateWindow. Returns 15m if unset or invalid.
func (c *Config) AuthRateWindowValue() time.Duration {
	return parseDuration(c.AuthRateWindow, 15*time.Minute)
}

// APIRateWindowValue parses APIRateWindow. Returns 1m if unset or invalid.
func (c *Config) APIRateWindowValue() time.Duration {
	return parseDuration(c.APIRateWindow, time.Minute)
}

// KafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if the security-event stream is enabled (non-empty list) and to create the producer.
func (c *Config) KafkaBrokersList() []string {
	if c == nil || c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

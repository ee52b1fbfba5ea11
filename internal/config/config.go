// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	minJWTSecretLength = 32
	minBcryptCost      = 4
	maxBcryptCost      = 14
)

// Config holds all configuration for the server.
type Config struct {
	Port     string
	LogLevel slog.Level

	DBDriver     string
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	DBSSLMode    string
	DBPoolSize   int
	DatabasePath string

	JWTSecret      string
	TokenTTL       time.Duration
	BcryptCost     int
	HashWorkers    int
	SessionSweep   time.Duration
	AllowedOrigins []string

	// AuthRateLimit is the sustained number of auth requests allowed per
	// client IP per minute; AuthRateBurst is the bucket size.
	AuthRateLimit float64
	AuthRateBurst int

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3URLTTL    time.Duration
}

// Load reads a .env file if one exists, then builds the Config from the
// process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config using lookup to read variables.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	p := parser{lookup: lookup}

	cfg := &Config{
		Port:           p.str("PORT", "8080"),
		LogLevel:       p.level("LOG_LEVEL", slog.LevelInfo),
		DBDriver:       strings.ToLower(p.str("DB_DRIVER", DriverPostgres)),
		DBHost:         p.str("DB_HOST", "localhost"),
		DBPort:         p.str("DB_PORT", "5432"),
		DBUser:         p.str("DB_USER", "postgres"),
		DBPassword:     p.str("DB_PASSWORD", ""),
		DBName:         p.str("DB_NAME", "matchpoint"),
		DBSSLMode:      p.str("DB_SSLMODE", "disable"),
		DBPoolSize:     p.integer("DB_POOL_SIZE", 10),
		DatabasePath:   p.str("DATABASE_PATH", "matchpoint.db"),
		JWTSecret:      p.str("JWT_SECRET", ""),
		TokenTTL:       p.duration("TOKEN_TTL", 24*time.Hour),
		BcryptCost:     p.integer("BCRYPT_COST", 12),
		HashWorkers:    p.integer("HASH_WORKERS", runtime.GOMAXPROCS(0)),
		SessionSweep:   p.duration("SESSION_SWEEP_INTERVAL", time.Hour),
		AllowedOrigins: p.list("CORS_ALLOWED_ORIGINS", []string{"*"}),
		AuthRateLimit:  p.float("AUTH_RATE_LIMIT", 10),
		AuthRateBurst:  p.integer("AUTH_RATE_BURST", 5),
		S3Bucket:       p.str("S3_BUCKET", ""),
		S3Region:       p.str("S3_REGION", "us-east-1"),
		S3Endpoint:     p.str("S3_ENDPOINT", ""),
		S3AccessKey:    p.str("S3_ACCESS_KEY", ""),
		S3SecretKey:    p.str("S3_SECRET_KEY", ""),
		S3URLTTL:       p.duration("S3_URL_TTL", 15*time.Minute),
	}

	if err := errors.Join(p.errs...); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.DBDriver))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET environment variable is required"))
	} else if len(c.JWTSecret) < minJWTSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters for HMAC-SHA256 security", minJWTSecretLength))
	}
	if c.BcryptCost < minBcryptCost || c.BcryptCost > maxBcryptCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", minBcryptCost, maxBcryptCost, c.BcryptCost))
	}
	if c.DBPoolSize < 1 {
		errs = append(errs, fmt.Errorf("DB_POOL_SIZE must be positive, got %d", c.DBPoolSize))
	}
	if c.HashWorkers < 1 {
		errs = append(errs, fmt.Errorf("HASH_WORKERS must be positive, got %d", c.HashWorkers))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL))
	}
	if c.SessionSweep <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_SWEEP_INTERVAL must be positive, got %s", c.SessionSweep))
	}
	if c.AuthRateLimit < 0 || c.AuthRateBurst < 0 {
		errs = append(errs, errors.New("AUTH_RATE_LIMIT and AUTH_RATE_BURST must not be negative"))
	}
	if (c.S3AccessKey == "") != (c.S3SecretKey == "") {
		errs = append(errs, errors.New("S3_ACCESS_KEY and S3_SECRET_KEY must be set together"))
	}

	return errors.Join(errs...)
}

// PostgresDSN returns the connection URL for the configured database.
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.DBSSLMode}}.Encode(),
	}
	if c.DBPassword == "" {
		u.User = url.User(c.DBUser)
	}
	return u.String()
}

// S3Enabled reports whether photo references should be presigned.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

// AuthRatePerSecond converts AuthRateLimit to tokens per second.
func (c *Config) AuthRatePerSecond() float64 {
	return c.AuthRateLimit / 60
}

// parser reads typed values and collects every parse error so that a
// misconfigured deployment reports all problems at once.
type parser struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (p *parser) str(key, fallback string) string {
	if v, ok := p.lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func (p *parser) integer(key string, fallback int) int {
	v := p.str(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return n
}

func (p *parser) float(key string, fallback float64) float64 {
	v := p.str(key, "")
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return f
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	v := p.str(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return d
}

func (p *parser) level(key string, fallback slog.Level) slog.Level {
	v := p.str(key, "")
	if v == "" {
		return fallback
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(v)); err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return l
}

func (p *parser) list(key string, fallback []string) []string {
	v := p.str(key, "")
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

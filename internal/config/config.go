// Package config loads the service configuration from the environment and an
// optional JSON file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Defaults.
const (
	DefaultPort               = 8080
	DefaultStateDir           = ".interview-state"
	DefaultLogLevel           = "info"
	DefaultJWTExpirationHours = 24
	DefaultBcryptCost         = 12
)

// Duration is a time.Duration that reads from JSON strings such as "90s".
type Duration time.Duration

// UnmarshalJSON accepts a Go duration string or a number of nanoseconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid duration %s", data)
	}
	*d = Duration(n)
	return nil
}

// RateLimitConfig configures the request limiter.
type RateLimitConfig struct {
	Enabled         *bool    `json:"enabled,omitempty"`
	DefaultLimit    int      `json:"default_limit,omitempty"`
	DefaultWindow   Duration `json:"default_window,omitempty"`
	CleanupInterval Duration `json:"cleanup_interval,omitempty"`
	Whitelist       []string `json:"whitelist,omitempty"`
	Blacklist       []string `json:"blacklist,omitempty"`
}

// IsEnabled reports whether rate limiting is on. Unset means enabled.
func (c RateLimitConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// Config is the service configuration. Every key may come from the JSON
// file; environment variables override file values.
type Config struct {
	Port     int    `json:"port,omitempty"`      // PORT
	LogLevel string `json:"log_level,omitempty"` // LOG_LEVEL

	GeminiAPIKey string `json:"gemini_api_key,omitempty"` // GEMINI_API_KEY; empty uses the offline fallbacks
	DatabaseURL  string `json:"database_url,omitempty"`   // DATABASE_URL; empty keeps the roster in memory
	RedisURL     string `json:"redis_url,omitempty"`      // REDIS_URL; empty persists state to StateDir
	StateDir     string `json:"state_dir,omitempty"`      // STATE_DIR

	JWTSecret               string `json:"jwt_secret,omitempty"`                // JWT_SECRET
	JWTExpirationHours      int    `json:"jwt_expiration_hours,omitempty"`      // JWT_EXPIRATION_HOURS
	InterviewerPasswordHash string `json:"interviewer_password_hash,omitempty"` // INTERVIEWER_PASSWORD_HASH (bcrypt)
	PasswordPepper          string `json:"password_pepper,omitempty"`           // PASSWORD_PEPPER
	BcryptCost              int    `json:"bcrypt_cost,omitempty"`               // BCRYPT_COST

	AllowedOrigins []string `json:"allowed_origins,omitempty"` // CORS_ALLOWED_ORIGINS, comma separated

	RateLimit RateLimitConfig `json:"rate_limit"` // RATE_LIMIT_*
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	enabled := true
	return Config{
		Port:               DefaultPort,
		LogLevel:           DefaultLogLevel,
		StateDir:           DefaultStateDir,
		JWTExpirationHours: DefaultJWTExpirationHours,
		BcryptCost:         DefaultBcryptCost,
		AllowedOrigins:     []string{"*"},
		RateLimit: RateLimitConfig{
			Enabled:         &enabled,
			DefaultLimit:    1000,
			DefaultWindow:   Duration(time.Minute),
			CleanupInterval: Duration(5 * time.Minute),
		},
	}
}

// Load builds the configuration from defaults, the JSON file at path (when
// path is non-empty) and the process environment, then validates it.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		file, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = cfg.Merge(*file)
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile loads configuration from a JSON file.
func LoadFile(path string) (*Config, error) {
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return &cfg, nil
}

// Merge returns c with every non-zero field of override applied.
func (c Config) Merge(override Config) Config {
	result := c

	if override.Port != 0 {
		result.Port = override.Port
	}
	if override.LogLevel != "" {
		result.LogLevel = override.LogLevel
	}
	if override.GeminiAPIKey != "" {
		result.GeminiAPIKey = override.GeminiAPIKey
	}
	if override.DatabaseURL != "" {
		result.DatabaseURL = override.DatabaseURL
	}
	if override.RedisURL != "" {
		result.RedisURL = override.RedisURL
	}
	if override.StateDir != "" {
		result.StateDir = override.StateDir
	}
	if override.JWTSecret != "" {
		result.JWTSecret = override.JWTSecret
	}
	if override.JWTExpirationHours != 0 {
		result.JWTExpirationHours = override.JWTExpirationHours
	}
	if override.InterviewerPasswordHash != "" {
		result.InterviewerPasswordHash = override.InterviewerPasswordHash
	}
	if override.PasswordPepper != "" {
		result.PasswordPepper = override.PasswordPepper
	}
	if override.BcryptCost != 0 {
		result.BcryptCost = override.BcryptCost
	}
	if len(override.AllowedOrigins) > 0 {
		result.AllowedOrigins = override.AllowedOrigins
	}

	rl := override.RateLimit
	if rl.Enabled != nil {
		result.RateLimit.Enabled = rl.Enabled
	}
	if rl.DefaultLimit != 0 {
		result.RateLimit.DefaultLimit = rl.DefaultLimit
	}
	if rl.DefaultWindow != 0 {
		result.RateLimit.DefaultWindow = rl.DefaultWindow
	}
	if rl.CleanupInterval != 0 {
		result.RateLimit.CleanupInterval = rl.CleanupInterval
	}
	if len(rl.Whitelist) > 0 {
		result.RateLimit.Whitelist = rl.Whitelist
	}
	if len(rl.Blacklist) > 0 {
		result.RateLimit.Blacklist = rl.Blacklist
	}
	return result
}

// applyEnv overrides c with any environment variables that are set.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*dst = n
	}
	dur := func(key string, dst *Duration) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*dst = Duration(d)
	}
	list := func(key string, dst *[]string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = splitList(v)
		}
	}

	num("PORT", &c.Port)
	str("LOG_LEVEL", &c.LogLevel)
	str("GEMINI_API_KEY", &c.GeminiAPIKey)
	str("DATABASE_URL", &c.DatabaseURL)
	str("REDIS_URL", &c.RedisURL)
	str("STATE_DIR", &c.StateDir)
	str("JWT_SECRET", &c.JWTSecret)
	num("JWT_EXPIRATION_HOURS", &c.JWTExpirationHours)
	str("INTERVIEWER_PASSWORD_HASH", &c.InterviewerPasswordHash)
	str("PASSWORD_PEPPER", &c.PasswordPepper)
	num("BCRYPT_COST", &c.BcryptCost)
	list("CORS_ALLOWED_ORIGINS", &c.AllowedOrigins)

	if v, ok := lookup("RATE_LIMIT_ENABLED"); ok && v != "" {
		enabled, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid RATE_LIMIT_ENABLED: %w", err))
		} else {
			c.RateLimit.Enabled = &enabled
		}
	}
	num("RATE_LIMIT_DEFAULT_LIMIT", &c.RateLimit.DefaultLimit)
	dur("RATE_LIMIT_DEFAULT_WINDOW", &c.RateLimit.DefaultWindow)
	dur("RATE_LIMIT_CLEANUP_INTERVAL", &c.RateLimit.CleanupInterval)
	list("RATE_LIMIT_WHITELIST", &c.RateLimit.Whitelist)
	list("RATE_LIMIT_BLACKLIST", &c.RateLimit.Blacklist)

	return errors.Join(errs...)
}

// Validate checks that the configuration has usable values. Secrets are
// not required here; the features that need them check for themselves.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 1 and 65535, got %d", c.Port)
	}
	if c.JWTExpirationHours < 1 {
		return fmt.Errorf("config error: 'jwt_expiration_hours' must be at least 1, got %d", c.JWTExpirationHours)
	}
	if c.BcryptCost < MinBcryptCost || c.BcryptCost > MaxBcryptCost {
		return fmt.Errorf("config error: 'bcrypt_cost' must be %d-%d, got %d", MinBcryptCost, MaxBcryptCost, c.BcryptCost)
	}
	if c.StateDir == "" && c.RedisURL == "" {
		return fmt.Errorf("config error: one of 'state_dir' or 'redis_url' is required")
	}
	if c.RateLimit.IsEnabled() {
		if c.RateLimit.DefaultLimit < 1 {
			return fmt.Errorf("config error: 'rate_limit.default_limit' must be positive")
		}
		if c.RateLimit.DefaultWindow <= 0 {
			return fmt.Errorf("config error: 'rate_limit.default_window' must be positive")
		}
	}
	return nil
}

// Addr returns the listen address for Port.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

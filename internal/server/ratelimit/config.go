package ratelimit

import (
	"time"

	"github.com/jonathan/interview-assistant/internal/config"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern; a trailing "/" matches by prefix and "*" matches one segment
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// FromConfig builds the limiter configuration from the service configuration.
func FromConfig(c config.RateLimitConfig) *Config {
	if !c.IsEnabled() {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    c.DefaultLimit,
		DefaultWindow:   time.Duration(c.DefaultWindow),
		CleanupInterval: time.Duration(c.CleanupInterval),
		Whitelist:       toSet(c.Whitelist),
		Blacklist:       toSet(c.Blacklist),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Calls that may reach the language model
		{Path: "/sessions/*/interview/start", Method: "POST", Limit: 20, Window: time.Hour, Burst: 3},
		{Path: "/sessions/*/scoring", Method: "POST", Limit: 20, Window: time.Hour, Burst: 3},

		// Uploads and credential checks
		{Path: "/sessions/*/resume", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/interviewer/login", Method: "POST", Limit: 10, Window: time.Minute, Burst: 5},

		// Session creation
		{Path: "/sessions", Method: "POST", Limit: 60, Window: time.Hour, Burst: 10},

		// Everything else uses the default limit; /health and /metrics are unlimited
	}
}

func toSet(list []string) map[string]bool {
	result := make(map[string]bool, len(list))
	for _, v := range list {
		if v != "" {
			result[v] = true
		}
	}
	return result
}

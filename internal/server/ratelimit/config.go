package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig is the limit for one route. A path ending in "/" matches
// by prefix.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int
	Window time.Duration
	Burst  int
}

// LoadConfig reads RATE_LIMIT_* variables.
func LoadConfig() *Config {
	if !getEnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs limits the routes that call the LLM, the ATS
// service or RenderCV more tightly than plain reads.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// model calls
		{Path: "/revamp-existing", Method: "POST", Limit: 10, Window: time.Hour, Burst: 3},
		{Path: "/review", Method: "POST", Limit: 10, Window: time.Hour, Burst: 3},

		// external scoring
		{Path: "/get-ats-score", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/project/", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},

		// rendering
		{Path: "/render-resume", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/render-resume-watch", Method: "POST", Limit: 120, Window: time.Minute, Burst: 20},

		// credentials
		{Path: "/auth/signup", Method: "POST", Limit: 20, Window: time.Minute, Burst: 5},
		{Path: "/auth/login", Method: "POST", Limit: 20, Window: time.Minute, Burst: 5},

		{Path: "/profile", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
	}
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}

// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type InvalidationCfg struct {
	Enabled bool
	Brokers string
	Topic   string
	GroupID string
}

type Config struct {
	Addr     string
	LogLevel string

	// PlacesAPIKey empty means the provider runs in permanent fallback
	// mode; that is a supported deployment profile, not an error.
	PlacesAPIKey    string
	PlacesBaseURL   string
	ProviderTimeout time.Duration

	RadiusDefault int
	RadiusMax     int

	CacheDriver     string
	CacheTTL        time.Duration
	CacheMaxEntries int
	RedisAddr       string

	Invalidation InvalidationCfg
}

func FromEnv() Config {
	return Config{
		Addr:     getenv("ADDR", ":8080"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		PlacesAPIKey:    getenv("PLACES_API_KEY", ""),
		PlacesBaseURL:   getenv("PLACES_BASE_URL", "https://maps.googleapis.com/maps/api/place/nearbysearch/json"),
		ProviderTimeout: getduration("PROVIDER_TIMEOUT", 5*time.Second),

		RadiusDefault: getint("RADIUS_DEFAULT", 5000),
		RadiusMax:     getint("RADIUS_MAX", 50000),

		CacheDriver:     strings.ToLower(getenv("CACHE_DRIVER", "memory")),
		CacheTTL:        getduration("CACHE_TTL", 5*time.Minute),
		CacheMaxEntries: getint("CACHE_MAX_ENTRIES", 100),
		RedisAddr:       getenv("REDIS_ADDR", "localhost:6379"),

		Invalidation: InvalidationCfg{
			Enabled: getbool("INVALIDATION_ENABLED", false),
			Brokers: getenv("KAFKA_BROKERS", "localhost:9092"),
			Topic:   getenv("KAFKA_TOPIC", "cafe-invalidation"),
			GroupID: getenv("KAFKA_GROUP_ID", "cafe-cache-invalidator"),
		},
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

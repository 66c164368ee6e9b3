package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds everything an analysis run reads from the environment. The
// API key is the only required value; everything else has a documented
// default.
type Config struct {
	// Riot API credential, supplied out of band via RIOT_API_KEY.
	RiotAPIKey string
	// Routing continent for account/match endpoints (americas, europe, asia).
	Continent string

	// Pipeline defaults, overridable per run by CLI flags.
	MatchCount   int
	TopScenarios int
	Seed         int64
	TestFraction float64

	// Remote-client policy.
	RequestInterval  time.Duration
	MaxRetryAttempts int
	RetryBackoffBase time.Duration
}

// Load reads configuration from environment variables. It returns an error
// if the API key is missing.
func Load() (*Config, error) {
	cfg := &Config{
		Continent:    getEnv("CONTINENT", "americas"),
		MatchCount:   getEnvInt("MATCH_COUNT", 20),
		TopScenarios: getEnvInt("TOP_SCENARIOS", 3),
		Seed:         getEnvInt64("SEED", 42),
		TestFraction: getEnvFloat("TEST_FRACTION", 0.2),

		RequestInterval:  getEnvDuration("REQUEST_INTERVAL", time.Second),
		MaxRetryAttempts: getEnvInt("MAX_RETRY_ATTEMPTS", 3),
		RetryBackoffBase: getEnvDuration("RETRY_BACKOFF_BASE", 500*time.Millisecond),
	}

	var err error
	if cfg.RiotAPIKey, err = getEnvRequired("RIOT_API_KEY"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvRequired(key string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("missing required environment variable: %s", key)
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

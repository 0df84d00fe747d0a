package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string
	Units              string
	HTTPTimeout        time.Duration

	// RedisURL selects the Redis cache backend when non-empty.
	RedisURL string

	Port            string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// WriteTimeout bounds a whole response. The weather page makes two
	// sequential upstream calls, so it is derived from HTTPTimeout.
	WriteTimeout time.Duration

	TimeZone    *time.Location
	CORSOrigins []string
}

const (
	defaultBaseURL = "http://api.openweathermap.org/data/2.5"

	// writeTimeoutMargin covers cache round trips and encoding on top of
	// the upstream calls.
	writeTimeoutMargin = 5 * time.Second
)

// Load reads an optional .env file, then the environment, applying defaults where unset.
func Load() (*Config, error) {
	// A missing .env file is the normal case outside local development.
	_ = godotenv.Load()

	apiKey := os.Getenv("OPENWEATHER_API_KEY")
	if apiKey == "" {
		return nil, errors.New("OPENWEATHER_API_KEY is required")
	}

	httpTimeout, err := parseDuration("HTTP_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	tzName := envOrDefault("WEATHER_TIME_ZONE", "Local")
	tz, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid WEATHER_TIME_ZONE %q: %w", tzName, err)
	}

	cfg := &Config{
		OpenWeatherAPIKey:  apiKey,
		OpenWeatherBaseURL: strings.TrimRight(envOrDefault("OPENWEATHER_BASE_URL", defaultBaseURL), "/"),
		Units:              envOrDefault("OPENWEATHER_UNITS", "imperial"),
		HTTPTimeout:        httpTimeout,
		RedisURL:           os.Getenv("REDIS_URL"),
		Port:               envOrDefault("PORT", "8080"),
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		LogFormat:          envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		WriteTimeout:       WriteTimeoutFor(httpTimeout),
		TimeZone:           tz,
		CORSOrigins:        parseList(envOrDefault("CORS_ALLOWED_ORIGINS", "*")),
	}

	return cfg, nil
}

// WriteTimeoutFor returns the server write timeout that lets a request
// finish two upstream calls of up to httpTimeout each.
func WriteTimeoutFor(httpTimeout time.Duration) time.Duration {
	return 2*httpTimeout + writeTimeoutMargin
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	raw := envOrDefault(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return d, nil
}

func parseList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

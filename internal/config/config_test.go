package config

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so host settings cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"OPENWEATHER_API_KEY", "OPENWEATHER_BASE_URL", "OPENWEATHER_UNITS", "HTTP_TIMEOUT",
		"REDIS_URL", "PORT", "LOG_LEVEL", "LOG_FORMAT", "SHUTDOWN_TIMEOUT",
		"WEATHER_TIME_ZONE", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENWEATHER_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.OpenWeatherAPIKey)
	assert.Equal(t, "http://api.openweathermap.org/data/2.5", cfg.OpenWeatherBaseURL)
	assert.Equal(t, "imperial", cfg.Units)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 25*time.Second, cfg.WriteTimeout)
	assert.Equal(t, time.Local, cfg.TimeZone)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoad_CustomEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENWEATHER_API_KEY", "abc")
	t.Setenv("OPENWEATHER_BASE_URL", "http://localhost:9999/data/2.5/")
	t.Setenv("OPENWEATHER_UNITS", "metric")
	t.Setenv("HTTP_TIMEOUT", "2s")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "5s")
	t.Setenv("WEATHER_TIME_ZONE", "America/Los_Angeles")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999/data/2.5", cfg.OpenWeatherBaseURL, "trailing slash trimmed")
	assert.Equal(t, "metric", cfg.Units)
	assert.Equal(t, 2*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 9*time.Second, cfg.WriteTimeout, "follows HTTP_TIMEOUT")
	assert.Equal(t, "America/Los_Angeles", cfg.TimeZone.String())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestWriteTimeoutFor_FitsTwoUpstreamCalls(t *testing.T) {
	for _, d := range []time.Duration{100 * time.Millisecond, 10 * time.Second, 45 * time.Second} {
		assert.Greater(t, WriteTimeoutFor(d), 2*d, "http timeout %s", d)
	}
}

func TestLoad_MissingAPIKey(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENWEATHER_API_KEY")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bad http timeout", "HTTP_TIMEOUT", "soon"},
		{"negative http timeout", "HTTP_TIMEOUT", "-1s"},
		{"bad shutdown timeout", "SHUTDOWN_TIMEOUT", "never"},
		{"unknown time zone", "WEATHER_TIME_ZONE", "Mars/Olympus_Mons"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("OPENWEATHER_API_KEY", "k")
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

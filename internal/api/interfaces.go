package api

import (
	"context"

	"github.com/neexbeast/weather-cache/internal/weather"
)

// WeatherService defines the cache-aside fetch operations needed by handlers.
type WeatherService interface {
	Fetch(ctx context.Context, kind weather.Kind, q weather.Query) weather.Result
	Forget(ctx context.Context, kind weather.Kind, q weather.Query) error
}

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

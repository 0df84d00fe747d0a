package weather

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/neexbeast/weather-cache/internal/observability"
	"github.com/neexbeast/weather-cache/internal/openweather"
)

// CacheTTL is how long a fetched payload stays in the cache store.
const CacheTTL = 30 * time.Minute

// Store is the key/value cache the service reads through.
// Get returns nil, nil on a miss.
type Store interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Set(ctx context.Context, key string, value json.RawMessage, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Upstream is the weather API the service falls back to on a miss.
// *openweather.Client satisfies it.
type Upstream interface {
	Get(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error)
}

// Service serves weather and forecast payloads cache-aside.
type Service struct {
	store    Store
	upstream Upstream
	metrics  *observability.Metrics
	log      *slog.Logger
}

// NewService constructs a Service. metrics may be nil.
func NewService(store Store, upstream Upstream, metrics *observability.Metrics, log *slog.Logger) *Service {
	if metrics == nil {
		metrics = observability.NewMetricsForTesting()
	}
	return &Service{
		store:    store,
		upstream: upstream,
		metrics:  metrics,
		log:      log.With("component", "weather-service"),
	}
}

// WeatherByZip returns current weather for a postal code.
func (s *Service) WeatherByZip(ctx context.Context, zip string) Result {
	return s.Fetch(ctx, KindWeather, ZipQuery{Zip: zip})
}

// WeatherByCoords returns current weather for a coordinate pair.
func (s *Service) WeatherByCoords(ctx context.Context, lat, lon float64) Result {
	return s.Fetch(ctx, KindWeather, CoordQuery{Lat: lat, Lon: lon})
}

// ForecastByZip returns the 5-day forecast for a postal code.
func (s *Service) ForecastByZip(ctx context.Context, zip string) Result {
	return s.Fetch(ctx, KindForecast, ZipQuery{Zip: zip})
}

// ForecastByCoords returns the 5-day forecast for a coordinate pair.
func (s *Service) ForecastByCoords(ctx context.Context, lat, lon float64) Result {
	return s.Fetch(ctx, KindForecast, CoordQuery{Lat: lat, Lon: lon})
}

// Fetch returns the cached payload for kind and q when present; otherwise it
// calls the upstream once and caches a successful payload for CacheTTL.
// Upstream failures become a Failure and are never cached. Cache errors are
// logged: a read error counts as a miss and a write error does not fail the fetch.
func (s *Service) Fetch(ctx context.Context, kind Kind, q Query) Result {
	key := CacheKey(kind, q)

	cached, err := s.store.Get(ctx, key)
	switch {
	case err != nil:
		s.log.Warn("cache get failed", "key", key, "err", err)
		s.metrics.CacheLookups.WithLabelValues(string(kind), "error").Inc()
	case len(cached) > 0:
		s.metrics.CacheLookups.WithLabelValues(string(kind), "hit").Inc()
		return Success{Data: cached, FromCache: true}
	default:
		s.metrics.CacheLookups.WithLabelValues(string(kind), "miss").Inc()
	}

	data, err := s.callUpstream(ctx, kind, q)
	if err != nil {
		s.log.Warn("upstream fetch failed", "kind", kind, "key", key, "err", err)
		return failureFor(kind)
	}

	if err := s.store.Set(ctx, key, data, CacheTTL); err != nil {
		s.log.Warn("cache set failed", "key", key, "err", err)
		s.metrics.CacheWrites.WithLabelValues(string(kind), "error").Inc()
	} else {
		s.metrics.CacheWrites.WithLabelValues(string(kind), "success").Inc()
	}

	return Success{Data: data, FromCache: false}
}

// Forget drops the cached entry for kind and q.
func (s *Service) Forget(ctx context.Context, kind Kind, q Query) error {
	key := CacheKey(kind, q)
	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("forgetting %s: %w", key, err)
	}
	s.log.Info("cache entry removed", "key", key)
	return nil
}

func (s *Service) callUpstream(ctx context.Context, kind Kind, q Query) (json.RawMessage, error) {
	start := time.Now()
	data, err := s.upstream.Get(ctx, endpointFor(kind), q.Params())
	s.metrics.UpstreamDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())

	if err == nil && isBlank(data) {
		err = fmt.Errorf("empty %s payload", kind)
	}
	if err != nil {
		s.metrics.UpstreamRequests.WithLabelValues(string(kind), "error").Inc()
		return nil, err
	}

	s.metrics.UpstreamRequests.WithLabelValues(string(kind), "success").Inc()
	return data, nil
}

func endpointFor(kind Kind) string {
	if kind == KindForecast {
		return openweather.EndpointForecast
	}
	return openweather.EndpointWeather
}

func isBlank(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

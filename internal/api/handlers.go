package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/neexbeast/weather-cache/internal/weather"
)

// Map center used when the page is opened without a location (center of the contiguous US).
const (
	defaultLatitude  = 39.8283
	defaultLongitude = -98.5795
)

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	svc WeatherService
	tz  *time.Location
	log *slog.Logger
}

// NewHandlers constructs Handlers. tz sets the day boundaries for forecast
// summaries; nil means the process's local zone.
func NewHandlers(svc WeatherService, tz *time.Location, log *slog.Logger) *Handlers {
	if tz == nil {
		tz = time.Local
	}
	return &Handlers{svc: svc, tz: tz, log: log}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// locationFromRequest reads lat+lng (or lat+lon) or zip_code. Coordinates win
// when both are given. It returns nil, nil when no location was supplied.
func locationFromRequest(r *http.Request) (weather.Query, error) {
	params := r.URL.Query()
	lat := strings.TrimSpace(params.Get("lat"))
	lng := strings.TrimSpace(params.Get("lng"))
	if lng == "" {
		lng = strings.TrimSpace(params.Get("lon"))
	}

	if lat != "" && lng != "" {
		q, err := weather.ParseCoords(lat, lng)
		if err != nil {
			return nil, err
		}
		return q, nil
	}
	if zip := strings.TrimSpace(params.Get("zip_code")); zip != "" {
		return weather.ZipQuery{Zip: zip}, nil
	}
	return nil, nil
}

type weatherPage struct {
	Latitude          float64                `json:"latitude"`
	Longitude         float64                `json:"longitude"`
	Weather           weather.Result         `json:"weather,omitempty"`
	FromCache         bool                   `json:"from_cache"`
	Forecast          weather.Result         `json:"forecast,omitempty"`
	ForecastFromCache bool                   `json:"forecast_from_cache"`
	Daily             []weather.DailySummary `json:"daily"`
	Details           []Row                  `json:"details"`
	Alerts            []string               `json:"alerts"`
}

// GetWeather handles GET /api/v1/weather.
// Fetches current weather, then the forecast, for the requested location.
// Without a location it returns only the default map center.
func (h *Handlers) GetWeather(w http.ResponseWriter, r *http.Request) {
	q, err := locationFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page := weatherPage{
		Latitude:  defaultLatitude,
		Longitude: defaultLongitude,
		Daily:     []weather.DailySummary{},
		Details:   []Row{},
		Alerts:    []string{},
	}
	if q == nil {
		writeJSON(w, http.StatusOK, page)
		return
	}
	if c, ok := q.(weather.CoordQuery); ok {
		page.Latitude, page.Longitude = c.Lat, c.Lon
	}

	ctx := r.Context()
	current := h.svc.Fetch(ctx, weather.KindWeather, q)
	forecast := h.svc.Fetch(ctx, weather.KindForecast, q)

	page.Weather = current
	switch cur := current.(type) {
	case weather.Failure:
		page.Alerts = append(page.Alerts, cur.Message)
	case weather.Success:
		page.FromCache = cur.FromCache
		page.Details = Flatten(cur.Data)
		if lat, lon, ok := coordOf(cur.Data); ok {
			page.Latitude, page.Longitude = lat, lon
		}

		page.Forecast = forecast
		switch fc := forecast.(type) {
		case weather.Failure:
			page.Alerts = append(page.Alerts, fc.Message)
		case weather.Success:
			page.ForecastFromCache = fc.FromCache
			page.Daily = weather.Summarize(fc.Data, h.tz)
		}
	}

	writeJSON(w, http.StatusOK, page)
}

// coordOf extracts coord.lat / coord.lon from a current-weather payload.
func coordOf(data json.RawMessage) (lat, lon float64, ok bool) {
	var payload struct {
		Coord *struct {
			Lat *float64 `json:"lat"`
			Lon *float64 `json:"lon"`
		} `json:"coord"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return 0, 0, false
	}
	if payload.Coord == nil || payload.Coord.Lat == nil || payload.Coord.Lon == nil {
		return 0, 0, false
	}
	return *payload.Coord.Lat, *payload.Coord.Lon, true
}

// GetCurrent handles GET /api/v1/weather/current.
func (h *Handlers) GetCurrent(w http.ResponseWriter, r *http.Request) {
	h.fetchOne(w, r, weather.KindWeather)
}

// GetForecast handles GET /api/v1/weather/forecast.
func (h *Handlers) GetForecast(w http.ResponseWriter, r *http.Request) {
	h.fetchOne(w, r, weather.KindForecast)
}

// fetchOne writes the raw fetch result for kind: 200 on success, 502 on failure.
func (h *Handlers) fetchOne(w http.ResponseWriter, r *http.Request, kind weather.Kind) {
	q, err := locationFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if q == nil {
		writeError(w, http.StatusBadRequest, "zip_code or lat and lng are required")
		return
	}

	res := h.svc.Fetch(r.Context(), kind, q)
	if _, failed := res.(weather.Failure); failed {
		writeJSON(w, http.StatusBadGateway, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// PurgeCache handles DELETE /api/v1/weather/cache.
// Removes the entry for one kind, or both kinds when kind is omitted.
func (h *Handlers) PurgeCache(w http.ResponseWriter, r *http.Request) {
	q, err := locationFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if q == nil {
		writeError(w, http.StatusBadRequest, "zip_code or lat and lng are required")
		return
	}

	kinds := []weather.Kind{weather.KindWeather, weather.KindForecast}
	if raw := r.URL.Query().Get("kind"); raw != "" {
		k, err := weather.ParseKind(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		kinds = []weather.Kind{k}
	}

	for _, k := range kinds {
		if err := h.svc.Forget(r.Context(), k, q); err != nil {
			h.log.Error("cache purge failed", "kind", k, "err", err)
			writeError(w, http.StatusInternalServerError, "failed to purge cache")
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// HealthHandlerFunc returns an http.HandlerFunc that checks cache connectivity.
func HealthHandlerFunc(cache Pinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := cache.Ping(ctx); err != nil {
			log.Error("health check: cache ping failed", "err", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "cache": "error"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "cache": "ok"})
	}
}

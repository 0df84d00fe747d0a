package weather

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Kind selects which upstream data a fetch returns.
type Kind string

const (
	KindWeather  Kind = "weather"
	KindForecast Kind = "forecast"
)

// ParseKind validates a kind name from user input.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindWeather, KindForecast:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown data kind %q", s)
}

// Query identifies a location either by ZIP/postal code or by coordinates.
// The only implementations are ZipQuery and CoordQuery.
type Query interface {
	// keySuffix is the query-dependent tail of the cache key.
	keySuffix() string
	// Params are the upstream location parameters.
	Params() url.Values
}

// ZipQuery looks a location up by postal code.
type ZipQuery struct {
	Zip string
}

func (q ZipQuery) keySuffix() string { return q.Zip }

// Params returns q=<zip>.
func (q ZipQuery) Params() url.Values {
	return url.Values{"q": {q.Zip}}
}

// CoordQuery looks a location up by latitude and longitude.
type CoordQuery struct {
	Lat float64
	Lon float64
}

func (q CoordQuery) keySuffix() string {
	return formatCoord(q.Lat) + "_" + formatCoord(q.Lon)
}

// Params returns lat=<lat>&lon=<lon>.
func (q CoordQuery) Params() url.Values {
	return url.Values{
		"lat": {formatCoord(q.Lat)},
		"lon": {formatCoord(q.Lon)},
	}
}

// ParseCoords converts request strings into a CoordQuery.
func ParseCoords(lat, lon string) (CoordQuery, error) {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil || math.IsNaN(la) || math.IsInf(la, 0) {
		return CoordQuery{}, fmt.Errorf("invalid latitude %q", lat)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil || math.IsNaN(lo) || math.IsInf(lo, 0) {
		return CoordQuery{}, fmt.Errorf("invalid longitude %q", lon)
	}
	return CoordQuery{Lat: la, Lon: lo}, nil
}

// CacheKey returns the cache key for kind and q, e.g. "weather_90210" or
// "forecast_34.0901_-118.4053".
func CacheKey(kind Kind, q Query) string {
	return string(kind) + "_" + q.keySuffix()
}

// formatCoord renders f as the shortest decimal that round-trips, keeping a
// trailing ".0" on integral values: 34 renders as "34.0". Magnitudes below
// 1e-4 or from 1e16 up use exponent form with the same rule: "1.0e-05".
func formatCoord(f float64) string {
	if abs := math.Abs(f); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		if !strings.Contains(mantissa, ".") {
			mantissa += ".0"
		}
		return mantissa + "e" + exp
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

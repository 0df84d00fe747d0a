package weather

import "encoding/json"

// Result is the outcome of a fetch: either Success or Failure, never both.
type Result interface {
	isResult()
}

// Success carries the upstream payload and whether it was served from cache.
type Success struct {
	Data      json.RawMessage `json:"data"`
	FromCache bool            `json:"from_cache"`
}

// Failure carries a human-readable error message.
type Failure struct {
	Message string `json:"error"`
}

func (Success) isResult() {}
func (Failure) isResult() {}

// Failure messages per data kind.
const (
	msgWeatherFailed  = "Failed to retrieve weather data."
	msgForecastFailed = "Failed to retrieve forecast data."
)

func failureFor(kind Kind) Failure {
	if kind == KindForecast {
		return Failure{Message: msgForecastFailed}
	}
	return Failure{Message: msgWeatherFailed}
}

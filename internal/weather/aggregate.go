package weather

import (
	"encoding/json"
	"slices"
	"time"
)

const dateLayout = "2006-01-02"

// DailySummary condenses one calendar day of 3-hour forecast samples.
// Nil pointers marshal as JSON null.
type DailySummary struct {
	Date        time.Time
	TempAvg     *float64
	TempHigh    *float64
	TempLow     *float64
	Icon        *string
	Description *string
}

// MarshalJSON renders Date as YYYY-MM-DD.
func (d DailySummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date        string   `json:"date"`
		TempAvg     *float64 `json:"temp_avg"`
		TempHigh    *float64 `json:"temp_high"`
		TempLow     *float64 `json:"temp_low"`
		Icon        *string  `json:"icon"`
		Description *string  `json:"description"`
	}{
		Date:        d.Date.Format(dateLayout),
		TempAvg:     d.TempAvg,
		TempHigh:    d.TempHigh,
		TempLow:     d.TempLow,
		Icon:        d.Icon,
		Description: d.Description,
	})
}

type dayBucket struct {
	date              time.Time
	tempSum           float64
	tempCount         int
	high, low         *float64
	icon, description *string
	hasCondition      bool
}

// Summarize groups the payload's "list" samples by calendar day in loc and
// returns one summary per day, oldest first. Anything unreadable in the
// payload is skipped; the result is never nil.
func Summarize(payload json.RawMessage, loc *time.Location) []DailySummary {
	if loc == nil {
		loc = time.Local
	}

	var doc map[string]any
	if err := json.Unmarshal(payload, &doc); err != nil || doc == nil {
		return []DailySummary{}
	}
	samples, _ := doc["list"].([]any)

	buckets := make(map[string]*dayBucket)
	for _, raw := range samples {
		sample, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		dt, ok := getFloat(sample, "dt")
		if !ok {
			continue
		}

		ts := time.Unix(int64(dt), 0).In(loc)
		k := ts.Format(dateLayout)
		b, ok := buckets[k]
		if !ok {
			b = &dayBucket{date: time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, loc)}
			buckets[k] = b
		}
		b.add(sample)
	}

	out := make([]DailySummary, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, b.summary())
	}
	slices.SortFunc(out, func(a, b DailySummary) int {
		return a.Date.Compare(b.Date)
	})
	return out
}

func (b *dayBucket) add(sample map[string]any) {
	main := getMap(sample, "main")
	if t, ok := getFloat(main, "temp"); ok {
		b.tempSum += t
		b.tempCount++
	}
	if hi, ok := getFloat(main, "temp_max"); ok && (b.high == nil || hi > *b.high) {
		b.high = &hi
	}
	if lo, ok := getFloat(main, "temp_min"); ok && (b.low == nil || lo < *b.low) {
		b.low = &lo
	}

	// Icon and description come from the first sample with a condition.
	if b.hasCondition {
		return
	}
	cond := getFirstInArray(sample, "weather")
	if cond == nil {
		return
	}
	b.hasCondition = true
	b.icon = getString(cond, "icon")
	b.description = getString(cond, "description")
}

func (b *dayBucket) summary() DailySummary {
	s := DailySummary{
		Date:        b.date,
		TempHigh:    b.high,
		TempLow:     b.low,
		Icon:        b.icon,
		Description: b.description,
	}
	if b.tempCount > 0 {
		avg := b.tempSum / float64(b.tempCount)
		s.TempAvg = &avg
	}
	return s
}

func getMap(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	v, _ := m[key].(map[string]any)
	return v
}

func getFloat(m map[string]any, key string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	v, ok := m[key].(float64)
	return v, ok
}

func getString(m map[string]any, key string) *string {
	v, ok := m[key].(string)
	if !ok {
		return nil
	}
	return &v
}

// getFirstInArray returns m[key][0] when it is a JSON object.
func getFirstInArray(m map[string]any, key string) map[string]any {
	arr, ok := m[key].([]any)
	if !ok || len(arr) == 0 {
		return nil
	}
	first, _ := arr[0].(map[string]any)
	return first
}

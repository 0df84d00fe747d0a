package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
)

// Row is one key/value line of a flattened JSON document.
type Row struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Flatten turns a JSON document into display rows. Object members become
// dotted keys ("main.temp"), array elements become indexed keys
// ("weather[0].icon"), and object keys are visited in sorted order.
// A blank document yields no rows.
func Flatten(data json.RawMessage) []Row {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil || isBlankValue(v) {
		return []Row{}
	}
	return flattenValue(v, "", []Row{})
}

func flattenValue(v any, parent string, rows []Row) []Row {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			label := k
			if parent != "" {
				label = parent + "." + k
			}
			rows = flattenValue(val[k], label, rows)
		}
	case []any:
		if len(val) == 0 {
			return append(rows, Row{Key: parent, Value: "[]"})
		}
		for i, item := range val {
			rows = flattenValue(item, fmt.Sprintf("%s[%d]", parent, i), rows)
		}
	default:
		rows = append(rows, Row{Key: parent, Value: formatScalar(val)})
	}
	return rows
}

func formatScalar(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

func isBlankValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case map[string]any:
		return len(val) == 0
	case []any:
		return len(val) == 0
	case string:
		return val == ""
	}
	return false
}

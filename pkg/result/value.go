package result

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Record is one loosely typed JSON object, as decoded from the backend.
type Record = map[string]any

// Truthy applies JSON truthiness: nil, false, 0, NaN and "" are false.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0 && !math.IsNaN(t)
	case float32:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case int32:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	default:
		return true
	}
}

// AsRecord returns v as a JSON object when it is one.
func AsRecord(v any) (Record, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// String returns v when it is a string, otherwise "".
func String(v any) string {
	s, _ := v.(string)
	return s
}

// StringSlice converts a decoded JSON array into strings, skipping non-strings.
func StringSlice(v any) []string {
	switch t := v.(type) {
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func toInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		return int64(t), true
	case float32:
		return int64(t), true
	case int:
		return int64(t), true
	case int64:
		return t, true
	case int32:
		return int64(t), true
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, true
		}
		if f, err := t.Float64(); err == nil {
			return int64(f), true
		}
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// Int64 converts a decoded JSON number to int64. Non-numbers give 0.
func Int64(v any) int64 {
	n, _ := toInt64(v)
	return n
}

// Float64 converts a decoded JSON number to float64. Non-numbers give 0.
func Float64(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		f, _ := t.Float64()
		return f
	}
	return 0
}

// Bool returns v when it is a bool, otherwise false.
func Bool(v any) bool {
	b, _ := v.(bool)
	return b
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

package provider

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// decode unmarshals data with numbers kept as json.Number so integer ids and
// epoch timestamps survive untouched.
func decode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// stringValue renders a scalar JSON value as text. Objects, arrays, and
// null yield "".
func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// floatValue converts a number or numeric string to a finite float.
func floatValue(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// firstString returns the first key in props holding a non-empty scalar.
func firstString(props map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := strings.TrimSpace(stringValue(props[k])); s != "" {
			return s
		}
	}
	return ""
}

// firstValue returns the first key present with a non-nil value.
func firstValue(props map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := props[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// parseLeadingInt parses the leading integer of s ("12abc" -> 12).
func parseLeadingInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// formatCoord renders a coordinate with seven decimals, the precision OSM stores.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 7, 64)
}

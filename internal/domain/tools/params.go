package tools

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// GetString extracts a string parameter. Numbers and bools are formatted.
func GetString(params map[string]interface{}, key, def string) string {
	val, ok := params[key]
	if !ok || val == nil {
		return def
	}
	return stringify(val)
}

// RequireString extracts a non-empty string parameter
func RequireString(params map[string]interface{}, key string) (string, error) {
	s := GetString(params, key, "")
	if s == "" {
		return "", fmt.Errorf("%s parameter required", key)
	}
	return s, nil
}

// GetNumber extracts a numeric parameter, accepting numeric strings
func GetNumber(params map[string]interface{}, key string, def float64) (float64, error) {
	val, ok := params[key]
	if !ok || val == nil {
		return def, nil
	}
	n, ok := toFloat(val)
	if !ok {
		return 0, fmt.Errorf("%s must be number, got %v", key, val)
	}
	return n, nil
}

// GetBool extracts a bool parameter
func GetBool(params map[string]interface{}, key string, def bool) bool {
	b, ok := params[key].(bool)
	if !ok {
		return def
	}
	return b
}

// GetMap extracts a map parameter
func GetMap(params map[string]interface{}, key string) map[string]interface{} {
	m, _ := params[key].(map[string]interface{})
	return m
}

// GetStringMap extracts a map parameter with stringified values
func GetStringMap(params map[string]interface{}, key string) map[string]string {
	m := GetMap(params, key)
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = stringify(v)
	}
	return out
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func stringify(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return FormatNumber(s)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

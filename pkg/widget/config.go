package widget

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Config is the opaque per-instance configuration of a widget.
//
// The layout engine never interprets a Config; only the descriptor of the
// matching type does, at the render/editor boundary. Values are kept in
// their JSON shape (string, float64, bool, nil, []any, map[string]any) so
// that a Config survives a token round trip unchanged.
type Config map[string]any

// Clone returns a deep, JSON-normalized copy of c.
// Integer values become float64 and typed slices become []any.
func (c Config) Clone() Config {
	if c == nil {
		return Config{}
	}
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = normalize(v)
	}
	return out
}

// Merge returns a copy of c with patch applied on top.
// Keys present in patch override, all other keys persist.
func (c Config) Merge(patch Config) Config {
	out := c.Clone()
	for k, v := range patch {
		out[k] = normalize(v)
	}
	return out
}

// Keys returns the config keys in sorted order.
func (c Config) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String returns the value at key as a string, or def if absent.
func (c Config) String(key, def string) string {
	switch v := c[key].(type) {
	case string:
		return v
	case nil:
		return def
	default:
		return fmt.Sprint(v)
	}
}

// Float returns the value at key as a float64, or def if absent or not numeric.
func (c Config) Float(key string, def float64) float64 {
	switch v := c[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return def
}

// Int returns the value at key truncated to an int, or def.
func (c Config) Int(key string, def int) int {
	return int(c.Float(key, float64(def)))
}

// Bool returns the value at key as a bool, or def if absent.
func (c Config) Bool(key string, def bool) bool {
	switch v := c[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// Strings returns the value at key as a string slice, or def.
func (c Config) Strings(key string, def []string) []string {
	switch v := c[key].(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case []string:
		return append([]string(nil), v...)
	case string:
		if v == "" {
			return nil
		}
		return splitList(v)
	}
	return def
}

func normalize(v any) any {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case float32:
		return float64(t)
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalize(item)
		}
		return out
	case Config:
		return map[string]any(t.Clone())
	case map[string]any:
		return map[string]any(Config(t).Clone())
	default:
		return v
	}
}

// splitList splits a "|"-separated editor value into trimmed items.
func splitList(s string) []string {
	parts := strings.Split(s, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

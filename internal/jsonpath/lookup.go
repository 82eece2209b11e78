// Package jsonpath reads values out of decoded JSON trees
// (map[string]any / []any) by dot-notation path without panicking on
// missing or mistyped segments.
package jsonpath

import (
	"strconv"
	"strings"
)

// Get walks path through v. Numeric segments index into arrays.
// It reports false when any segment is absent or the value found is nil.
func Get(v any, path string) (any, bool) {
	current := v
	if path != "" {
		for _, part := range strings.Split(path, ".") {
			switch node := current.(type) {
			case map[string]any:
				next, ok := node[part]
				if !ok {
					return nil, false
				}
				current = next
			case []any:
				i, err := strconv.Atoi(part)
				if err != nil || i < 0 || i >= len(node) {
					return nil, false
				}
				current = node[i]
			default:
				return nil, false
			}
		}
	}
	if current == nil {
		return nil, false
	}
	return current, true
}

// Lookup returns the value at path, or def when it cannot be resolved.
func Lookup(v any, path string, def any) any {
	if got, ok := Get(v, path); ok {
		return got
	}
	return def
}

// LookupAs returns the value at path when it resolves and has type T.
func LookupAs[T any](v any, path string, def T) T {
	got, ok := Get(v, path)
	if !ok {
		return def
	}
	if typed, ok := got.(T); ok {
		return typed
	}
	return def
}

// String is LookupAs for strings.
func String(v any, path string) string {
	return LookupAs(v, path, "")
}

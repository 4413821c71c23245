// Package jsonutil handles loosely-typed JSON from external feeds,
// where fields drift between strings, numbers and arrays across feed
// revisions.
package jsonutil

import (
	"encoding/json"
	"fmt"
)

// FlexibleString converts a raw JSON value to a string, accepting
// strings, numbers and booleans. Returns empty string for null/absent.
func FlexibleString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if n == float64(int64(n)) {
			return fmt.Sprintf("%d", int64(n))
		}
		return fmt.Sprintf("%g", n)
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return fmt.Sprintf("%t", b)
	}

	return string(raw)
}

// FlexibleStringList converts a raw JSON value to a string slice,
// accepting an array, a single scalar, or null. Scalar elements go
// through the same coercion as FlexibleString.
func FlexibleStringList(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s := FlexibleString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}

	if s := FlexibleString(raw); s != "" {
		return []string{s}
	}
	return nil
}

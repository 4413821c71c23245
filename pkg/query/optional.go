package query

import (
	"strconv"
	"strings"
)

// Float is an optional float64. The zero value is "unset", which means
// the filter it feeds imposes no constraint.
type Float struct {
	value float64
	set   bool
}

// FloatOf returns a set Float.
func FloatOf(v float64) Float {
	return Float{value: v, set: true}
}

// ParseFloat parses s into an optional Float. Blank or malformed input
// yields the unset value rather than an error: on the analytics surface
// a partial result beats a hard failure, so bad numeric params simply
// do not constrain the query.
func ParseFloat(s string) Float {
	s = strings.TrimSpace(s)
	if s == "" {
		return Float{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Float{}
	}
	return Float{value: v, set: true}
}

// Value returns the parsed value and whether it was set.
func (f Float) Value() (float64, bool) {
	return f.value, f.set
}

// IsSet reports whether a value is present.
func (f Float) IsSet() bool {
	return f.set
}

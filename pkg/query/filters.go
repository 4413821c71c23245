// Package query builds parameterized SQL predicates, sort clauses and
// pagination metadata for the indicator store. All filter options are
// optional; unset options impose no constraint, and active options
// combine with AND.
package query

import (
	"fmt"
	"strings"
	"time"
)

// Severity band thresholds for the coarse high/medium/low filter.
const (
	HighSeverityFloor   = 8.0
	MediumSeverityFloor = 4.0
)

// Filters is one composable filter set over indicator rows.
// Blank string fields and unset optionals are "no constraint".
type Filters struct {
	// SearchTerm matches case-insensitively as a substring of any of
	// name, description, indicator_value or source (OR across fields).
	SearchTerm string

	// IndicatorType is an exact match; "" or "all" (any case) disables it.
	IndicatorType string

	// SeverityMin and SeverityMax are inclusive numeric bounds.
	// Rows without a score never match a severity bound.
	SeverityMin Float
	SeverityMax Float

	// DateFrom and DateTo are inclusive YYYY-MM-DD bounds on date_added.
	DateFrom string
	DateTo   string

	// Source matches case-insensitively as a substring.
	Source string

	// Sources is an OR of case-insensitive substring matches, used by
	// the filtered dashboard and temporal views.
	Sources []string

	// SeverityBand is "high" (>= 8), "medium" ([4, 8)) or "low" (< 4);
	// "" or "all" disables it.
	SeverityBand string

	// Days restricts to a trailing window of calendar days ending at
	// the reference time. Zero disables it.
	Days int
}

// Where renders the filter set as a SQL fragment starting with the
// given placeholder index. It returns the fragment (without a leading
// WHERE), the bound args, and the next free placeholder index. An empty
// filter set yields an empty fragment.
func (f Filters) Where(argIndex int, now time.Time) (string, []any, int) {
	var conds []string
	var args []any

	next := func(v any) string {
		args = append(args, v)
		p := fmt.Sprintf("$%d", argIndex)
		argIndex++
		return p
	}

	if term := strings.TrimSpace(f.SearchTerm); term != "" {
		pattern := "%" + term + "%"
		p := next(pattern)
		conds = append(conds, fmt.Sprintf(
			"(name ILIKE %[1]s OR description ILIKE %[1]s OR indicator_value ILIKE %[1]s OR source ILIKE %[1]s)", p))
	}

	if t := strings.TrimSpace(f.IndicatorType); t != "" && !strings.EqualFold(t, "all") {
		conds = append(conds, "indicator_type = "+next(t))
	}

	if v, ok := f.SeverityMin.Value(); ok {
		conds = append(conds, "severity_score >= "+next(v))
	}
	if v, ok := f.SeverityMax.Value(); ok {
		conds = append(conds, "severity_score <= "+next(v))
	}

	if d := strings.TrimSpace(f.DateFrom); d != "" {
		conds = append(conds, "date_added >= "+next(d)+"::date")
	}
	if d := strings.TrimSpace(f.DateTo); d != "" {
		conds = append(conds, "date_added <= "+next(d)+"::date")
	}

	if s := strings.TrimSpace(f.Source); s != "" {
		conds = append(conds, "source ILIKE "+next("%"+s+"%"))
	}

	if len(f.Sources) > 0 {
		var ors []string
		for _, s := range f.Sources {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			ors = append(ors, "source ILIKE "+next("%"+s+"%"))
		}
		if len(ors) > 0 {
			conds = append(conds, "("+strings.Join(ors, " OR ")+")")
		}
	}

	switch strings.ToLower(strings.TrimSpace(f.SeverityBand)) {
	case "high":
		conds = append(conds, fmt.Sprintf("severity_score >= %s", next(HighSeverityFloor)))
	case "medium":
		conds = append(conds, fmt.Sprintf("severity_score >= %s AND severity_score < %s",
			next(MediumSeverityFloor), next(HighSeverityFloor)))
	case "low":
		conds = append(conds, fmt.Sprintf("severity_score < %s", next(MediumSeverityFloor)))
	}

	if f.Days > 0 {
		cutoff := now.AddDate(0, 0, -f.Days).Format("2006-01-02")
		conds = append(conds, "date_added >= "+next(cutoff)+"::date")
	}

	return strings.Join(conds, " AND "), args, argIndex
}

// WhereClause renders the filter set as a full "WHERE ..." clause, or
// an empty string when no filter is active.
func (f Filters) WhereClause(now time.Time) (string, []any) {
	frag, args, _ := f.Where(1, now)
	if frag == "" {
		return "", nil
	}
	return "WHERE " + frag, args
}

// ParseSourceList splits a comma-separated source filter into terms,
// dropping blanks. An empty input yields nil (no constraint).
func ParseSourceList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

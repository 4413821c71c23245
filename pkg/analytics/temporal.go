// Package analytics computes derived views over day-bucketed indicator
// counts: aligned time series, trend direction, peak detection, weekly
// seasonality and the geographic approximation. Everything here is a
// pure function of its inputs and never fails on empty windows.
package analytics

import (
	"sort"
	"time"

	"github.com/harmonia-ir/intel-engine/pkg/models"
)

// Trend direction classifications.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// trendWindow is the number of buckets averaged at each end of the
// series when classifying the trend.
const trendWindow = 7

// Thresholds for the recent-vs-earlier mean ratio.
const (
	trendUpperRatio = 1.10
	trendLowerRatio = 0.90
)

const dayFormat = "2006-01-02"

// BuildSeries aligns raw (day, source, count) rows into one day-ordered
// series per observed source plus a total series summed across sources.
// The day axis spans from..to inclusive and missing (day, source)
// combinations are zero-filled, so every series has len(Dates) points.
func BuildSeries(rows []models.DailyCount, from, to time.Time) *models.TemporalAnalysis {
	ta := &models.TemporalAnalysis{
		Series:  make(map[string][]int64),
		Sources: make([]string, 0),
		Dates:   make([]string, 0),
		Total:   make([]int64, 0),
	}

	// Calendar-day normalization in the timestamps' own zone. A UTC
	// truncation would shift the window on UTC+ hosts and drop the
	// current day's rows.
	from = startOfDay(from)
	to = startOfDay(to)
	if to.Before(from) {
		return ta
	}

	dayIndex := make(map[string]int)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format(dayFormat)
		dayIndex[key] = len(ta.Dates)
		ta.Dates = append(ta.Dates, key)
	}
	ta.Total = make([]int64, len(ta.Dates))

	seen := make(map[string]bool)
	for _, row := range rows {
		if !seen[row.Source] {
			seen[row.Source] = true
			ta.Sources = append(ta.Sources, row.Source)
			ta.Series[row.Source] = make([]int64, len(ta.Dates))
		}
		idx, ok := dayIndex[row.Day]
		if !ok {
			// Row outside the requested window; ignore.
			continue
		}
		ta.Series[row.Source][idx] += row.Count
		ta.Total[idx] += row.Count
	}
	sort.Strings(ta.Sources)

	return ta
}

// TrendDirection classifies a series by comparing the mean of its most
// recent buckets against the mean of its earliest buckets. Series
// shorter than the comparison window are always stable.
func TrendDirection(total []int64) string {
	if len(total) < trendWindow {
		return TrendStable
	}

	earlier := mean(total[:trendWindow])
	recent := mean(total[len(total)-trendWindow:])

	switch {
	case recent > earlier*trendUpperRatio:
		return TrendIncreasing
	case recent < earlier*trendLowerRatio:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

// Peaks returns the n days with the highest total count, descending.
// The sort is stable over the chronological input, so ties resolve in
// date order.
func Peaks(dates []string, total []int64, n int) []models.Bucket {
	if n <= 0 || len(dates) == 0 || len(dates) != len(total) {
		return []models.Bucket{}
	}

	buckets := make([]models.Bucket, len(dates))
	for i := range dates {
		buckets[i] = models.Bucket{Label: dates[i], Count: total[i]}
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Count > buckets[j].Count
	})

	if n > len(buckets) {
		n = len(buckets)
	}
	return buckets[:n]
}

// WeeklyPattern averages the total count per weekday name across all
// observed weeks. Days that fail to parse are skipped.
func WeeklyPattern(dates []string, total []int64) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int64)

	for i, d := range dates {
		if i >= len(total) {
			break
		}
		day, err := time.Parse(dayFormat, d)
		if err != nil {
			continue
		}
		name := day.Weekday().String()
		sums[name] += float64(total[i])
		counts[name]++
	}

	pattern := make(map[string]float64, len(sums))
	for name, sum := range sums {
		pattern[name] = sum / float64(counts[name])
	}
	return pattern
}

// AverageDaily is the arithmetic mean of the series, 0 when empty.
func AverageDaily(total []int64) float64 {
	if len(total) == 0 {
		return 0
	}
	return mean(total)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func mean(values []int64) float64 {
	var sum int64
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmonia-ir/intel-engine/pkg/models"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestBuildSeries(t *testing.T) {
	rows := []models.DailyCount{
		{Day: "2025-06-01", Source: "MITRE ATT&CK", Count: 3},
		{Day: "2025-06-01", Source: "CISA KEV", Count: 2},
		{Day: "2025-06-03", Source: "MITRE ATT&CK", Count: 1},
	}

	ta := BuildSeries(rows, day("2025-06-01"), day("2025-06-04"))

	assert.Equal(t, []string{"2025-06-01", "2025-06-02", "2025-06-03", "2025-06-04"}, ta.Dates)
	assert.Equal(t, []string{"CISA KEV", "MITRE ATT&CK"}, ta.Sources)
	assert.Equal(t, []int64{3, 0, 1, 0}, ta.Series["MITRE ATT&CK"])
	assert.Equal(t, []int64{2, 0, 0, 0}, ta.Series["CISA KEV"])
	assert.Equal(t, []int64{5, 0, 1, 0}, ta.Total)
}

func TestBuildSeriesIgnoresRowsOutsideWindow(t *testing.T) {
	rows := []models.DailyCount{
		{Day: "2025-05-01", Source: "URLhaus", Count: 9},
		{Day: "2025-06-02", Source: "URLhaus", Count: 4},
	}

	ta := BuildSeries(rows, day("2025-06-01"), day("2025-06-03"))

	assert.Equal(t, []int64{0, 4, 0}, ta.Series["URLhaus"])
	assert.Equal(t, []int64{0, 4, 0}, ta.Total)
}

func TestBuildSeriesAheadOfUTCKeepsCurrentDay(t *testing.T) {
	// Early morning in a UTC+10 zone is still the previous day in UTC.
	// The day axis must follow the local calendar so rows labeled with
	// the current day stay inside the window.
	zone := time.FixedZone("AEST", 10*60*60)
	to := time.Date(2025, 6, 26, 1, 0, 0, 0, zone)
	from := to.AddDate(0, 0, -2)

	rows := []models.DailyCount{
		{Day: "2025-06-26", Source: "URLhaus", Count: 5},
	}

	ta := BuildSeries(rows, from, to)

	assert.Equal(t, []string{"2025-06-24", "2025-06-25", "2025-06-26"}, ta.Dates)
	assert.Equal(t, []int64{0, 0, 5}, ta.Total)
	assert.Equal(t, []int64{0, 0, 5}, ta.Series["URLhaus"])
}

func TestBuildSeriesEmptyWindow(t *testing.T) {
	// An inverted window yields empty structures, never a panic.
	ta := BuildSeries(nil, day("2025-06-10"), day("2025-06-01"))

	assert.Empty(t, ta.Dates)
	assert.Empty(t, ta.Total)
	assert.Empty(t, ta.Sources)
}

func TestTrendDirection(t *testing.T) {
	tests := []struct {
		name  string
		total []int64
		want  string
	}{
		{"empty series is stable", nil, TrendStable},
		{"short series is always stable", []int64{1, 100, 1000}, TrendStable},
		{"six points is still short", []int64{0, 0, 0, 90, 90, 90}, TrendStable},
		{
			name:  "flat data over two weeks is stable",
			total: []int64{5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5},
			want:  TrendStable,
		},
		{
			name:  "recent mean above 1.10x earlier mean is increasing",
			total: []int64{10, 10, 10, 10, 10, 10, 10, 20, 20, 20, 20, 20, 20, 20},
			want:  TrendIncreasing,
		},
		{
			name:  "recent mean below 0.90x earlier mean is decreasing",
			total: []int64{20, 20, 20, 20, 20, 20, 20, 10, 10, 10, 10, 10, 10, 10},
			want:  TrendDecreasing,
		},
		{
			name:  "within the dead band is stable",
			total: []int64{10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 11, 10, 11},
			want:  TrendStable,
		},
		{
			name:  "growth from an all-zero start is increasing",
			total: []int64{0, 0, 0, 0, 0, 0, 0, 3, 3, 3, 3, 3, 3, 3},
			want:  TrendIncreasing,
		},
		{
			name: "exactly seven points compares the window with itself",
			// earliest 7 and most recent 7 are the same buckets
			total: []int64{1, 2, 3, 4, 5, 6, 7},
			want:  TrendStable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TrendDirection(tt.total))
		})
	}
}

func TestPeaks(t *testing.T) {
	dates := []string{"2025-06-01", "2025-06-02", "2025-06-03", "2025-06-04", "2025-06-05"}
	total := []int64{2, 9, 4, 9, 1}

	peaks := Peaks(dates, total, 3)

	require.Len(t, peaks, 3)
	// Ties on 9 resolve chronologically because the sort is stable.
	assert.Equal(t, models.Bucket{Label: "2025-06-02", Count: 9}, peaks[0])
	assert.Equal(t, models.Bucket{Label: "2025-06-04", Count: 9}, peaks[1])
	assert.Equal(t, models.Bucket{Label: "2025-06-03", Count: 4}, peaks[2])
}

func TestPeaksShortAndEmptyInput(t *testing.T) {
	assert.Empty(t, Peaks(nil, nil, 3))
	assert.Len(t, Peaks([]string{"2025-06-01"}, []int64{5}, 3), 1)
	assert.Empty(t, Peaks([]string{"2025-06-01"}, []int64{5}, 0))
	// Mismatched lengths are refused rather than read out of bounds.
	assert.Empty(t, Peaks([]string{"2025-06-01", "2025-06-02"}, []int64{5}, 3))
}

func TestWeeklyPattern(t *testing.T) {
	// 2025-06-02 is a Monday.
	dates := []string{"2025-06-02", "2025-06-03", "2025-06-09", "2025-06-10"}
	total := []int64{4, 6, 8, 2}

	pattern := WeeklyPattern(dates, total)

	assert.InDelta(t, 6.0, pattern["Monday"], 1e-9)
	assert.InDelta(t, 4.0, pattern["Tuesday"], 1e-9)
	assert.NotContains(t, pattern, "Wednesday")
}

func TestWeeklyPatternSkipsUnparseableDates(t *testing.T) {
	pattern := WeeklyPattern([]string{"garbage", "2025-06-02"}, []int64{100, 4})

	assert.Len(t, pattern, 1)
	assert.InDelta(t, 4.0, pattern["Monday"], 1e-9)
}

func TestAverageDaily(t *testing.T) {
	assert.Equal(t, 0.0, AverageDaily(nil))
	assert.InDelta(t, 2.5, AverageDaily([]int64{1, 2, 3, 4}), 1e-9)
}

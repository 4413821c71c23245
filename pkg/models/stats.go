package models

// Bucket is one row of a grouped-count breakdown, e.g. indicators per
// source or per raw severity value.
type Bucket struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// DailyCount is the indicator volume for one source on one calendar day.
type DailyCount struct {
	Day    string `json:"day"` // YYYY-MM-DD
	Source string `json:"source"`
	Count  int64  `json:"count"`
}

// PagedIndicators is one page of search results plus paging metadata.
// Pages are 1-indexed; Total counts all matching rows before paging.
type PagedIndicators struct {
	Items       []*Indicator `json:"items"`
	Total       int64        `json:"total"`
	Pages       int          `json:"pages"`
	CurrentPage int          `json:"current_page"`
	PerPage     int          `json:"per_page"`
	HasPrev     bool         `json:"has_prev"`
	HasNext     bool         `json:"has_next"`
	PrevPage    int          `json:"prev_page,omitempty"`
	NextPage    int          `json:"next_page,omitempty"`
}

// FilterOptions feeds the search UI's filter menus.
type FilterOptions struct {
	Sources    []string  `json:"sources"`
	Severities []string  `json:"severities"`
	DateRange  DateRange `json:"date_range"`
}

// DateRange is the span of date_added values present in the store.
type DateRange struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

// DashboardStats is the aggregate view behind the main dashboard.
type DashboardStats struct {
	TotalIndicators      int64    `json:"total_indicators"`
	MITRECount           int64    `json:"mitre_count"`
	CVECount             int64    `json:"cve_count"`
	URLHausCount         int64    `json:"urlhaus_count"`
	RecentCount          int64    `json:"recent_count"`
	SeverityDistribution []Bucket `json:"severity_distribution"`
	SourceDistribution   []Bucket `json:"source_distribution"`
	RecentTrend          []Bucket `json:"recent_trend"` // per-day counts, trailing week
	TopTechniques        []Bucket `json:"top_techniques"`
	SourceBreakdown      []Bucket `json:"source_breakdown"`
}

// TemporalAnalysis holds aligned day-ordered series per source plus a
// total series summed across sources. Missing (day, source) pairs are
// zero-filled so every series has len(Dates) points.
type TemporalAnalysis struct {
	Dates   []string           `json:"dates"`
	Series  map[string][]int64 `json:"series"`
	Total   []int64            `json:"total"`
	Sources []string           `json:"sources"`
}

// ThreatTrends summarizes the trajectory of indicator volume.
type ThreatTrends struct {
	PeakDates      []Bucket           `json:"peak_dates"`
	AverageDaily   float64            `json:"average_daily"`
	TrendDirection string             `json:"trend_direction"` // increasing, decreasing, stable
	WeeklyPattern  map[string]float64 `json:"weekly_pattern"`
	TemporalData   *TemporalAnalysis  `json:"temporal_data"`
}

// CountryStat is the per-country slice of the geographic approximation.
// URL-derived counts are measured; CVE and technique counts are a
// simulated proportional spread, retained so consumers can tell the
// two apart.
type CountryStat struct {
	Country       string `json:"country"`
	MaliciousURLs int64  `json:"malicious_urls"`
	CVEs          int64  `json:"cve_vulnerabilities"`
	Techniques    int64  `json:"mitre_techniques"`
	Total         int64  `json:"total"`
}

// GeographicAnalysis is the column-oriented shape the map view consumes.
type GeographicAnalysis struct {
	Countries     []string `json:"countries"`
	MaliciousURLs []int64  `json:"malicious_urls"`
	CVEs          []int64  `json:"cve_vulnerabilities"`
	Techniques    []int64  `json:"mitre_techniques"`
	Totals        []int64  `json:"totals"`
}

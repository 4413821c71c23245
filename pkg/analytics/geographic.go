package analytics

import (
	"net/url"
	"sort"
	"strings"

	"github.com/harmonia-ir/intel-engine/pkg/models"
)

// countryCodes maps two-letter codes found in URLs (ccTLDs or path
// segments) to country names.
var countryCodes = map[string]string{
	"us": "United States",
	"gb": "United Kingdom",
	"uk": "United Kingdom",
	"cn": "China",
	"ru": "Russia",
	"de": "Germany",
	"fr": "France",
	"jp": "Japan",
	"kr": "South Korea",
	"in": "India",
	"br": "Brazil",
	"ca": "Canada",
	"au": "Australia",
	"it": "Italy",
	"es": "Spain",
	"nl": "Netherlands",
	"se": "Sweden",
	"no": "Norway",
	"fi": "Finland",
	"dk": "Denmark",
	"pl": "Poland",
	"cz": "Czech Republic",
	"at": "Austria",
	"ch": "Switzerland",
	"be": "Belgium",
	"pt": "Portugal",
	"gr": "Greece",
	"tr": "Turkey",
	"ua": "Ukraine",
	"ro": "Romania",
	"hu": "Hungary",
	"bg": "Bulgaria",
	"hr": "Croatia",
	"sk": "Slovakia",
	"lt": "Lithuania",
	"lv": "Latvia",
	"ee": "Estonia",
	"ie": "Ireland",
}

// simulatedSpread assigns CVE and technique volume, which carries no
// geographic signal at all, across a fixed country set using
// per-country divisors biased toward high-signal countries. This is a
// presentation heuristic, not a measurement; consumers must treat
// these counts as fabricated.
var simulatedSpread = []struct {
	country string
	divisor int64
}{
	{"United States", 3},
	{"China", 5},
	{"Russia", 6},
	{"Germany", 10},
	{"United Kingdom", 12},
	{"France", 14},
	{"South Korea", 16},
	{"India", 18},
	{"Brazil", 20},
	{"Netherlands", 25},
}

// CountryFromURL attempts to attribute a URL to a country by scanning
// its host ccTLD and then its path segments for a known two-letter
// code. The first match wins. URLs with no recognizable code yield
// ok=false and are silently excluded from the geographic view.
func CountryFromURL(raw string) (string, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return "", false
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "", false
	}

	// ccTLD first.
	hostParts := strings.Split(u.Hostname(), ".")
	if len(hostParts) >= 2 {
		tld := hostParts[len(hostParts)-1]
		if country, ok := countryCodes[tld]; ok {
			return country, true
		}
	}

	// Then path segments, left to right.
	for _, seg := range strings.Split(u.Path, "/") {
		if len(seg) != 2 {
			continue
		}
		if country, ok := countryCodes[seg]; ok {
			return country, true
		}
	}

	return "", false
}

// SimulatedSpread fabricates a proportional per-country allocation of
// count using the fixed divisor table. Every listed country receives at
// least one unit as long as count is positive; a zero count yields an
// empty result.
func SimulatedSpread(count int64) []models.Bucket {
	if count <= 0 {
		return []models.Bucket{}
	}

	buckets := make([]models.Bucket, 0, len(simulatedSpread))
	for _, entry := range simulatedSpread {
		share := count / entry.divisor
		if share < 1 {
			share = 1
		}
		buckets = append(buckets, models.Bucket{Label: entry.country, Count: share})
	}
	return buckets
}

// Geographic combines the measured URL-derived counts with the
// simulated CVE/technique spread into per-country totals, descending
// by total. Sub-counts are retained so consumers can separate the
// measured slice from the fabricated one.
func Geographic(urls []string, cveCount, techniqueCount int64) []models.CountryStat {
	byCountry := make(map[string]*models.CountryStat)

	get := func(country string) *models.CountryStat {
		if st, ok := byCountry[country]; ok {
			return st
		}
		st := &models.CountryStat{Country: country}
		byCountry[country] = st
		return st
	}

	for _, raw := range urls {
		country, ok := CountryFromURL(raw)
		if !ok {
			continue
		}
		get(country).MaliciousURLs++
	}

	for _, b := range SimulatedSpread(cveCount) {
		get(b.Label).CVEs += b.Count
	}
	for _, b := range SimulatedSpread(techniqueCount) {
		get(b.Label).Techniques += b.Count
	}

	stats := make([]models.CountryStat, 0, len(byCountry))
	for _, st := range byCountry {
		st.Total = st.MaliciousURLs + st.CVEs + st.Techniques
		stats = append(stats, *st)
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Total != stats[j].Total {
			return stats[i].Total > stats[j].Total
		}
		return stats[i].Country < stats[j].Country
	})

	return stats
}

// Columns reshapes per-country stats into the column-oriented payload
// the map view consumes.
func Columns(stats []models.CountryStat) *models.GeographicAnalysis {
	ga := &models.GeographicAnalysis{
		Countries:     make([]string, 0, len(stats)),
		MaliciousURLs: make([]int64, 0, len(stats)),
		CVEs:          make([]int64, 0, len(stats)),
		Techniques:    make([]int64, 0, len(stats)),
		Totals:        make([]int64, 0, len(stats)),
	}
	for _, st := range stats {
		ga.Countries = append(ga.Countries, st.Country)
		ga.MaliciousURLs = append(ga.MaliciousURLs, st.MaliciousURLs)
		ga.CVEs = append(ga.CVEs, st.CVEs)
		ga.Techniques = append(ga.Techniques, st.Techniques)
		ga.Totals = append(ga.Totals, st.Total)
	}
	return ga
}

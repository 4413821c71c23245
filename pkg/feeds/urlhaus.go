package feeds

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	libinjection "github.com/corazawaf/libinjection-go"
	"go.uber.org/zap"

	"github.com/harmonia-ir/intel-engine/pkg/models"
	"github.com/harmonia-ir/intel-engine/pkg/retry"
)

// URLhausFetcher downloads the URLhaus recent-URL feed (CSV with
// comment lines).
type URLhausFetcher struct {
	cfg      FeedConfig
	client   *http.Client
	retryCfg *retry.Config
	logger   *zap.Logger
}

// NewURLhausFetcher creates a URLhaus malicious-URL fetcher.
func NewURLhausFetcher(cfg FeedConfig, client *http.Client, retryCfg *retry.Config, logger *zap.Logger) *URLhausFetcher {
	return &URLhausFetcher{cfg: cfg, client: client, retryCfg: retryCfg, logger: logger.Named("urlhaus-feed")}
}

var _ Fetcher = (*URLhausFetcher)(nil)

func (f *URLhausFetcher) Name() string {
	return "urlhaus"
}

func (f *URLhausFetcher) Fetch(ctx context.Context, limit int) ([]*models.Indicator, error) {
	body, err := httpFetch(ctx, f.client, f.retryCfg, f.cfg.URL)
	if err != nil {
		return nil, err
	}

	indicators, err := f.parse(body, limit)
	if err != nil {
		return nil, err
	}

	f.logger.Info("Fetched URLhaus entries", zap.Int("count", len(indicators)))
	return indicators, nil
}

// URLhaus CSV columns: id, dateadded, url, url_status, last_online,
// threat, tags, urlhaus_link, reporter.
func (f *URLhausFetcher) parse(body []byte, limit int) ([]*models.Indicator, error) {
	// Strip the leading "# ..." comment block before handing the rest
	// to the CSV reader.
	var data bytes.Buffer
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		data.WriteString(line)
		data.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan URLhaus payload: %w", err)
	}

	reader := csv.NewReader(&data)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse URLhaus CSV: %w", err)
	}

	now := time.Now()
	indicators := make([]*models.Indicator, 0, len(records))
	for _, record := range records {
		if len(record) < 6 {
			continue
		}

		rawURL := strings.TrimSpace(record[2])
		if rawURL == "" {
			continue
		}
		threat := strings.TrimSpace(record[5])

		dateAdded := today()
		if ts, err := time.Parse("2006-01-02 15:04:05", strings.TrimSpace(record[1])); err == nil {
			dateAdded = ts.Format("2006-01-02")
		}

		indicators = append(indicators, &models.Indicator{
			IndicatorType:  models.TypeMaliciousURL,
			IndicatorValue: rawURL,
			Name:           hostOf(rawURL),
			Description:    fmt.Sprintf("Malicious URL (%s) reported by URLhaus", threat),
			Source:         f.cfg.Source,
			SeverityScore:  severityPtr(urlhausSeverity(rawURL, threat)),
			DateAdded:      dateAdded,
			CreatedAt:      now,
		})

		if limit > 0 && len(indicators) >= limit {
			break
		}
	}

	return indicators, nil
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return u.Hostname()
}

// urlhausSeverity scores a malicious URL: base 6.5, +1.0 for active
// malware distribution, +1.5 when the URL itself carries an injection
// payload (SQLi or XSS patterns in the path or query).
func urlhausSeverity(rawURL, threat string) float64 {
	score := 6.5
	if strings.EqualFold(threat, "malware_download") {
		score += 1.0
	}
	if carriesInjection(rawURL) {
		score += 1.5
	}
	return score
}

func carriesInjection(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	candidates := []string{u.RawQuery, u.Path}
	if decoded, err := url.QueryUnescape(u.RawQuery); err == nil {
		candidates = append(candidates, decoded)
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if isSQLi, _ := libinjection.IsSQLi(candidate); isSQLi {
			return true
		}
		if libinjection.IsXSS(candidate) {
			return true
		}
	}
	return false
}

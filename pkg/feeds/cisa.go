package feeds

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/harmonia-ir/intel-engine/pkg/models"
	"github.com/harmonia-ir/intel-engine/pkg/retry"
)

// CISAFetcher downloads the CISA Known Exploited Vulnerabilities
// catalog (CSV).
type CISAFetcher struct {
	cfg      FeedConfig
	client   *http.Client
	retryCfg *retry.Config
	logger   *zap.Logger
}

// NewCISAFetcher creates a CISA KEV catalog fetcher.
func NewCISAFetcher(cfg FeedConfig, client *http.Client, retryCfg *retry.Config, logger *zap.Logger) *CISAFetcher {
	return &CISAFetcher{cfg: cfg, client: client, retryCfg: retryCfg, logger: logger.Named("cisa-feed")}
}

var _ Fetcher = (*CISAFetcher)(nil)

func (f *CISAFetcher) Name() string {
	return "cisa_kev"
}

func (f *CISAFetcher) Fetch(ctx context.Context, limit int) ([]*models.Indicator, error) {
	body, err := httpFetch(ctx, f.client, f.retryCfg, f.cfg.URL)
	if err != nil {
		return nil, err
	}

	indicators, err := f.parse(body, limit)
	if err != nil {
		return nil, err
	}

	f.logger.Info("Fetched CISA KEV vulnerabilities", zap.Int("count", len(indicators)))
	return indicators, nil
}

func (f *CISAFetcher) parse(body []byte, limit int) ([]*models.Indicator, error) {
	reader := csv.NewReader(bytes.NewReader(body))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read KEV header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"cveID", "shortDescription", "dateAdded"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("KEV feed missing column %q", required)
		}
	}

	field := func(record []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	now := time.Now()
	indicators := make([]*models.Indicator, 0)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read KEV record: %w", err)
		}

		cveID := field(record, "cveID")
		if cveID == "" {
			continue
		}

		name := field(record, "product")
		if name == "" {
			name = field(record, "vendorProject")
		}

		dateAdded := field(record, "dateAdded")
		if _, err := time.Parse("2006-01-02", dateAdded); err != nil {
			dateAdded = today()
		}

		indicators = append(indicators, &models.Indicator{
			IndicatorType:  models.TypeCVEVulnerability,
			IndicatorValue: cveID,
			Name:           name,
			Description:    field(record, "shortDescription"),
			Source:         f.cfg.Source,
			SeverityScore:  severityPtr(kevSeverity(field(record, "knownRansomwareCampaignUse"))),
			DateAdded:      dateAdded,
			CreatedAt:      now,
		})

		if limit > 0 && len(indicators) >= limit {
			break
		}
	}

	return indicators, nil
}

// kevSeverity scores a KEV entry. Everything in the catalog is
// actively exploited, so the floor is high; known ransomware use
// pushes it higher.
func kevSeverity(ransomwareUse string) float64 {
	score := 7.5
	if strings.EqualFold(ransomwareUse, "Known") {
		score += 1.5
	}
	return score
}

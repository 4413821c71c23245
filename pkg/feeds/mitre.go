package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/harmonia-ir/intel-engine/pkg/jsonutil"
	"github.com/harmonia-ir/intel-engine/pkg/models"
	"github.com/harmonia-ir/intel-engine/pkg/retry"
)

// mitreTechnique is the subset of the ATT&CK technique payload the
// normalizer needs. Platform and data source fields have drifted
// between scalar and array forms across feed revisions, so they are
// parsed leniently.
type mitreTechnique struct {
	TechniqueID string          `json:"technique_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Platforms   json.RawMessage `json:"platform"`
	DataSources json.RawMessage `json:"data_sources"`
}

func (t mitreTechnique) platforms() []string {
	return jsonutil.FlexibleStringList(t.Platforms)
}

func (t mitreTechnique) dataSources() []string {
	return jsonutil.FlexibleStringList(t.DataSources)
}

// MITREFetcher downloads the ATT&CK enterprise technique catalog.
type MITREFetcher struct {
	cfg      FeedConfig
	client   *http.Client
	retryCfg *retry.Config
	logger   *zap.Logger
}

// NewMITREFetcher creates a MITRE ATT&CK technique fetcher.
func NewMITREFetcher(cfg FeedConfig, client *http.Client, retryCfg *retry.Config, logger *zap.Logger) *MITREFetcher {
	return &MITREFetcher{cfg: cfg, client: client, retryCfg: retryCfg, logger: logger.Named("mitre-feed")}
}

var _ Fetcher = (*MITREFetcher)(nil)

func (f *MITREFetcher) Name() string {
	return "mitre_attack"
}

func (f *MITREFetcher) Fetch(ctx context.Context, limit int) ([]*models.Indicator, error) {
	body, err := httpFetch(ctx, f.client, f.retryCfg, f.cfg.URL)
	if err != nil {
		return nil, err
	}

	var techniques []mitreTechnique
	if err := json.Unmarshal(body, &techniques); err != nil {
		return nil, fmt.Errorf("failed to parse MITRE payload: %w", err)
	}

	now := time.Now()
	indicators := make([]*models.Indicator, 0, len(techniques))
	for _, tech := range techniques {
		if tech.TechniqueID == "" || tech.Name == "" || tech.Description == "" {
			continue
		}

		indicators = append(indicators, &models.Indicator{
			IndicatorType:  models.TypeMITRETechnique,
			IndicatorValue: tech.TechniqueID,
			Name:           tech.Name,
			Description:    tech.Description,
			Source:         f.cfg.Source,
			SeverityScore:  severityPtr(mitreSeverity(tech)),
			DateAdded:      today(),
			CreatedAt:      now,
		})

		if limit > 0 && len(indicators) >= limit {
			break
		}
	}

	f.logger.Info("Fetched MITRE techniques", zap.Int("count", len(indicators)))
	return indicators, nil
}

// mitreSeverity scores a technique from its breadth: base 5.0, +1.0
// for techniques spanning more than three platforms, +0.5 when data
// sources exist to detect it.
func mitreSeverity(tech mitreTechnique) float64 {
	score := 5.0
	if len(tech.platforms()) > 3 {
		score += 1.0
	}
	if len(tech.dataSources()) > 0 {
		score += 0.5
	}
	return score
}

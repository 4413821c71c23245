package feeds

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/harmonia-ir/intel-engine/pkg/retry"
)

// FeedConfig describes one feed endpoint.
type FeedConfig struct {
	URL    string `yaml:"url"`
	Source string `yaml:"source"`
	Limit  int    `yaml:"limit"` // 0 = no limit
}

// Catalog is the set of configured feed endpoints, loaded from
// feeds.yaml so endpoints can be repointed without a rebuild.
type Catalog struct {
	MITRE   FeedConfig `yaml:"mitre"`
	CISA    FeedConfig `yaml:"cisa"`
	URLhaus FeedConfig `yaml:"urlhaus"`
}

// DefaultCatalog returns the standard public feed endpoints.
func DefaultCatalog() *Catalog {
	return &Catalog{
		MITRE: FeedConfig{
			URL:    "https://attack.mitre.org/api/techniques/enterprise/",
			Source: "MITRE ATT&CK",
		},
		CISA: FeedConfig{
			URL:    "https://www.cisa.gov/sites/default/files/csv/known_exploited_vulnerabilities.csv",
			Source: "CISA KEV Catalog",
		},
		URLhaus: FeedConfig{
			URL:    "https://urlhaus.abuse.ch/downloads/csv_recent/",
			Source: "URLhaus",
		},
	}
}

// LoadCatalog reads the feed catalog from path, falling back to the
// defaults when the file does not exist.
func LoadCatalog(path string) (*Catalog, error) {
	catalog := DefaultCatalog()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return catalog, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read feed catalog: %w", err)
	}

	if err := yaml.Unmarshal(data, catalog); err != nil {
		return nil, fmt.Errorf("failed to parse feed catalog: %w", err)
	}

	return catalog, nil
}

// Fetchers builds the configured fetcher set in ingestion order.
func (c *Catalog) Fetchers(logger *zap.Logger) []Fetcher {
	client := &http.Client{Timeout: 60 * time.Second}
	cfg := retry.DefaultConfig()

	return []Fetcher{
		NewMITREFetcher(c.MITRE, client, cfg, logger),
		NewCISAFetcher(c.CISA, client, cfg, logger),
		NewURLhausFetcher(c.URLhaus, client, cfg, logger),
	}
}

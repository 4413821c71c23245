// Package feeds downloads and normalizes external threat-intelligence
// feeds into indicator records: MITRE ATT&CK techniques, the CISA KEV
// vulnerability catalog, and the URLhaus malicious-URL feed.
package feeds

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/harmonia-ir/intel-engine/pkg/apperrors"
	"github.com/harmonia-ir/intel-engine/pkg/models"
	"github.com/harmonia-ir/intel-engine/pkg/retry"
)

const userAgent = "intel-engine/1.0 (Security Research)"

// Fetcher downloads one feed and yields normalized indicators.
type Fetcher interface {
	// Name identifies the feed in logs and data-update audit records.
	Name() string

	// Fetch downloads the feed and normalizes it. Limit caps the number
	// of indicators; zero means no limit.
	Fetch(ctx context.Context, limit int) ([]*models.Indicator, error)
}

// httpFetch downloads url with retry on transient failures and returns
// the response body.
func httpFetch(ctx context.Context, client *http.Client, cfg *retry.Config, url string) ([]byte, error) {
	body, err := retry.DoWithResult(ctx, cfg, func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
		}

		return io.ReadAll(resp.Body)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFeedUnavailable, err)
	}
	return body, nil
}

func today() string {
	return time.Now().Format("2006-01-02")
}

func clampSeverity(score float64) float64 {
	if score > 10 {
		return 10
	}
	if score < 0 {
		return 0
	}
	return score
}

func severityPtr(score float64) *float64 {
	s := clampSeverity(score)
	return &s
}

package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/harmonia-ir/intel-engine/pkg/models"
	"github.com/harmonia-ir/intel-engine/pkg/query"
)

func exportFixtures() []*models.Indicator {
	return []*models.Indicator{
		{
			ID: 1, IndicatorType: models.TypeCVEVulnerability, IndicatorValue: "CVE-2025-0001",
			Name: "Known Exploited RCE", Source: "CISA KEV Catalog",
			SeverityScore: severityOf(9.0), DateAdded: "2025-06-20",
		},
		{
			ID: 2, IndicatorType: models.TypeMaliciousURL, IndicatorValue: "http://bad.example/x",
			Name: "bad.example", Source: "URLhaus",
			SeverityScore: severityOf(6.5), DateAdded: "2025-06-25",
		},
		{
			ID: 3, IndicatorType: models.TypeMaliciousURL, IndicatorValue: "http://worse.example/y",
			Name: "worse.example", Source: "URLhaus",
			DateAdded: "2025-06-26",
		},
	}
}

func TestExportServiceExportData(t *testing.T) {
	t.Run("json export", func(t *testing.T) {
		dir := t.TempDir()
		indicators := &mockIndicatorRepo{listItems: exportFixtures()}
		exports := &mockExportRepo{}
		svc := NewExportService(indicators, exports, dir, zap.NewNop())

		exp, audited, err := svc.ExportData(context.Background(), "json", 30, query.Filters{})
		require.NoError(t, err)
		assert.True(t, audited)

		assert.Equal(t, "data", exp.ExportType)
		assert.Equal(t, "json", exp.Format)
		assert.Equal(t, 30, exp.Days)
		assert.Greater(t, exp.FileSize, int64(0))
		assert.Equal(t, 30, indicators.lastFilters.Days)

		data, err := os.ReadFile(filepath.Join(dir, exp.Filename))
		require.NoError(t, err)
		var decoded []*models.Indicator
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Len(t, decoded, 3)

		require.Len(t, exports.created, 1)
		assert.Equal(t, exp.Filename, exports.created[0].Filename)
	})

	t.Run("csv export", func(t *testing.T) {
		dir := t.TempDir()
		indicators := &mockIndicatorRepo{listItems: exportFixtures()}
		svc := NewExportService(indicators, &mockExportRepo{}, dir, zap.NewNop())

		exp, _, err := svc.ExportData(context.Background(), "csv", 0, query.Filters{})
		require.NoError(t, err)

		file, err := os.Open(filepath.Join(dir, exp.Filename))
		require.NoError(t, err)
		defer func() { _ = file.Close() }()

		records, err := csv.NewReader(file).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 4) // header + 3 rows
		assert.Equal(t, "indicator_type", records[0][1])
		assert.Equal(t, "CVE-2025-0001", records[1][2])
		// Unscored indicators export an empty severity cell.
		assert.Equal(t, "", records[3][6])
	})

	t.Run("unsupported format rejected", func(t *testing.T) {
		svc := NewExportService(&mockIndicatorRepo{}, &mockExportRepo{}, t.TempDir(), zap.NewNop())

		_, _, err := svc.ExportData(context.Background(), "xml", 0, query.Filters{})
		assert.Error(t, err)
	})

	t.Run("audit failure does not abort export", func(t *testing.T) {
		dir := t.TempDir()
		indicators := &mockIndicatorRepo{listItems: exportFixtures()}
		exports := &mockExportRepo{createErr: errors.New("insert failed")}
		svc := NewExportService(indicators, exports, dir, zap.NewNop())

		exp, audited, err := svc.ExportData(context.Background(), "json", 7, query.Filters{})
		require.NoError(t, err)

		assert.False(t, audited)
		_, statErr := os.Stat(filepath.Join(dir, exp.Filename))
		assert.NoError(t, statErr)
	})
}

func TestExportServiceHistory(t *testing.T) {
	exports := &mockExportRepo{recent: []*models.Export{{ID: 2}, {ID: 1}}}
	svc := NewExportService(&mockIndicatorRepo{}, exports, t.TempDir(), zap.NewNop())

	history, err := svc.History(context.Background())
	require.NoError(t, err)

	assert.Len(t, history, 2)
	assert.Equal(t, exportHistoryLimit, exports.lastLimit)
}

func TestMetrics(t *testing.T) {
	t.Run("summarizes indicator set", func(t *testing.T) {
		m := Metrics(exportFixtures())

		assert.Equal(t, int64(3), m.Total)
		assert.InDelta(t, 7.75, m.AverageSeverity, 0.001) // mean over scored rows only
		assert.Equal(t, int64(1), m.HighSeverity)
		assert.Equal(t, models.TypeMaliciousURL, m.MostCommonType)
		assert.Equal(t, "URLhaus", m.MostActiveSource)
	})

	t.Run("empty set", func(t *testing.T) {
		m := Metrics(nil)

		assert.Equal(t, int64(0), m.Total)
		assert.Zero(t, m.AverageSeverity)
		assert.Empty(t, m.MostCommonType)
	})
}

package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harmonia-ir/intel-engine/pkg/models"
	"github.com/harmonia-ir/intel-engine/pkg/query"
	"github.com/harmonia-ir/intel-engine/pkg/repositories"
)

const exportHistoryLimit = 20

// Export output formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// ExportMetrics summarizes an indicator set for report renderers.
type ExportMetrics struct {
	Total            int64   `json:"total_indicators"`
	AverageSeverity  float64 `json:"average_severity"`
	HighSeverity     int64   `json:"high_severity_count"`
	MostCommonType   string  `json:"most_common_type"`
	MostActiveSource string  `json:"most_active_source"`
}

// ExportService generates data exports and keeps the export audit
// trail. Audit failures never abort the export that triggered them.
type ExportService interface {
	// RecordExport inserts an audit row. Failure is logged and reported
	// as false; callers proceed regardless.
	RecordExport(ctx context.Context, exp *models.Export) bool
	History(ctx context.Context) ([]*models.Export, error)

	// ExportData writes the filtered indicator set to the exports
	// directory in the given format and records an audit row. The
	// returned bool reports whether the audit insert succeeded.
	ExportData(ctx context.Context, format string, days int, f query.Filters) (*models.Export, bool, error)
}

type exportService struct {
	indicators repositories.IndicatorRepository
	exports    repositories.ExportRepository
	dir        string
	logger     *zap.Logger
}

// NewExportService creates a new ExportService writing files under dir.
func NewExportService(indicators repositories.IndicatorRepository, exports repositories.ExportRepository, dir string, logger *zap.Logger) ExportService {
	return &exportService{
		indicators: indicators,
		exports:    exports,
		dir:        dir,
		logger:     logger.Named("export-service"),
	}
}

var _ ExportService = (*exportService)(nil)

func (s *exportService) RecordExport(ctx context.Context, exp *models.Export) bool {
	if err := s.exports.Create(ctx, exp); err != nil {
		s.logger.Error("failed to record export",
			zap.String("export_type", exp.ExportType),
			zap.String("filename", exp.Filename),
			zap.Error(err))
		return false
	}
	return true
}

func (s *exportService) History(ctx context.Context) ([]*models.Export, error) {
	exports, err := s.exports.ListRecent(ctx, exportHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("list export history: %w", err)
	}
	return exports, nil
}

func (s *exportService) ExportData(ctx context.Context, format string, days int, f query.Filters) (*models.Export, bool, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != FormatJSON && format != FormatCSV {
		return nil, false, fmt.Errorf("unsupported export format %q", format)
	}

	f.Days = days
	items, err := s.indicators.List(ctx, f, query.Sort{Field: "date_added", Order: "desc"})
	if err != nil {
		return nil, false, fmt.Errorf("load indicators for export: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, false, fmt.Errorf("create exports directory: %w", err)
	}

	filename := fmt.Sprintf("indicators_%s_%s.%s",
		time.Now().Format("20060102_150405"), uuid.NewString()[:8], format)
	path := filepath.Join(s.dir, filename)

	var size int64
	switch format {
	case FormatJSON:
		size, err = writeJSONExport(path, items)
	case FormatCSV:
		size, err = writeCSVExport(path, items)
	}
	if err != nil {
		return nil, false, err
	}

	exp := &models.Export{
		ExportType: "data",
		Format:     format,
		Days:       days,
		Filename:   filename,
		FileSize:   size,
		Parameters: map[string]any{"count": len(items)},
	}
	audited := s.RecordExport(ctx, exp)

	s.logger.Info("export written",
		zap.String("filename", filename),
		zap.Int("count", len(items)),
		zap.Int64("size", size))

	return exp, audited, nil
}

func writeJSONExport(path string, items []*models.Indicator) (int64, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create export file: %w", err)
	}
	defer func() { _ = file.Close() }()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return 0, fmt.Errorf("encode export: %w", err)
	}

	return fileSize(file)
}

func writeCSVExport(path string, items []*models.Indicator) (int64, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create export file: %w", err)
	}
	defer func() { _ = file.Close() }()

	w := csv.NewWriter(file)
	header := []string{"id", "indicator_type", "indicator_value", "name", "description", "source", "severity_score", "date_added"}
	if err := w.Write(header); err != nil {
		return 0, fmt.Errorf("write export header: %w", err)
	}

	for _, ind := range items {
		severity := ""
		if ind.SeverityScore != nil {
			severity = strconv.FormatFloat(*ind.SeverityScore, 'f', -1, 64)
		}
		record := []string{
			strconv.FormatInt(ind.ID, 10),
			ind.IndicatorType,
			ind.IndicatorValue,
			ind.Name,
			ind.Description,
			ind.Source,
			severity,
			ind.DateAdded,
		}
		if err := w.Write(record); err != nil {
			return 0, fmt.Errorf("write export row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("flush export: %w", err)
	}

	return fileSize(file)
}

func fileSize(file *os.File) (int64, error) {
	info, err := file.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat export file: %w", err)
	}
	return info.Size(), nil
}

// Metrics summarizes an indicator set. Safe on empty input.
func Metrics(items []*models.Indicator) ExportMetrics {
	m := ExportMetrics{Total: int64(len(items))}
	if len(items) == 0 {
		return m
	}

	var severitySum float64
	var scored int64
	typeCounts := make(map[string]int64)
	sourceCounts := make(map[string]int64)
	for _, ind := range items {
		if ind.SeverityScore != nil {
			severitySum += *ind.SeverityScore
			scored++
			if *ind.SeverityScore >= 7 {
				m.HighSeverity++
			}
		}
		typeCounts[ind.IndicatorType]++
		sourceCounts[ind.Source]++
	}

	if scored > 0 {
		m.AverageSeverity = severitySum / float64(scored)
	}
	m.MostCommonType = maxKey(typeCounts)
	m.MostActiveSource = maxKey(sourceCounts)
	return m
}

// maxKey picks the key with the highest count, breaking ties by the
// lexicographically smaller key so the result is deterministic.
func maxKey(counts map[string]int64) string {
	var best string
	var bestCount int64 = -1
	for k, c := range counts {
		if c > bestCount || (c == bestCount && k < best) {
			best, bestCount = k, c
		}
	}
	return best
}

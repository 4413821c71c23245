package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/harmonia-ir/intel-engine/pkg/models"
)

func indicatorMux(svc *mockIndicatorService) *http.ServeMux {
	mux := http.NewServeMux()
	NewIndicatorHandler(svc, zap.NewNop()).RegisterRoutes(mux)
	return mux
}

func TestIndicatorHandlerSearch(t *testing.T) {
	t.Run("passes parameters through", func(t *testing.T) {
		svc := &mockIndicatorService{result: &models.PagedIndicators{Items: []*models.Indicator{}}}
		mux := indicatorMux(svc)

		req := httptest.NewRequest(http.MethodGet,
			"/api/indicators?search=phish&type=MITRE+Technique&severity_min=5&page=2&per_page=50&sort_by=severity_score&sort_order=asc", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "phish", svc.lastReq.SearchTerm)
		assert.Equal(t, "MITRE Technique", svc.lastReq.IndicatorType)
		assert.Equal(t, "5", svc.lastReq.SeverityMin)
		assert.Equal(t, 2, svc.lastReq.Page)
		assert.Equal(t, 50, svc.lastReq.PerPage)
		assert.Equal(t, "severity_score", svc.lastReq.SortBy)
		assert.Equal(t, "asc", svc.lastReq.SortOrder)
	})

	t.Run("malformed page degrades to default", func(t *testing.T) {
		svc := &mockIndicatorService{result: &models.PagedIndicators{}}
		mux := indicatorMux(svc)

		req := httptest.NewRequest(http.MethodGet, "/api/indicators?page=banana", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, svc.lastReq.Page)
	})

	t.Run("store error yields 500", func(t *testing.T) {
		svc := &mockIndicatorService{err: errors.New("db down")}
		mux := indicatorMux(svc)

		req := httptest.NewRequest(http.MethodGet, "/api/indicators", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "search_failed", body["error"])
	})
}

func TestIndicatorHandlerFilterOptions(t *testing.T) {
	svc := &mockIndicatorService{options: &models.FilterOptions{
		Sources:   []string{"URLhaus"},
		DateRange: models.DateRange{Min: "2025-01-01", Max: "2025-06-26"},
	}}
	mux := indicatorMux(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/filter-options", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var opts models.FilterOptions
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opts))
	assert.Equal(t, []string{"URLhaus"}, opts.Sources)
	assert.Equal(t, "2025-06-26", opts.DateRange.Max)
}

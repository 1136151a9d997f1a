// Copyright 2026 The PhotoLoc Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/osintkit/photoloc/analysis"
	"github.com/osintkit/photoloc/intel"
	"github.com/osintkit/photoloc/score"
	"github.com/osintkit/photoloc/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRepository keeps analyses in a map, enough for handler tests.
type memoryRepository struct {
	saved map[string]analysis.Result
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{saved: make(map[string]analysis.Result)}
}

func (m *memoryRepository) CreateSchema() error { return nil }

func (m *memoryRepository) SaveAnalysis(result analysis.Result) error {
	m.saved[result.ImageID] = result

	return nil
}

func (m *memoryRepository) GetAnalysis(imageID string) (*StoredAnalysis, error) {
	result, ok := m.saved[imageID]
	if !ok {
		return nil, ErrAnalysisNotFound
	}

	return &StoredAnalysis{
		ImageID:           result.ImageID,
		OverallConfidence: result.Overall,
		Quality:           result.Quality.Label,
		EvidenceCount:     len(result.Evidence),
		AnalyzedAt:        result.AnalyzedAt,
	}, nil
}

func (m *memoryRepository) GetResult(imageID string) (*analysis.Result, error) {
	result, ok := m.saved[imageID]
	if !ok {
		return nil, ErrAnalysisNotFound
	}

	return &result, nil
}

func (m *memoryRepository) ListResults(_ string) ([]*StoredResult, error) { return nil, nil }
func (m *memoryRepository) CountAnalyses() (int, error)                   { return len(m.saved), nil }
func (m *memoryRepository) DB() *sql.DB                                   { return nil }

type stubGeocoder struct{}

func (stubGeocoder) Geocode(_ context.Context, _ string, _ int) ([]intel.GeocodeResult, error) {
	return nil, nil
}

func setupServerTest() (*gin.Engine, *memoryRepository) {
	gin.SetMode(gin.TestMode)

	repo := newMemoryRepository()
	pipeline := analysis.NewPipeline(stubGeocoder{})

	return NewServer(pipeline, repo).Router(), repo
}

func TestAnalyzeAPI(t *testing.T) {
	router, repo := setupServerTest()

	body, err := json.Marshal(analysis.Request{
		ImageID: "img-1",
		GPS:     &spatial.Point{Lat: 40.7128, Lng: -74.0060},
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/analyze", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Equal(t, "img-1", resp.ImageID)
	assert.Equal(t, 1, resp.ResultsCount)
	assert.InDelta(t, 0.95, resp.OverallConfidence, 1e-9)
	assert.Equal(t, "excellent", resp.Quality)
	require.NotNil(t, resp.BestEstimate)
	assert.InDelta(t, 40.7128, resp.BestEstimate.Point.Lat, 1e-9)

	_, ok := repo.saved["img-1"]
	assert.True(t, ok, "analysis must be persisted")
}

func TestAnalyzeAPIGeneratesImageID(t *testing.T) {
	router, _ := setupServerTest()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/analyze", bytes.NewReader([]byte(`{}`)))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ImageID)
}

func TestAnalyzeAPIBadRequest(t *testing.T) {
	router, _ := setupServerTest()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/analyze", bytes.NewReader([]byte(`{not json`)))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetResultsAPI(t *testing.T) {
	router, repo := setupServerTest()

	repo.saved["img-2"] = analysis.Result{
		ImageID: "img-2",
		Overall: 0.8,
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/results/img-2", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "img-2")
}

func TestGetResultsAPINotFound(t *testing.T) {
	router, _ := setupServerTest()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/results/missing", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetReportAPI(t *testing.T) {
	router, repo := setupServerTest()

	repo.saved["img-3"] = analysis.Result{
		ImageID: "img-3",
		Quality: score.Quality{Label: "poor", Score: 0.2},
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/report/img-3", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, w.Body.String(), "# Geolocation Analysis Report")
	assert.Contains(t, w.Body.String(), "img-3")
}

func TestStatsAPI(t *testing.T) {
	router, repo := setupServerTest()
	repo.saved["a"] = analysis.Result{ImageID: "a"}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/stats", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"analyses":1`)
}

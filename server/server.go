// Copyright 2026 The PhotoLoc Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/osintkit/photoloc/analysis"
	"github.com/osintkit/photoloc/intel"
	"github.com/osintkit/photoloc/score"
)

// Server serves the analysis pipeline over a JSON API.
type Server struct {
	pipeline *analysis.Pipeline
	repo     AnalysisRepository
}

// NewServer wires the pipeline to its persistence layer. A nil repo disables
// persistence: analyses still run but results are not stored.
func NewServer(pipeline *analysis.Pipeline, repo AnalysisRepository) *Server {
	return &Server{
		pipeline: pipeline,
		repo:     repo,
	}
}

// GeocoderFromEnv selects the geocoding backend from the environment:
// PHOTOLOC_GEOCODER=google uses Google Maps (the API key is taken from
// GOOGLE_MAPS_API_KEY, with an ADC fallback); anything else uses Nominatim.
func GeocoderFromEnv(ctx context.Context) intel.Geocoder {
	if os.Getenv("PHOTOLOC_GEOCODER") != "google" {
		log.Println("📍 Geocoding: Nominatim")

		return intel.NewNominatimGeocoder("")
	}

	apiKey := os.Getenv("GOOGLE_MAPS_API_KEY")
	if apiKey == "" {
		log.Println("GOOGLE_MAPS_API_KEY is not set. Attempting to retrieve via ADC...")

		var err error

		apiKey, err = intel.GoogleAPIKeyFromADC(ctx, "PhotoLoc Geocoding Key")
		if err != nil {
			log.Printf("Failed to retrieve API key via ADC: %v", err)
			log.Println("Falling back to Nominatim")

			return intel.NewNominatimGeocoder("")
		}

		log.Println("✅ Successfully retrieved Google Maps API Key via ADC")
	}

	log.Println("📍 Geocoding: Google Maps")

	return intel.NewGoogleMapsGeocoder(apiKey)
}

// Router builds the gin engine with all API routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	r.POST("/api/analyze", s.analyze)
	r.GET("/api/results/:image_id", s.getResults)
	r.GET("/api/report/:image_id", s.getReport)
	r.GET("/api/stats", s.getStats)

	return r
}

// Run serves the API on addr until the listener fails.
func (s *Server) Run(addr string) error {
	return s.Router().Run(addr)
}

type analyzeResponse struct {
	Success           bool            `json:"success"`
	ImageID           string          `json:"image_id"`
	ResultsCount      int             `json:"results_count"`
	OverallConfidence float64         `json:"overall_confidence"`
	Quality           string          `json:"quality"`
	BestEstimate      *score.Estimate `json:"best_estimate,omitempty"`
}

func (s *Server) analyze(ctx *gin.Context) {
	var req analysis.Request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if req.ImageID == "" {
		req.ImageID = uuid.NewString()
	}

	result := s.pipeline.Analyze(ctx.Request.Context(), req)

	if s.repo != nil {
		if err := s.repo.SaveAnalysis(result); err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

			return
		}
	}

	ctx.JSON(http.StatusOK, analyzeResponse{
		Success:           true,
		ImageID:           result.ImageID,
		ResultsCount:      len(result.Evidence),
		OverallConfidence: result.Overall,
		Quality:           result.Quality.Label,
		BestEstimate:      result.Estimate,
	})
}

func (s *Server) getResults(ctx *gin.Context) {
	if s.repo == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence is disabled"})

		return
	}

	imageID := ctx.Param("image_id")

	summary, err := s.repo.GetAnalysis(imageID)
	if errors.Is(err, ErrAnalysisNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "no analysis for image"})

		return
	}

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	results, err := s.repo.ListResults(imageID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"analysis": summary,
		"results":  results,
	})
}

func (s *Server) getReport(ctx *gin.Context) {
	if s.repo == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence is disabled"})

		return
	}

	result, err := s.repo.GetResult(ctx.Param("image_id"))
	if errors.Is(err, ErrAnalysisNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "no analysis for image"})

		return
	}

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	report, err := analysis.Report(*result)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report))
}

func (s *Server) getStats(ctx *gin.Context) {
	if s.repo == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence is disabled"})

		return
	}

	count, err := s.repo.CountAnalyses()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, gin.H{"analyses": count})
}

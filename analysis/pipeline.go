// Copyright 2026 The PhotoLoc Authors
// SPDX-License-Identifier: Apache-2.0

// Package analysis orchestrates the full geolocation workflow: scene text to
// clues, clues to geocoded candidates, candidates plus GPS and indicators to
// a fused estimate.
package analysis

import (
	"context"
	"time"

	"github.com/osintkit/photoloc/intel"
	"github.com/osintkit/photoloc/score"
	"github.com/osintkit/photoloc/spatial"
)

// SceneAnalysis holds the free-text sections produced by the vision analyzer
// for one image. Any section may be empty.
type SceneAnalysis struct {
	SignageAndText        []string `json:"signage_and_text"`
	LandmarksAndBuildings []string `json:"landmarks_and_buildings"`
	Infrastructure        []string `json:"infrastructure"`
	SceneOverview         string   `json:"scene_overview"`
	DetailedAnalysis      string   `json:"detailed_analysis"`
}

// texts flattens the sections into source-tagged fragments for extraction.
func (s SceneAnalysis) texts() []intel.SceneText {
	var out []intel.SceneText

	appendAll := func(source string, texts []string) {
		for _, t := range texts {
			out = append(out, intel.SceneText{Source: source, Text: t})
		}
	}

	appendAll("signage_and_text", s.SignageAndText)
	appendAll("landmarks_and_buildings", s.LandmarksAndBuildings)
	appendAll("infrastructure", s.Infrastructure)
	appendAll("scene_overview", []string{s.SceneOverview})
	appendAll("detailed_analysis", []string{s.DetailedAnalysis})

	return out
}

// Indicator mirrors a pre-structured geographic indicator from the vision
// analyzer. Confidence is a pointer so that an absent value can be told apart
// from zero and defaulted.
type Indicator struct {
	Method     string         `json:"method"`
	Point      *spatial.Point `json:"point,omitempty"`
	Confidence *float64       `json:"confidence,omitempty"`
}

// Request carries all evidence inputs for one image.
type Request struct {
	ImageID    string         `json:"image_id"`
	Scene      SceneAnalysis  `json:"scene"`
	GPS        *spatial.Point `json:"gps,omitempty"`
	Indicators []Indicator    `json:"indicators,omitempty"`
}

// EvidenceRecord is the serializable view of one pooled evidence item.
type EvidenceRecord struct {
	Method     string         `json:"method"`
	Point      *spatial.Point `json:"point,omitempty"`
	Confidence float64        `json:"confidence"`
}

// Result is the full analysis output for one image.
type Result struct {
	ImageID    string            `json:"image_id"`
	AnalyzedAt time.Time         `json:"analyzed_at"`
	Clues      []intel.Clue      `json:"clues"`
	Candidates []intel.Candidate `json:"candidates"`
	Evidence   []EvidenceRecord  `json:"evidence"`
	Overall    float64           `json:"overall_confidence"`
	Estimate   *score.Estimate   `json:"best_estimate,omitempty"`
	Quality    score.Quality     `json:"quality"`
}

// Pipeline wires the extractor, correlator, resolver, and scorer together.
// One pipeline may serve many analyses; the geocoding cache and rate gate are
// shared across them.
type Pipeline struct {
	resolver *intel.Resolver
}

// NewPipeline creates a pipeline resolving through the given geocoder.
func NewPipeline(geocoder intel.Geocoder) *Pipeline {
	return &Pipeline{resolver: intel.NewResolver(geocoder)}
}

// Analyze runs the full workflow. It never fails: missing or malformed
// sections yield fewer clues, failed geocoding yields fewer candidates, and
// an empty evidence pool yields a zero-confidence result with no estimate.
// Cancelling ctx abandons pending geocoding but keeps evidence already
// gathered.
func (p *Pipeline) Analyze(ctx context.Context, req Request) Result {
	clues := intel.ExtractClues(req.Scene.texts())
	groups := intel.Correlate(clues)
	candidates := p.resolver.ResolveGroups(ctx, groups)

	var evidence []score.Evidence

	if req.GPS != nil {
		evidence = append(evidence, score.NewGPSFix(*req.GPS))
	}

	evidence = append(evidence, score.FromCandidates(candidates)...)

	for _, ind := range req.Indicators {
		var conf float64
		if ind.Confidence != nil {
			conf = *ind.Confidence
		}

		evidence = append(evidence, score.NewIndicator(ind.Method, ind.Point, conf))
	}

	result := Result{
		ImageID:    req.ImageID,
		AnalyzedAt: time.Now().UTC(),
		Clues:      clues,
		Candidates: candidates,
		Evidence:   records(evidence),
		Overall:    score.OverallConfidence(evidence),
		Quality:    score.AnalyzeQuality(evidence),
	}

	if est, ok := score.BestEstimate(evidence); ok {
		result.Estimate = &est
	}

	return result
}

func records(evidence []score.Evidence) []EvidenceRecord {
	out := make([]EvidenceRecord, 0, len(evidence))

	for _, e := range evidence {
		rec := EvidenceRecord{
			Method:     e.Method(),
			Confidence: e.Confidence(),
		}

		if p, ok := e.Coordinates(); ok {
			point := p
			rec.Point = &point
		}

		out = append(out, rec)
	}

	return out
}

// Copyright 2026 The PhotoLoc Authors
// SPDX-License-Identifier: Apache-2.0

package score

import (
	"math"
	"testing"

	"github.com/osintkit/photoloc/spatial"
)

var (
	nyc    = spatial.Point{Lat: 40.7128, Lng: -74.0060}
	nearby = spatial.Point{Lat: 40.7138, Lng: -74.0050}
	la     = spatial.Point{Lat: 34.0522, Lng: -118.2437}
)

func indicator(method string, p *spatial.Point, conf float64) Evidence {
	return NewIndicator(method, p, conf)
}

func TestOverallConfidenceEmpty(t *testing.T) {
	if got := OverallConfidence(nil); got != 0 {
		t.Errorf("OverallConfidence(nil) = %f, want 0", got)
	}
}

func TestOverallConfidenceSingleGPS(t *testing.T) {
	got := OverallConfidence([]Evidence{NewGPSFix(nyc)})
	if math.Abs(got-0.95) > 1e-9 {
		t.Errorf("OverallConfidence() = %f, want 0.95", got)
	}
}

func TestOverallConfidenceDiversityBonus(t *testing.T) {
	// Same confidence and location throughout, so the base stays constant and
	// only the diversity bonus moves the result.
	methods := []string{MethodStreetSigns, MethodLandmarkDetection, MethodArchitecture, MethodVegetation}

	var prev float64

	for n := 1; n <= len(methods); n++ {
		var evidence []Evidence
		for _, m := range methods[:n] {
			evidence = append(evidence, indicator(m, &nyc, 0.8))
		}

		got := OverallConfidence(evidence)
		if n > 1 && got <= prev {
			t.Errorf("confidence with %d methods = %f, not above %f", n, got, prev)
		}

		prev = got
	}
}

func TestOverallConfidenceDuplicateMethodDoesNotInflate(t *testing.T) {
	one := OverallConfidence([]Evidence{
		indicator(MethodStreetSigns, &nyc, 0.8),
	})
	three := OverallConfidence([]Evidence{
		indicator(MethodStreetSigns, &nyc, 0.8),
		indicator(MethodStreetSigns, &nyc, 0.8),
		indicator(MethodStreetSigns, &nyc, 0.8),
	})

	// Repeating one method multiplies both the weighted sum and nothing else;
	// normalization is by distinct methods, so the score grows with volume but
	// never earns a diversity bonus.
	if three < one {
		t.Errorf("three same-method items = %f, below single = %f", three, one)
	}

	two := OverallConfidence([]Evidence{
		indicator(MethodStreetSigns, &nyc, 0.8),
		indicator(MethodLandmarkDetection, &nyc, 0.8),
	})

	if two <= one {
		t.Errorf("two distinct methods = %f, not above single = %f", two, one)
	}
}

func TestOverallConfidenceConflictPenalty(t *testing.T) {
	near := OverallConfidence([]Evidence{
		NewGPSFix(nyc),
		indicator(MethodStreetSigns, &nearby, 0.8),
	})
	far := OverallConfidence([]Evidence{
		NewGPSFix(nyc),
		indicator(MethodStreetSigns, &la, 0.8),
	})

	// NYC to LA is far beyond the 100 km tier.
	if diff := near - far; math.Abs(diff-0.20) > 1e-9 {
		t.Errorf("conflict penalty = %f, want 0.20", diff)
	}
}

func TestOverallConfidenceConflictTiers(t *testing.T) {
	// Points offset north of a base coordinate by roughly the given distance.
	offset := func(meters float64) spatial.Point {
		return spatial.Point{Lat: nyc.Lat + meters/111195, Lng: nyc.Lng}
	}

	tests := []struct {
		name        string
		other       spatial.Point
		wantPenalty float64
	}{
		{"within a kilometer", offset(500), 0},
		{"a few kilometers", offset(5_000), 0.05},
		{"tens of kilometers", offset(30_000), 0.10},
		{"up to a hundred kilometers", offset(80_000), 0.15},
		{"beyond a hundred kilometers", offset(200_000), 0.20},
	}

	baseline := OverallConfidence([]Evidence{
		NewGPSFix(nyc),
		indicator(MethodStreetSigns, &nyc, 0.8),
	})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OverallConfidence([]Evidence{
				NewGPSFix(nyc),
				indicator(MethodStreetSigns, &tt.other, 0.8),
			})

			if diff := baseline - got; math.Abs(diff-tt.wantPenalty) > 1e-9 {
				t.Errorf("penalty = %f, want %f", diff, tt.wantPenalty)
			}
		})
	}
}

func TestOverallConfidenceClamped(t *testing.T) {
	var evidence []Evidence
	for _, m := range []string{MethodEXIFGPS, MethodStreetSigns, MethodLandmarkDetection, MethodVisionAPI} {
		evidence = append(evidence, indicator(m, &nyc, 1.0))
	}

	got := OverallConfidence(evidence)
	if got > 1 {
		t.Errorf("OverallConfidence() = %f, exceeds 1", got)
	}

	if got != 1 {
		t.Errorf("OverallConfidence() = %f, want clamp to exactly 1", got)
	}
}

func TestOverallConfidenceCoordinateFreeHalfWeight(t *testing.T) {
	with := OverallConfidence([]Evidence{indicator(MethodVisionAPI, &nyc, 0.8)})
	without := OverallConfidence([]Evidence{indicator(MethodVisionAPI, nil, 0.8)})

	if math.Abs(with-0.8) > 1e-9 {
		t.Errorf("coordinate-bearing = %f, want 0.8", with)
	}

	if math.Abs(without-0.4) > 1e-9 {
		t.Errorf("coordinate-free = %f, want 0.4", without)
	}
}

func TestBestEstimateNoCoordinates(t *testing.T) {
	if _, ok := BestEstimate([]Evidence{indicator(MethodTextLanguage, nil, 0.7)}); ok {
		t.Error("BestEstimate() ok = true for coordinate-free pool")
	}

	if _, ok := BestEstimate(nil); ok {
		t.Error("BestEstimate(nil) ok = true")
	}
}

func TestBestEstimateSingleSource(t *testing.T) {
	est, ok := BestEstimate([]Evidence{NewGPSFix(nyc)})
	if !ok {
		t.Fatal("BestEstimate() ok = false")
	}

	if est.Point != nyc {
		t.Errorf("Point = %+v, want %+v verbatim", est.Point, nyc)
	}

	if est.Confidence != 0.95 {
		t.Errorf("Confidence = %f, want 0.95", est.Confidence)
	}

	if est.AccuracyMeters != 10 {
		t.Errorf("AccuracyMeters = %d, want 10", est.AccuracyMeters)
	}

	if est.EvidenceCount != 1 || len(est.Methods) != 1 || est.Methods[0] != MethodEXIFGPS {
		t.Errorf("Methods = %v, EvidenceCount = %d", est.Methods, est.EvidenceCount)
	}
}

func TestBestEstimateWeightedCentroid(t *testing.T) {
	est, ok := BestEstimate([]Evidence{
		NewGPSFix(nyc),
		indicator(MethodStreetSigns, &nearby, 0.9),
	})
	if !ok {
		t.Fatal("BestEstimate() ok = false")
	}

	// The centroid lands between the two points, closer to the heavier GPS fix.
	if est.Point.Lat <= nyc.Lat || est.Point.Lat >= nearby.Lat {
		t.Errorf("centroid lat = %f, want between %f and %f", est.Point.Lat, nyc.Lat, nearby.Lat)
	}

	mid := (nyc.Lat + nearby.Lat) / 2
	if est.Point.Lat >= mid {
		t.Errorf("centroid lat = %f, want below midpoint %f (GPS weighs more)", est.Point.Lat, mid)
	}

	if est.AccuracyMeters != 10 {
		t.Errorf("AccuracyMeters = %d, want the best contributor (10)", est.AccuracyMeters)
	}

	if est.EvidenceCount != 2 {
		t.Errorf("EvidenceCount = %d, want 2", est.EvidenceCount)
	}

	wantMethods := []string{MethodEXIFGPS, MethodStreetSigns}
	if len(est.Methods) != 2 || est.Methods[0] != wantMethods[0] || est.Methods[1] != wantMethods[1] {
		t.Errorf("Methods = %v, want %v sorted", est.Methods, wantMethods)
	}
}

func TestAnalyzeQuality(t *testing.T) {
	tests := []struct {
		name      string
		evidence  []Evidence
		wantLabel string
		wantScore float64
	}{
		{
			name:      "no evidence",
			evidence:  nil,
			wantLabel: "no_evidence",
			wantScore: 0,
		},
		{
			name: "no coordinates",
			evidence: []Evidence{
				indicator(MethodTextLanguage, nil, 0.9),
				indicator(MethodVegetation, nil, 0.9),
			},
			wantLabel: "no_location",
			wantScore: 0,
		},
		{
			name: "gps wins regardless of the rest",
			evidence: []Evidence{
				NewGPSFix(nyc),
				indicator(MethodVegetation, &la, 0.3),
			},
			wantLabel: "excellent",
			wantScore: 0.9,
		},
		{
			name: "high confidence corroborated",
			evidence: []Evidence{
				indicator(MethodStreetSigns, &nyc, 0.9),
				indicator(MethodVegetation, &nyc, 0.6),
			},
			wantLabel: "good",
			wantScore: 0.7,
		},
		{
			name: "corroborated but modest",
			evidence: []Evidence{
				indicator(MethodStreetSigns, &nyc, 0.7),
				indicator(MethodVegetation, &nyc, 0.6),
			},
			wantLabel: "fair",
			wantScore: 0.5,
		},
		{
			name: "single decent method",
			evidence: []Evidence{
				indicator(MethodStreetSigns, &nyc, 0.7),
			},
			wantLabel: "limited",
			wantScore: 0.4,
		},
		{
			name: "single weak method",
			evidence: []Evidence{
				indicator(MethodVegetation, &nyc, 0.5),
			},
			wantLabel: "poor",
			wantScore: 0.2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeQuality(tt.evidence)
			if got.Label != tt.wantLabel {
				t.Errorf("Label = %q, want %q", got.Label, tt.wantLabel)
			}

			if got.Score != tt.wantScore {
				t.Errorf("Score = %f, want %f", got.Score, tt.wantScore)
			}
		})
	}
}

func TestAnalyzeQualityCounters(t *testing.T) {
	q := AnalyzeQuality([]Evidence{
		NewGPSFix(nyc),
		indicator(MethodStreetSigns, &nyc, 0.9),
		indicator(MethodTextLanguage, nil, 0.4),
	})

	if q.MethodCount != 3 || q.TotalEvidence != 3 {
		t.Errorf("MethodCount = %d, TotalEvidence = %d", q.MethodCount, q.TotalEvidence)
	}

	if q.HighConfidenceCount != 2 { // GPS 0.95 and street signs 0.9
		t.Errorf("HighConfidenceCount = %d, want 2", q.HighConfidenceCount)
	}

	if !q.HasCoordinates {
		t.Error("HasCoordinates = false")
	}

	wantAvg := (0.95 + 0.9 + 0.4) / 3
	if math.Abs(q.AvgConfidence-wantAvg) > 1e-9 {
		t.Errorf("AvgConfidence = %f, want %f", q.AvgConfidence, wantAvg)
	}
}

func TestOverallConfidenceDeterministic(t *testing.T) {
	evidence := []Evidence{
		NewGPSFix(nyc),
		indicator(MethodStreetSigns, &nearby, 0.8),
		indicator(MethodTextLanguage, nil, 0.6),
	}

	first := OverallConfidence(evidence)
	second := OverallConfidence(evidence)

	if first != second {
		t.Errorf("OverallConfidence() not deterministic: %f then %f", first, second)
	}
}

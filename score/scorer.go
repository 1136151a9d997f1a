// Copyright 2026 The PhotoLoc Authors
// SPDX-License-Identifier: Apache-2.0

package score

import (
	"sort"

	"github.com/osintkit/photoloc/spatial"
)

// methodWeights maps evidence methods to reliability weights, reflecting
// real-world trustworthiness of each acquisition technique. Kept as one table
// so the weights can be tuned and tested independently of control flow.
var methodWeights = map[string]float64{
	MethodEXIFGPS:              0.95,
	MethodLandmarkDetection:    0.85,
	MethodLicensePlate:         0.80,
	MethodStreetSigns:          0.75,
	MethodVisionAPI:            0.75,
	MethodReverseImage:         0.70,
	MethodGeographicText:       0.70,
	MethodLocationIntelligence: 0.70,
	MethodArchitecture:         0.65,
	MethodOCRText:              0.65,
	MethodTextLanguage:         0.60,
	MethodVegetation:           0.55,
	MethodLicenseFormat:        0.50,
}

// defaultMethodWeight applies to methods absent from the table.
const defaultMethodWeight = 0.30

// accuracyEstimates gives the typical positional uncertainty in meters for
// each method.
var accuracyEstimates = map[string]int{
	MethodEXIFGPS:              10,
	MethodLandmarkDetection:    100,
	MethodStreetSigns:          500,
	MethodVisionAPI:            1000,
	MethodLocationIntelligence: 1000,
	MethodGeographicText:       5000,
	MethodOCRText:              10000,
	MethodLicensePlate:         50000,
	MethodArchitecture:         100000,
	MethodTextLanguage:         1000000,
}

const defaultAccuracyEstimate = 10000

func methodWeight(method string) float64 {
	if w, ok := methodWeights[method]; ok {
		return w
	}

	return defaultMethodWeight
}

func accuracyEstimate(method string) int {
	if m, ok := accuracyEstimates[method]; ok {
		return m
	}

	return defaultAccuracyEstimate
}

// OverallConfidence combines the full evidence pool into a single score in
// [0,1]. Per-item weighted scores are normalized by the summed weights of the
// distinct methods present (not per item), so many low-value items of one
// method cannot inflate the result beyond what one would contribute. A
// diversity bonus rewards independent corroboration; a conflict penalty
// punishes evidence that disagrees on location. The input is never mutated.
func OverallConfidence(evidence []Evidence) float64 {
	if len(evidence) == 0 {
		return 0
	}

	var weightedSum float64

	methods := make(map[string]bool)

	for _, e := range evidence {
		w := methodWeight(e.Method())
		if _, ok := e.Coordinates(); !ok {
			// Coordinate-free evidence still contributes, at half weight.
			w *= 0.5
		}

		weightedSum += normalizeConfidence(e.Confidence()) * w
		methods[e.Method()] = true
	}

	var totalWeight float64
	for m := range methods {
		totalWeight += methodWeight(m)
	}

	if totalWeight == 0 {
		return 0
	}

	base := weightedSum / totalWeight
	final := base + diversityBonus(len(methods)) - conflictPenalty(evidence)

	return clamp01(final)
}

// diversityBonus rewards corroboration across independent methods.
func diversityBonus(methodCount int) float64 {
	switch {
	case methodCount >= 4:
		return 0.15
	case methodCount == 3:
		return 0.10
	case methodCount == 2:
		return 0.05
	default:
		return 0
	}
}

// conflictPenalty grows with the maximum pairwise haversine distance between
// coordinate-bearing items. Evidence disagreeing by kilometers sharply erodes
// confidence no matter how reliable each item looked on its own.
func conflictPenalty(evidence []Evidence) float64 {
	var points []spatial.Point

	for _, e := range evidence {
		if p, ok := e.Coordinates(); ok {
			points = append(points, p)
		}
	}

	maxDist := spatial.MaxPairwiseDistance(points)

	switch {
	case maxDist > 100_000:
		return 0.20
	case maxDist > 50_000:
		return 0.15
	case maxDist > 10_000:
		return 0.10
	case maxDist > 1_000:
		return 0.05
	default:
		return 0
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}

	if v > 1 {
		return 1
	}

	return v
}

// Estimate is the fused location output.
type Estimate struct {
	Point          spatial.Point `json:"point"`
	Confidence     float64       `json:"confidence"`
	AccuracyMeters int           `json:"accuracy_meters"`
	Methods        []string      `json:"methods"`
	EvidenceCount  int           `json:"evidence_count"`
}

// BestEstimate fuses the coordinate-bearing evidence into one location. A
// single item is returned verbatim with its own confidence and its method's
// accuracy estimate. Multiple items are averaged with confidence×reliability
// weights; the reported accuracy is the best (minimum) among contributors and
// the attached confidence is the overall pool confidence. Returns false when
// no evidence carries coordinates.
func BestEstimate(evidence []Evidence) (Estimate, bool) {
	type located struct {
		point      spatial.Point
		method     string
		confidence float64
	}

	var coords []located

	for _, e := range evidence {
		p, ok := e.Coordinates()
		if !ok {
			continue
		}

		coords = append(coords, located{
			point:      p,
			method:     e.Method(),
			confidence: normalizeConfidence(e.Confidence()),
		})
	}

	if len(coords) == 0 {
		return Estimate{}, false
	}

	if len(coords) == 1 {
		only := coords[0]

		return Estimate{
			Point:          only.point,
			Confidence:     only.confidence,
			AccuracyMeters: accuracyEstimate(only.method),
			Methods:        []string{only.method},
			EvidenceCount:  1,
		}, true
	}

	weighted := make([]spatial.Weighted, 0, len(coords))
	bestAccuracy := accuracyEstimate(coords[0].method)
	methods := make(map[string]bool)

	for _, c := range coords {
		weighted = append(weighted, spatial.Weighted{
			Point:  c.point,
			Weight: c.confidence * methodWeight(c.method),
		})

		if acc := accuracyEstimate(c.method); acc < bestAccuracy {
			bestAccuracy = acc
		}

		methods[c.method] = true
	}

	centroid, ok := spatial.WeightedCentroid(weighted)
	if !ok {
		return Estimate{}, false
	}

	return Estimate{
		Point:          centroid,
		Confidence:     OverallConfidence(evidence),
		AccuracyMeters: bestAccuracy,
		Methods:        sortedMethods(methods),
		EvidenceCount:  len(coords),
	}, true
}

// Quality describes the overall evidence pool.
type Quality struct {
	Label               string   `json:"quality"`
	Score               float64  `json:"score"`
	MethodCount         int      `json:"method_count"`
	Methods             []string `json:"methods"`
	AvgConfidence       float64  `json:"avg_confidence"`
	HighConfidenceCount int      `json:"high_confidence_count"`
	HasCoordinates      bool     `json:"has_coordinates"`
	TotalEvidence       int      `json:"total_evidence"`
}

// AnalyzeQuality classifies the evidence pool with a fixed priority cascade:
// the first matching condition wins.
func AnalyzeQuality(evidence []Evidence) Quality {
	if len(evidence) == 0 {
		return Quality{Label: "no_evidence", Score: 0}
	}

	methods := make(map[string]bool)

	var (
		hasCoordinates bool
		highCount      int
		total          float64
	)

	for _, e := range evidence {
		methods[e.Method()] = true

		if _, ok := e.Coordinates(); ok {
			hasCoordinates = true
		}

		c := normalizeConfidence(e.Confidence())
		if c > 0.8 {
			highCount++
		}

		total += c
	}

	avg := total / float64(len(evidence))
	methodCount := len(methods)

	var (
		label string
		s     float64
	)

	switch {
	case !hasCoordinates:
		label, s = "no_location", 0.0
	case methods[MethodEXIFGPS]:
		label, s = "excellent", 0.9
	case highCount > 0 && methodCount >= 2:
		label, s = "good", 0.7
	case methodCount >= 2:
		label, s = "fair", 0.5
	case avg > 0.6:
		label, s = "limited", 0.4
	default:
		label, s = "poor", 0.2
	}

	return Quality{
		Label:               label,
		Score:               s,
		MethodCount:         methodCount,
		Methods:             sortedMethods(methods),
		AvgConfidence:       avg,
		HighConfidenceCount: highCount,
		HasCoordinates:      hasCoordinates,
		TotalEvidence:       len(evidence),
	}
}

func sortedMethods(methods map[string]bool) []string {
	out := make([]string, 0, len(methods))
	for m := range methods {
		out = append(out, m)
	}

	sort.Strings(out)

	return out
}

// Copyright 2026 The PhotoLoc Authors
// SPDX-License-Identifier: Apache-2.0

package intel

import (
	"math"

	"github.com/osintkit/photoloc/spatial"
)

// SourceGeocodingCorrelation tags candidates produced by clue correlation and
// geocoding.
const SourceGeocodingCorrelation = "geocoding_correlation"

// maxCandidateConfidence is a hard ceiling: text-derived geocoding is never as
// trustworthy as a direct GPS reading.
const maxCandidateConfidence = 0.95

// Candidate is a resolved geographic hypothesis. Immutable once created.
type Candidate struct {
	Point          spatial.Point `json:"point"`
	Confidence     float64       `json:"confidence"` // in [0, 0.95]
	Address        string        `json:"address"`
	City           string        `json:"city"`
	State          string        `json:"state"`
	Country        string        `json:"country"`
	AccuracyMeters int           `json:"accuracy_meters"`
	MatchedClues   Group         `json:"matched_clues"`
	Source         string        `json:"source"`
}

// placeTypeAccuracy estimates positional uncertainty in meters from the
// geocoder's place type.
var placeTypeAccuracy = map[string]int{
	"building":      10,
	"house":         20,
	"shop":          30,
	"restaurant":    30,
	"amenity":       50,
	"street":        100,
	"neighbourhood": 500,
	"suburb":        1000,
	"city":          5000,
	"state":         50000,
}

// defaultAccuracyMeters applies when the place type is unrecognized.
const defaultAccuracyMeters = 1000

// estimateAccuracy maps a geocoder place type to meters of uncertainty.
func estimateAccuracy(placeType string) int {
	if m, ok := placeTypeAccuracy[placeType]; ok {
		return m
	}

	return defaultAccuracyMeters
}

// newCandidate builds a candidate from one geocoding result and the clue
// group whose query produced it.
func newCandidate(res GeocodeResult, matched Group) Candidate {
	return Candidate{
		Point:          res.Point,
		Confidence:     candidateConfidence(res, matched),
		Address:        res.DisplayName,
		City:           res.City,
		State:          res.State,
		Country:        res.Country,
		AccuracyMeters: estimateAccuracy(res.PlaceType),
		MatchedClues:   matched,
		Source:         SourceGeocodingCorrelation,
	}
}

// candidateConfidence scores a geocoding result against the clue group that
// produced it: a 0.5 base, a bonus per clue (capped), the mean clue prior,
// the geocoder's own relevance, and a place-type precision bonus, all
// additive under the 0.95 ceiling.
func candidateConfidence(res GeocodeResult, matched Group) float64 {
	const base = 0.5

	clueBonus := math.Min(0.3, float64(len(matched))*0.1)

	var sum float64
	for _, c := range matched {
		sum += c.Confidence
	}

	var meanBonus float64
	if len(matched) > 0 {
		meanBonus = sum / float64(len(matched)) * 0.2
	}

	importanceBonus := res.Importance * 0.2

	precisionBonus := 0.1

	switch res.PlaceType {
	case "building", "shop", "restaurant":
		precisionBonus = 0.2
	}

	return math.Min(maxCandidateConfidence, base+clueBonus+meanBonus+importanceBonus+precisionBonus)
}

// Copyright 2026 The PhotoLoc Authors
// SPDX-License-Identifier: Apache-2.0

// Package score aggregates heterogeneous geolocation evidence into a single
// confidence-weighted location estimate.
package score

import (
	"github.com/osintkit/photoloc/intel"
	"github.com/osintkit/photoloc/spatial"
)

// Well-known evidence method identifiers. Methods outside this set are
// accepted and weighted at the unknown-method default.
const (
	MethodEXIFGPS              = "EXIF_GPS"
	MethodLocationIntelligence = "location_intelligence"
	MethodLandmarkDetection    = "landmark_detection"
	MethodLicensePlate         = "license_plate"
	MethodStreetSigns          = "street_signs"
	MethodArchitecture         = "architecture"
	MethodTextLanguage         = "text_language"
	MethodVegetation           = "vegetation"
	MethodLicenseFormat        = "license_format"
	MethodReverseImage         = "reverse_image"
	MethodVisionAPI            = "vision_api"
	MethodOCRText              = "ocr_text"
	MethodGeographicText       = "geographic_text"
)

// Evidence is anything eligible for confidence aggregation: a GPS fix, a
// geocoded candidate, or a raw AI-reported indicator. The scorer depends only
// on this capability set, never on a concrete type.
type Evidence interface {
	// Method identifies how the evidence was obtained (see Method* constants).
	Method() string
	// Coordinates returns the location this evidence points at, if it has one.
	Coordinates() (spatial.Point, bool)
	// Confidence is the evidence's own reliability estimate in [0,1].
	Confidence() float64
}

// defaultConfidence applies when a confidence value is absent or out of
// range. Partial evidence degrades the score, never errors.
const defaultConfidence = 0.5

func normalizeConfidence(c float64) float64 {
	if c <= 0 {
		return defaultConfidence
	}

	if c > 1 {
		return 1
	}

	return c
}

// GPSFix is a coordinate read from image EXIF metadata, the most reliable
// evidence this system sees.
type GPSFix struct {
	point spatial.Point
}

// NewGPSFix wraps an EXIF GPS coordinate as evidence.
func NewGPSFix(p spatial.Point) GPSFix {
	return GPSFix{point: p}
}

// Method implements Evidence.
func (f GPSFix) Method() string { return MethodEXIFGPS }

// Coordinates implements Evidence.
func (f GPSFix) Coordinates() (spatial.Point, bool) { return f.point, true }

// Confidence implements Evidence. EXIF GPS carries a fixed 0.95 prior.
func (f GPSFix) Confidence() float64 { return 0.95 }

// Indicator is a raw AI-reported geographic signal, with or without
// coordinates (a country name without geocoding still contributes, at half
// weight).
type Indicator struct {
	method     string
	point      *spatial.Point
	confidence float64
}

// NewIndicator builds an indicator. A nil point marks coordinate-free
// evidence; a non-positive confidence falls back to the 0.5 default.
func NewIndicator(method string, point *spatial.Point, confidence float64) Indicator {
	return Indicator{
		method:     method,
		point:      point,
		confidence: normalizeConfidence(confidence),
	}
}

// Method implements Evidence.
func (i Indicator) Method() string { return i.method }

// Coordinates implements Evidence.
func (i Indicator) Coordinates() (spatial.Point, bool) {
	if i.point == nil {
		return spatial.Point{}, false
	}

	return *i.point, true
}

// Confidence implements Evidence.
func (i Indicator) Confidence() float64 { return i.confidence }

// candidateEvidence adapts an intel.Candidate to the Evidence interface.
type candidateEvidence struct {
	c intel.Candidate
}

// FromCandidate wraps a geocoded candidate as evidence.
func FromCandidate(c intel.Candidate) Evidence {
	return candidateEvidence{c: c}
}

// FromCandidates wraps a slice of candidates.
func FromCandidates(cs []intel.Candidate) []Evidence {
	evidence := make([]Evidence, 0, len(cs))
	for _, c := range cs {
		evidence = append(evidence, FromCandidate(c))
	}

	return evidence
}

func (e candidateEvidence) Method() string { return MethodLocationIntelligence }

func (e candidateEvidence) Coordinates() (spatial.Point, bool) { return e.c.Point, true }

func (e candidateEvidence) Confidence() float64 { return normalizeConfidence(e.c.Confidence) }

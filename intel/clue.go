// Copyright 2026 The PhotoLoc Authors
// SPDX-License-Identifier: Apache-2.0

// Package intel extracts location intelligence from scene-analysis text and
// resolves it into geocoded coordinate candidates.
package intel

// ClueType classifies an atomic text-derived location signal.
type ClueType string

// Clue types produced by the extraction passes.
const (
	ClueStreetName     ClueType = "street_name"
	ClueStreetAddress  ClueType = "street_address"
	ClueCrossStreets   ClueType = "cross_streets"
	ClueBlockNumber    ClueType = "block_number"
	ClueBusinessName   ClueType = "business_name"
	ClueLandmark       ClueType = "landmark"
	ClueZipCode        ClueType = "zip_code"
	ClueBuildingNumber ClueType = "building_number"
)

// Clue is a single location signal extracted from scene-analysis text.
// Clues are immutable once created; correlation groups them by reference
// but never merges or rewrites them.
type Clue struct {
	Type       ClueType `json:"type"`
	Text       string   `json:"text"`
	Confidence float64  `json:"confidence"` // static prior in [0,1], assigned at extraction
	Context    string   `json:"context"`    // the matched substring, for traceability
	Source     string   `json:"source"`     // scene-analysis section the clue came from
}

// Group is an ordered set of clues judged jointly more informative than
// separately. Groups are never empty and need not be disjoint.
type Group []Clue

// SceneText is one free-text fragment paired with the scene-analysis section
// it came from.
type SceneText struct {
	Source string
	Text   string
}

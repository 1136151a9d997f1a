// Copyright 2026 The PhotoLoc Authors
// SPDX-License-Identifier: Apache-2.0

package intel

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCorrelate(t *testing.T) {
	business := Clue{Type: ClueBusinessName, Text: "Joe's Pizza", Confidence: 0.8}
	street := Clue{Type: ClueStreetName, Text: "Main Street", Confidence: 0.85}
	zip := Clue{Type: ClueZipCode, Text: "90210", Confidence: 0.95}
	landmark := Clue{Type: ClueLandmark, Text: "Central Park", Confidence: 0.85}

	tests := []struct {
		name  string
		clues []Clue
		want  []Group
	}{
		{
			name:  "no clues",
			clues: nil,
			want:  nil,
		},
		{
			name:  "business pairs with street",
			clues: []Clue{business, street},
			want:  []Group{{business, street}},
		},
		{
			name:  "cross product of businesses and streets",
			clues: []Clue{business, street, {Type: ClueStreetAddress, Text: "123 Main Street", Confidence: 0.95}},
			want: []Group{
				{business, street},
				{business, {Type: ClueStreetAddress, Text: "123 Main Street", Confidence: 0.95}},
			},
		},
		{
			name:  "zip folds into the business and street group",
			clues: []Clue{business, street, zip},
			want: []Group{
				{business, street, zip},
			},
		},
		{
			name:  "high confidence singleton stands alone",
			clues: []Clue{landmark, zip},
			want: []Group{
				{zip},
			},
		},
		{
			name:  "grouped clues are not re-added as singletons",
			clues: []Clue{business, {Type: ClueCrossStreets, Text: "Main and Oak", Confidence: 0.9}},
			want: []Group{
				{business, {Type: ClueCrossStreets, Text: "Main and Oak", Confidence: 0.9}},
			},
		},
		{
			name:  "fallback groups by type when nothing else fires",
			clues: []Clue{landmark, business, {Type: ClueLandmark, Text: "City Hall", Confidence: 0.85}},
			want: []Group{
				{landmark, {Type: ClueLandmark, Text: "City Hall", Confidence: 0.85}},
				{business},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Correlate(tt.clues)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Correlate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGroupQueries(t *testing.T) {
	tests := []struct {
		name  string
		group Group
		want  []string
	}{
		{
			name: "business and street",
			group: Group{
				{Type: ClueBusinessName, Text: "Joe's Pizza", Confidence: 0.8},
				{Type: ClueStreetName, Text: "Main Street", Confidence: 0.85},
			},
			want: []string{"Joe's Pizza, Main Street"},
		},
		{
			name: "zip variant follows the base query",
			group: Group{
				{Type: ClueBusinessName, Text: "Joe's Pizza", Confidence: 0.8},
				{Type: ClueStreetName, Text: "Main Street", Confidence: 0.85},
				{Type: ClueZipCode, Text: "90210", Confidence: 0.95},
			},
			want: []string{
				"Joe's Pizza, Main Street",
				"Joe's Pizza, Main Street, 90210",
				"90210",
			},
		},
		{
			name: "business near landmark",
			group: Group{
				{Type: ClueBusinessName, Text: "Joe's Pizza", Confidence: 0.8},
				{Type: ClueLandmark, Text: "Central Park", Confidence: 0.85},
			},
			want: []string{"Joe's Pizza near Central Park"},
		},
		{
			name: "cross streets with zip",
			group: Group{
				{Type: ClueCrossStreets, Text: "Main and Oak", Confidence: 0.9},
				{Type: ClueZipCode, Text: "90210", Confidence: 0.95},
			},
			want: []string{
				"Main and Oak",
				"Main and Oak, 90210",
				"Main and Oak",
				"90210",
			},
		},
		{
			name: "single high confidence clue",
			group: Group{
				{Type: ClueStreetAddress, Text: "123 Main Street", Confidence: 0.95},
			},
			want: []string{"123 Main Street"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.group.Queries()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Queries() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCorrelateCombinesBusinessStreetAndZip(t *testing.T) {
	clues := ExtractClues([]SceneText{
		{Source: "signage", Text: "Joe's Pizza on Main Street, 90210"},
	})

	var queries []string

	for _, g := range Correlate(clues) {
		queries = append(queries, g.Queries()...)
	}

	want := "Joe's Pizza, Main Street, 90210"

	for _, q := range queries {
		if q == want {
			return
		}
	}

	t.Errorf("queries = %q, want one combining the business, street and zip", queries)
}

func TestGroupQueriesCapped(t *testing.T) {
	var g Group
	for i := 0; i < 8; i++ {
		g = append(g, Clue{Type: ClueBusinessName, Text: "Biz", Confidence: 0.8})
		g = append(g, Clue{Type: ClueStreetName, Text: "Street", Confidence: 0.85})
	}

	// 8 businesses × 8 streets would be 64 queries without the cap.
	if got := len(g.Queries()); got != maxQueriesPerGroup {
		t.Errorf("len(Queries()) = %d, want %d", got, maxQueriesPerGroup)
	}
}

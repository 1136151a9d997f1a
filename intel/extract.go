// Copyright 2026 The PhotoLoc Authors
// SPDX-License-Identifier: Apache-2.0

package intel

import (
	"regexp"
	"strings"
)

// streetTypes covers the street-type words and abbreviations recognized by the
// street and building-number patterns.
const streetTypes = `Street|St|Avenue|Ave|Road|Rd|Drive|Dr|Boulevard|Blvd|Lane|Ln|Place|Pl|Way|Court|Ct`

var (
	// "123 Main Street"
	numberedStreetRe = regexp.MustCompile(`\b(\d+)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)\s+(` + streetTypes + `)\b`)
	// "Main Street"
	bareStreetRe = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)\s+(` + streetTypes + `)\b`)
	// "Main and Oak"
	crossStreetRe = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)\s+and\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)\b`)
	// "Corner Bakery", "First National Bank"
	businessRe = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)\s+` +
		`(Restaurant|Cafe|Pizza|Deli|Market|Shop|Store|Bar|Grill|Bistro|Coffee|Bakery|` +
		`Bank|Hospital|School|University|Library|Hotel|Theater|Mall)\b`)
	// "90210" or "90210-1234"
	zipCodeRe = regexp.MustCompile(`\b(\d{5}(?:-\d{4})?)\b`)
	// Leading number of an address-like phrase. Go's regexp has no lookahead,
	// so the street part is matched outright and only the number captured.
	buildingNumberRe = regexp.MustCompile(`\b(\d{1,5})\s+\w+\s+(?:Street|St|Avenue|Ave|Road|Rd)\b`)
)

// businessKeywords drive the fallback backward scan for business names that
// the strict pattern misses ("Joe's Pizza" has an apostrophe the title-case
// class rejects).
var businessKeywords = map[string]bool{
	"restaurant": true,
	"cafe":       true,
	"pizza":      true,
	"deli":       true,
	"bar":        true,
	"grill":      true,
}

var landmarkKeywords = map[string]bool{
	"bridge":     true,
	"park":       true,
	"square":     true,
	"plaza":      true,
	"station":    true,
	"airport":    true,
	"hospital":   true,
	"university": true,
	"college":    true,
	"church":     true,
	"cathedral":  true,
	"mosque":     true,
	"temple":     true,
	"museum":     true,
	"library":    true,
	"theater":    true,
	"stadium":    true,
	"arena":      true,
	"mall":       true,
	"center":     true,
}

// ExtractClues runs the full battery of extraction passes over every text
// fragment and returns all clues found. Overlapping matches across passes are
// kept; downstream ranking handles redundancy. The function is pure and never
// fails: malformed or empty input yields an empty clue list.
func ExtractClues(texts []SceneText) []Clue {
	var clues []Clue

	for _, st := range texts {
		if strings.TrimSpace(st.Text) == "" {
			continue
		}

		clues = append(clues, extractStreetClues(st.Text, st.Source)...)
		clues = append(clues, extractBusinessClues(st.Text, st.Source)...)
		clues = append(clues, extractAddressClues(st.Text, st.Source)...)
		clues = append(clues, extractLandmarkClues(st.Text, st.Source)...)
	}

	return clues
}

// extractStreetClues finds numbered addresses, bare street names, and cross
// streets. A numbered address yields both a street_address clue and a
// block_number clue for the leading number.
func extractStreetClues(text, source string) []Clue {
	var clues []Clue

	for _, m := range numberedStreetRe.FindAllStringSubmatch(text, -1) {
		clues = append(clues,
			Clue{
				Type:       ClueStreetAddress,
				Text:       m[1] + " " + m[2] + " " + m[3],
				Confidence: 0.95,
				Context:    m[0],
				Source:     source,
			},
			Clue{
				Type:       ClueBlockNumber,
				Text:       m[1],
				Confidence: 0.8,
				Context:    m[0],
				Source:     source,
			},
		)
	}

	for _, m := range bareStreetRe.FindAllStringSubmatch(text, -1) {
		clues = append(clues, Clue{
			Type:       ClueStreetName,
			Text:       m[1] + " " + m[2],
			Confidence: 0.85,
			Context:    m[0],
			Source:     source,
		})
	}

	// Intersections geocode with high precision, hence the highest prior of
	// the three street shapes.
	for _, m := range crossStreetRe.FindAllStringSubmatch(text, -1) {
		clues = append(clues, Clue{
			Type:       ClueCrossStreets,
			Text:       m[1] + " and " + m[2],
			Confidence: 0.9,
			Context:    m[0],
			Source:     source,
		})
	}

	return clues
}

// extractBusinessClues finds "Proper Name + category word" businesses via the
// strict pattern, then rescans prose with a backward title-case token walk.
// The fallback exists because scene descriptions are prose, not structured
// listings.
func extractBusinessClues(text, source string) []Clue {
	var clues []Clue

	for _, m := range businessRe.FindAllStringSubmatch(text, -1) {
		clues = append(clues, Clue{
			Type:       ClueBusinessName,
			Text:       m[1] + " " + m[2],
			Confidence: 0.9,
			Context:    m[0],
			Source:     source,
		})
	}

	clues = append(clues, scanKeywordNames(text, source, businessKeywords, ClueBusinessName, 0.8)...)

	return clues
}

// extractAddressClues finds ZIP codes and building numbers.
func extractAddressClues(text, source string) []Clue {
	var clues []Clue

	for _, m := range zipCodeRe.FindAllStringSubmatch(text, -1) {
		clues = append(clues, Clue{
			Type:       ClueZipCode,
			Text:       m[1],
			Confidence: 0.95,
			Context:    m[0],
			Source:     source,
		})
	}

	for _, m := range buildingNumberRe.FindAllStringSubmatch(text, -1) {
		clues = append(clues, Clue{
			Type:       ClueBuildingNumber,
			Text:       m[1],
			Confidence: 0.8,
			Context:    m[0],
			Source:     source,
		})
	}

	return clues
}

// extractLandmarkClues applies the backward-scan heuristic to a fixed
// vocabulary of landmark nouns.
func extractLandmarkClues(text, source string) []Clue {
	return scanKeywordNames(text, source, landmarkKeywords, ClueLandmark, 0.85)
}

// scanKeywordNames walks the token stream looking for category keywords and
// assembles a candidate proper name from up to 3 preceding title-case tokens.
// Keyword comparison is accent-folded and case-insensitive; the emitted clue
// keeps the original casing.
func scanKeywordNames(text, source string, keywords map[string]bool, t ClueType, confidence float64) []Clue {
	var clues []Clue

	words := strings.Fields(text)
	for i, w := range words {
		if !keywords[lowerASCIIFolding(trimPunct(w))] {
			continue
		}

		name := properNameBefore(words, i)
		if name == "" {
			continue
		}

		full := name + " " + trimPunct(w)
		clues = append(clues, Clue{
			Type:       t,
			Text:       full,
			Confidence: confidence,
			Context:    full,
			Source:     source,
		})
	}

	return clues
}

// articles end a proper name when walking backward: "the Brooklyn Bridge"
// names "Brooklyn Bridge", even though a sentence-initial "The" is title case.
var articles = map[string]bool{
	"the": true,
	"a":   true,
	"an":  true,
}

// properNameBefore collects up to 3 consecutive title-case tokens immediately
// preceding index i, in their original order.
func properNameBefore(words []string, i int) string {
	var name []string

	for j := i - 1; j >= 0 && len(name) < 3; j-- {
		if !isTitleToken(words[j]) || articles[lowerASCIIFolding(trimPunct(words[j]))] {
			break
		}

		name = append([]string{trimPunct(words[j])}, name...)
	}

	return strings.Join(name, " ")
}

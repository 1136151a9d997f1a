// Copyright 2026 The PhotoLoc Authors
// SPDX-License-Identifier: Apache-2.0

package intel

// maxQueriesPerGroup bounds geocoding API usage per clue group. This is a hard
// cost control, not a quality heuristic.
const maxQueriesPerGroup = 10

// highConfidence is the prior at or above which a clue carries enough
// precision to geocode on its own (ZIP codes, cross streets, numbered
// addresses).
const highConfidence = 0.9

// Correlate groups clues so that each group geocodes better than its members
// would alone. Business+street cross-products come first (a business anchored
// to a street approaches street-address precision), each carrying any ZIP
// clues so the group can synthesize a business+street+ZIP query. Then come
// high-confidence singletons. Grouping by clue type happens only when neither
// produced a group, so that at least one resolution attempt is made per
// evidence category.
func Correlate(clues []Clue) []Group {
	if len(clues) == 0 {
		return nil
	}

	var groups []Group

	var businessIdx, streetIdx, zipIdx []int

	for i, c := range clues {
		switch c.Type {
		case ClueBusinessName:
			businessIdx = append(businessIdx, i)
		case ClueStreetName, ClueStreetAddress, ClueCrossStreets:
			streetIdx = append(streetIdx, i)
		case ClueZipCode:
			zipIdx = append(zipIdx, i)
		}
	}

	grouped := make(map[int]bool)

	for _, b := range businessIdx {
		for _, s := range streetIdx {
			g := Group{clues[b], clues[s]}

			for _, z := range zipIdx {
				g = append(g, clues[z])
				grouped[z] = true
			}

			groups = append(groups, g)
			grouped[b] = true
			grouped[s] = true
		}
	}

	for i, c := range clues {
		if c.Confidence >= highConfidence && !grouped[i] {
			groups = append(groups, Group{c})
		}
	}

	if len(groups) > 0 {
		return groups
	}

	// Fallback: one group per clue type, preserving first-appearance order.
	byType := make(map[ClueType]Group)

	var order []ClueType

	for _, c := range clues {
		if _, ok := byType[c.Type]; !ok {
			order = append(order, c.Type)
		}

		byType[c.Type] = append(byType[c.Type], c)
	}

	for _, t := range order {
		groups = append(groups, byType[t])
	}

	return groups
}

// Queries synthesizes geocoding query strings for the group, in priority
// order: business+street (optionally with ZIP), business near landmark, cross
// streets (optionally with ZIP), then any individual high-confidence clue.
// At most maxQueriesPerGroup queries are returned.
func (g Group) Queries() []string {
	var businesses, streets, crosses, landmarks, zips []string

	for _, c := range g {
		switch c.Type {
		case ClueBusinessName:
			businesses = append(businesses, c.Text)
		case ClueStreetName, ClueStreetAddress:
			streets = append(streets, c.Text)
		case ClueCrossStreets:
			streets = append(streets, c.Text)
			crosses = append(crosses, c.Text)
		case ClueLandmark:
			landmarks = append(landmarks, c.Text)
		case ClueZipCode:
			zips = append(zips, c.Text)
		}
	}

	var queries []string

	for _, b := range businesses {
		for _, s := range streets {
			queries = append(queries, b+", "+s)
			if len(zips) > 0 {
				queries = append(queries, b+", "+s+", "+zips[0])
			}
		}
	}

	for _, b := range businesses {
		for _, l := range landmarks {
			queries = append(queries, b+" near "+l)
		}
	}

	for _, cs := range crosses {
		queries = append(queries, cs)
		if len(zips) > 0 {
			queries = append(queries, cs+", "+zips[0])
		}
	}

	for _, c := range g {
		if c.Confidence >= highConfidence {
			queries = append(queries, c.Text)
		}
	}

	if len(queries) > maxQueriesPerGroup {
		queries = queries[:maxQueriesPerGroup]
	}

	return queries
}

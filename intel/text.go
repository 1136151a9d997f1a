// Copyright 2026 The PhotoLoc Authors
// SPDX-License-Identifier: Apache-2.0

package intel

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// lowerASCIIFolding normalizes a string by removing accents, lowercasing, and
// trimming spaces. Scene descriptions come from vision models that sometimes
// emit accented place names ("Café", "Sāo Paulo"); keyword comparison happens
// on the folded form.
func lowerASCIIFolding(s string) string {
	s, _, _ = transform.String(
		transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
		),
		strings.TrimSpace(strings.ToLower(s)),
	)

	return s
}

// trimPunct strips leading and trailing punctuation from a token. Tokens come
// from prose, so "Street," and "Plaza." are common.
func trimPunct(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}

// isTitleToken reports whether a prose token starts with an upper-case letter,
// the heuristic for "part of a proper name" used by the backward scans.
func isTitleToken(s string) bool {
	s = trimPunct(s)
	if s == "" {
		return false
	}

	for _, r := range s {
		return unicode.IsUpper(r)
	}

	return false
}

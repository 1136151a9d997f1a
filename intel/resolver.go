// Copyright 2026 The PhotoLoc Authors
// SPDX-License-Identifier: Apache-2.0

package intel

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/uber/h3-go/v4"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// maxCandidates bounds how many candidates leave the resolver, ranked by
// confidence.
const maxCandidates = 5

// dedupeResolution is the H3 resolution (cells of roughly 0.7 km²) used to
// collapse near-identical candidates produced by overlapping clue matches.
const dedupeResolution = 8

// Resolver turns clue groups into geocoded candidates. It owns a per-process
// query cache and the shared one-request-per-second gate to the provider;
// both are safe under concurrent use.
type Resolver struct {
	geocoder    Geocoder
	limiter     *rate.Limiter
	resultLimit int
	flight      singleflight.Group

	mu    sync.Mutex
	cache map[string][]GeocodeResult
}

// NewResolver creates a resolver around the given geocoder.
func NewResolver(geocoder Geocoder) *Resolver {
	r := &Resolver{
		geocoder:    geocoder,
		limiter:     rate.NewLimiter(rate.Every(time.Second), 1),
		resultLimit: 3,
		cache:       make(map[string][]GeocodeResult),
	}

	// Drain the initial token so the first uncached call waits out the one
	// second floor like every later one.
	r.limiter.Allow()

	return r
}

// ResolveGroups geocodes every query of every group and returns the top
// candidates by confidence. A failed or empty lookup yields no candidates for
// that query and never aborts the batch.
func (r *Resolver) ResolveGroups(ctx context.Context, groups []Group) []Candidate {
	var candidates []Candidate

	for _, g := range groups {
		for _, query := range g.Queries() {
			results, err := r.resolve(ctx, query)
			if err != nil {
				log.Printf("Geocoding %q failed: %v", query, err)

				continue
			}

			for _, res := range results {
				candidates = append(candidates, newCandidate(res, g))
			}
		}
	}

	candidates = dedupeByCell(candidates)

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})

	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}

	return candidates
}

// resolve answers from the cache when possible; otherwise it waits on the
// shared rate gate and asks the provider. Identical queries within one
// resolver lifetime never re-hit the network: cache hits bypass the gate, and
// concurrent misses for the same query collapse into a single lookup.
func (r *Resolver) resolve(ctx context.Context, query string) ([]GeocodeResult, error) {
	if cached, ok := r.cached(query); ok {
		return cached, nil
	}

	v, err, _ := r.flight.Do(query, func() (any, error) {
		// A concurrent caller may have stored the answer between the miss
		// above and this flight starting.
		if cached, ok := r.cached(query); ok {
			return cached, nil
		}

		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		results, err := r.geocoder.Geocode(ctx, query, r.resultLimit)
		if err != nil {
			return nil, err
		}

		// Empty result sets are cached too: the provider already told us the
		// query resolves to nothing.
		r.mu.Lock()
		r.cache[query] = results
		r.mu.Unlock()

		return results, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]GeocodeResult), nil
}

func (r *Resolver) cached(query string) ([]GeocodeResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	results, ok := r.cache[query]

	return results, ok
}

// CacheSize returns the number of distinct queries resolved so far.
func (r *Resolver) CacheSize() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.cache)
}

// dedupeByCell keeps the highest-confidence candidate per H3 cell. Extraction
// deliberately lets overlapping matches through; this is where redundant
// hypotheses for the same block collapse.
func dedupeByCell(candidates []Candidate) []Candidate {
	best := make(map[h3.Cell]int)

	var deduped []Candidate

	for _, c := range candidates {
		cell, err := h3.LatLngToCell(h3.NewLatLng(c.Point.Lat, c.Point.Lng), dedupeResolution)
		if err != nil {
			deduped = append(deduped, c)

			continue
		}

		if i, ok := best[cell]; ok {
			if c.Confidence > deduped[i].Confidence {
				deduped[i] = c
			}

			continue
		}

		best[cell] = len(deduped)
		deduped = append(deduped, c)
	}

	return deduped
}

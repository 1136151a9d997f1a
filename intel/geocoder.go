// Copyright 2026 The PhotoLoc Authors
// SPDX-License-Identifier: Apache-2.0

package intel

import (
	"context"

	"github.com/osintkit/photoloc/spatial"
)

// GeocodeResult represents one geocoding result from any provider.
type GeocodeResult struct {
	Point       spatial.Point
	DisplayName string
	City        string
	State       string
	Country     string
	Importance  float64 // provider relevance score in [0,1]
	PlaceType   string  // building, house, shop, restaurant, street, city, ...
}

// Geocoder resolves a free-text query to zero or more results. Any provider
// meeting this contract is substitutable without changing the fusion engine.
type Geocoder interface {
	Geocode(ctx context.Context, query string, limit int) ([]GeocodeResult, error)
}

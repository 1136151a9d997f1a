// Copyright 2026 The PhotoLoc Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"database/sql/driver"
	"fmt"
	"math"
)

const earthRadius = 6371e3 // meters

// Point represents a geographical point with latitude and longitude (WGS84).
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%f %f)", p.Lng, p.Lat)
}

// Value implements the driver.Valuer interface for database serialization.
func (p Point) Value() (driver.Value, error) {
	return p.String(), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (p *Point) Scan(value interface{}) error {
	if value == nil {
		p.Lat, p.Lng = 0, 0

		return nil
	}

	switch v := value.(type) {
	case []byte:
		// The format from DuckDB is "POINT (lng lat)"
		_, err := fmt.Sscanf(string(v), "POINT (%f %f)", &p.Lng, &p.Lat)

		return err
	case map[string]interface{}:
		x, okX := v["x"].(float64)
		y, okY := v["y"].(float64)

		if !okX || !okY {
			return fmt.Errorf("spatial: invalid map for point: expected 'x' and 'y' float64 fields, got %+v", v)
		}

		p.Lng = x
		p.Lat = y

		return nil
	default:
		return fmt.Errorf("spatial: unsupported type for Point scan: %T", value)
	}
}

// HaversineDistance calculates the distance between two points on Earth in meters.
func (p *Point) HaversineDistance(other *Point) float64 {
	lat1 := p.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - p.Lat) * math.Pi / 180
	dLng := (other.Lng - p.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// Weighted pairs a point with the weight it carries in a centroid computation.
type Weighted struct {
	Point  Point
	Weight float64
}

// WeightedCentroid computes the weight-averaged latitude and longitude of the
// given points. The averaging is planar, not spherical; callers are expected
// to penalize widely separated inputs before trusting the result.
// Returns false when the total weight is zero.
func WeightedCentroid(points []Weighted) (Point, bool) {
	var lat, lng, total float64

	for _, wp := range points {
		lat += wp.Point.Lat * wp.Weight
		lng += wp.Point.Lng * wp.Weight
		total += wp.Weight
	}

	if total == 0 {
		return Point{}, false
	}

	return Point{Lat: lat / total, Lng: lng / total}, true
}

// MaxPairwiseDistance returns the greatest haversine distance in meters between
// any two of the given points. Fewer than two points yields zero.
func MaxPairwiseDistance(points []Point) float64 {
	var maxDist float64

	for i := range points {
		for j := i + 1; j < len(points); j++ {
			if d := points[i].HaversineDistance(&points[j]); d > maxDist {
				maxDist = d
			}
		}
	}

	return maxDist
}

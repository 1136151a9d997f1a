// Copyright 2026 The PhotoLoc Authors
// SPDX-License-Identifier: Apache-2.0

package intel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/osintkit/photoloc/spatial"
)

// DefaultNominatimURL is the public OpenStreetMap Nominatim endpoint.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

const nominatimTimeout = 10 * time.Second

// NominatimGeocoder resolves queries against a Nominatim instance. The public
// instance requires a descriptive User-Agent and at most one request per
// second; the Resolver enforces the pacing.
type NominatimGeocoder struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewNominatimGeocoder creates a Nominatim geocoder. An empty baseURL selects
// the public instance, overridable via NOMINATIM_URL.
func NewNominatimGeocoder(baseURL string) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = os.Getenv("NOMINATIM_URL")
	}

	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}

	return &NominatimGeocoder{
		baseURL:   baseURL,
		userAgent: "photoloc/1.0 (geolocation analysis)",
		httpClient: &http.Client{
			Timeout: nominatimTimeout,
		},
	}
}

type nominatimResult struct {
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	DisplayName string  `json:"display_name"`
	Importance  float64 `json:"importance"`
	Type        string  `json:"type"`
	Address     struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		State   string `json:"state"`
		Country string `json:"country"`
	} `json:"address"`
}

// Geocode implements the Geocoder interface.
func (n *NominatimGeocoder) Geocode(ctx context.Context, query string, limit int) ([]GeocodeResult, error) {
	if limit <= 0 {
		limit = 3
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building geocoding request: %w", err)
	}

	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &GeocodingError{Type: ErrorTypeTimeout, Message: "geocoding request timed out", Err: err}
		}

		return nil, &GeocodingError{Type: ErrorTypeNetworkError, Message: "geocoding request failed", Err: err}
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ClassifyHTTPError(resp.StatusCode)
	}

	var raw []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding geocoding response: %w", err)
	}

	results := make([]GeocodeResult, 0, len(raw))

	for _, r := range raw {
		lat, latErr := strconv.ParseFloat(r.Lat, 64)
		lng, lngErr := strconv.ParseFloat(r.Lon, 64)

		if latErr != nil || lngErr != nil {
			continue
		}

		city := r.Address.City
		if city == "" {
			city = r.Address.Town
		}

		if city == "" {
			city = r.Address.Village
		}

		results = append(results, GeocodeResult{
			Point:       spatial.Point{Lat: lat, Lng: lng},
			DisplayName: r.DisplayName,
			City:        city,
			State:       r.Address.State,
			Country:     r.Address.Country,
			Importance:  r.Importance,
			PlaceType:   r.Type,
		})
	}

	return results, nil
}

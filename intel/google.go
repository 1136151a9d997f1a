// Copyright 2026 The PhotoLoc Authors
// SPDX-License-Identifier: Apache-2.0

package intel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	apikeys "cloud.google.com/go/apikeys/apiv2"
	"cloud.google.com/go/apikeys/apiv2/apikeyspb"
	"github.com/osintkit/photoloc/spatial"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/iterator"
)

// GoogleMapsGeocoder uses the Google Maps Geocoding API. It is an alternative
// to Nominatim for deployments with an API key; both satisfy the same
// Geocoder contract.
type GoogleMapsGeocoder struct {
	apiKey     string
	httpClient *http.Client
}

// NewGoogleMapsGeocoder creates a Google Maps geocoder with the given key.
func NewGoogleMapsGeocoder(apiKey string) *GoogleMapsGeocoder {
	return &GoogleMapsGeocoder{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type googleMapsResponse struct {
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
			LocationType string `json:"location_type"` // ROOFTOP, RANGE_INTERPOLATED, GEOMETRIC_CENTER, APPROXIMATE
		} `json:"geometry"`
		FormattedAddress  string `json:"formatted_address"`
		AddressComponents []struct {
			LongName string   `json:"long_name"`
			Types    []string `json:"types"`
		} `json:"address_components"`
	} `json:"results"`
	Status string `json:"status"` // OK, ZERO_RESULTS, ...
}

// Geocode implements the Geocoder interface.
func (g *GoogleMapsGeocoder) Geocode(ctx context.Context, query string, limit int) ([]GeocodeResult, error) {
	if limit <= 0 {
		limit = 3
	}

	params := url.Values{}
	params.Set("address", query)
	params.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		"https://maps.googleapis.com/maps/api/geocode/json?"+params.Encode(),
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("building geocoding request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
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

	var gmResp googleMapsResponse
	if err := json.NewDecoder(resp.Body).Decode(&gmResp); err != nil {
		return nil, fmt.Errorf("decoding geocoding response: %w", err)
	}

	switch gmResp.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, nil
	case "OVER_QUERY_LIMIT":
		return nil, &GeocodingError{Type: ErrorTypeQuotaExceeded, Message: "google maps quota exceeded"}
	default:
		return nil, &GeocodingError{Type: ErrorTypeUnknown, Message: "google maps status: " + gmResp.Status}
	}

	results := make([]GeocodeResult, 0, limit)

	for _, r := range gmResp.Results {
		if len(results) >= limit {
			break
		}

		var city, state, country string

		for _, comp := range r.AddressComponents {
			for _, t := range comp.Types {
				switch t {
				case "locality":
					city = comp.LongName
				case "administrative_area_level_1":
					state = comp.LongName
				case "country":
					country = comp.LongName
				}
			}
		}

		results = append(results, GeocodeResult{
			Point:       spatial.Point{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
			DisplayName: r.FormattedAddress,
			City:        city,
			State:       state,
			Country:     country,
			Importance:  googleImportance(r.Geometry.LocationType),
			PlaceType:   googlePlaceType(r.Geometry.LocationType),
		})
	}

	return results, nil
}

// googlePlaceType maps Google's location_type to the place-type vocabulary the
// resolver's accuracy table understands.
func googlePlaceType(locationType string) string {
	switch locationType {
	case "ROOFTOP":
		return "building"
	case "RANGE_INTERPOLATED", "GEOMETRIC_CENTER":
		return "street"
	case "APPROXIMATE":
		return "city"
	default:
		return ""
	}
}

// googleImportance approximates a relevance score from the precision of the
// geometry, since the API exposes none directly.
func googleImportance(locationType string) float64 {
	switch locationType {
	case "ROOFTOP":
		return 0.9
	case "RANGE_INTERPOLATED":
		return 0.75
	case "GEOMETRIC_CENTER":
		return 0.6
	case "APPROXIMATE":
		return 0.3
	default:
		return 0.3
	}
}

// GoogleAPIKeyFromADC retrieves the Maps API key via Application Default
// Credentials, for deployments that provision the key with the project rather
// than an environment variable.
func GoogleAPIKeyFromADC(ctx context.Context, keyDisplayName string) (string, error) {
	creds, err := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		return "", fmt.Errorf("finding default credentials: %w", err)
	}

	projectID := creds.ProjectID
	if projectID == "" {
		return "", errors.New("no project ID in default credentials")
	}

	client, err := apikeys.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("creating apikeys client: %w", err)
	}
	defer client.Close()

	req := &apikeyspb.ListKeysRequest{
		Parent: fmt.Sprintf("projects/%s/locations/global", projectID),
	}

	it := client.ListKeys(ctx, req)

	for {
		key, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}

		if err != nil {
			return "", fmt.Errorf("listing keys: %w", err)
		}

		if key.DisplayName != keyDisplayName {
			continue
		}

		// ListKeys redacts KeyString; GetKeyString returns the secret.
		log.Printf("Found key resource %q, retrieving secret", key.Name)

		resp, err := client.GetKeyString(ctx, &apikeyspb.GetKeyStringRequest{Name: key.Name})
		if err != nil {
			return "", fmt.Errorf("getting key string: %w", err)
		}

		if resp.KeyString == "" {
			return "", fmt.Errorf("key %q found but key string is empty", keyDisplayName)
		}

		return resp.KeyString, nil
	}

	return "", fmt.Errorf("key with display name %q not found in project %s", keyDisplayName, projectID)
}

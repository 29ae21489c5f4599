package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/wxpoint/wxpoint/internal/common"
)

const geocodeResultLimit = 5

// PlaceNamer extracts a city/state pair from a geocoder display name.
// The default implementation parses Nominatim's comma-delimited string;
// a structured geocoding response could supply its own without touching
// resolver callers.
type PlaceNamer interface {
	CityState(displayName string) (city, state string)
}

// Resolver turns free-text queries into candidate coordinates using the
// Nominatim search API.
type Resolver struct {
	baseURL     string
	countryCode string
	userAgent   string
	namer       PlaceNamer
	httpCfg     common.HTTPClientConfig
	circuit     *gobreaker.CircuitBreaker
}

// NewResolver creates a Resolver for the given Nominatim-compatible
// endpoint. Results are restricted to countryCode.
func NewResolver(client *http.Client, baseURL, countryCode, userAgent string) *Resolver {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "geocoder",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Resolver{
		baseURL:     baseURL,
		countryCode: countryCode,
		userAgent:   userAgent,
		namer:       displayNameParser{},
		httpCfg: common.HTTPClientConfig{
			Client: client,
			Backoff: common.BackoffConfig{
				MaxRetries:      2,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
	}
}

// nominatimResult is one raw entry from the search response. The provider
// returns coordinates as strings and names the longitude field "lon".
type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode resolves a free-text query to up to five candidate locations.
// Returns ErrGeocodingUnavailable when the provider cannot be reached or
// answers non-2xx, and ErrLocationNotFound when the query matches nothing.
func (r *Resolver) Geocode(ctx context.Context, query string) ([]GeocodeResult, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("format", "json")
		values.Set("q", query)
		values.Set("countrycodes", r.countryCode)
		values.Set("limit", strconv.Itoa(geocodeResultLimit))

		req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/search?%s", r.baseURL, values.Encode()), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", r.userAgent)
		return req, nil
	}

	resp, err := common.DoRequestWithResilience(ctx, r.httpCfg, r.circuit, buildRequest)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeocodingUnavailable, err)
	}
	defer resp.Body.Close()

	var raw []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeocodingUnavailable, err)
	}

	if len(raw) == 0 {
		return nil, ErrLocationNotFound
	}

	results := make([]GeocodeResult, 0, len(raw))
	for _, item := range raw {
		lat, latErr := strconv.ParseFloat(item.Lat, 64)
		lng, lngErr := strconv.ParseFloat(item.Lon, 64)
		if latErr != nil || lngErr != nil {
			continue
		}

		city, state := r.namer.CityState(item.DisplayName)
		results = append(results, GeocodeResult{
			Lat:         lat,
			Lng:         lng,
			DisplayName: item.DisplayName,
			City:        city,
			State:       state,
		})
	}

	if len(results) == 0 {
		return nil, ErrLocationNotFound
	}
	return results, nil
}

// displayNameParser is the default PlaceNamer. City is the first comma
// segment; state is the first 2-letter all-caps token found scanning from
// the second-to-last segment backward.
type displayNameParser struct{}

func (displayNameParser) CityState(displayName string) (string, string) {
	parts := strings.Split(displayName, ",")

	city := "Unknown"
	if len(parts) > 0 {
		if trimmed := strings.TrimSpace(parts[0]); trimmed != "" {
			city = trimmed
		}
	}

	state := "Unknown"
	for i := len(parts) - 2; i >= 0; i-- {
		part := strings.TrimSpace(parts[i])
		if len(part) == 2 && part == strings.ToUpper(part) && isAlpha(part) {
			state = part
			break
		}
	}

	return city, state
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return len(s) > 0
}

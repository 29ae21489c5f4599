package geo

import "errors"

// Coordinates is a WGS84 point in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// GeocodeResult is one candidate location returned by a text search.
type GeocodeResult struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	DisplayName string  `json:"displayName"`
	City        string  `json:"city"`
	State       string  `json:"state"`
}

// PermissionState mirrors the platform geolocation permission states.
type PermissionState string

const (
	PermissionGranted PermissionState = "granted"
	PermissionDenied  PermissionState = "denied"
	PermissionPrompt  PermissionState = "prompt"
)

var (
	ErrGeolocationUnsupported = errors.New("geolocation is not supported on this device")
	ErrPermissionDenied       = errors.New("location access denied by user")
	ErrPositionUnavailable    = errors.New("location information unavailable")
	ErrPositionTimeout        = errors.New("location request timed out")

	ErrGeocodingUnavailable = errors.New("geocoding service unavailable")
	ErrLocationNotFound     = errors.New("location not found")
)

// NWS coverage box: continental US plus Alaska and Hawaii.
const (
	coverageMinLat = 18.0   // southern tip of Hawaii
	coverageMaxLat = 71.5   // northern Alaska
	coverageMinLng = -179.0 // western Alaska
	coverageMaxLng = -66.0  // eastern Maine
)

// InCoverageArea reports whether the point falls inside the weather
// provider's coverage bounds. Callers must check this before requesting
// weather data for the point.
func InCoverageArea(lat, lng float64) bool {
	return lat >= coverageMinLat && lat <= coverageMaxLat &&
		lng >= coverageMinLng && lng <= coverageMaxLng
}

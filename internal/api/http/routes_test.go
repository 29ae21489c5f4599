package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/wxpoint/wxpoint/internal/geo"
	"github.com/wxpoint/wxpoint/internal/state"
	"github.com/wxpoint/wxpoint/internal/weather"
)

type stubFetcher struct{}

func (stubFetcher) FetchByText(ctx context.Context, query string) (*weather.CompleteWeather, error) {
	return &weather.CompleteWeather{
		Location: weather.Place{City: "Denver", State: "CO"},
		Forecast: []weather.ForecastPeriod{},
		Hourly:   []weather.ForecastPeriod{},
		Alerts:   []weather.Alert{},
	}, nil
}

func (stubFetcher) FetchByCoordinates(ctx context.Context, lat, lng float64) (*weather.CompleteWeather, error) {
	if !geo.InCoverageArea(lat, lng) {
		return nil, weather.ErrOutOfCoverage
	}
	return &weather.CompleteWeather{
		Location: weather.Place{City: "Denver", State: "CO", Coordinates: geo.Coordinates{Lat: lat, Lng: lng}},
		Forecast: []weather.ForecastPeriod{},
		Hourly:   []weather.ForecastPeriod{},
		Alerts:   []weather.Alert{},
	}, nil
}

func (stubFetcher) FetchByCurrentPosition(ctx context.Context) (*weather.CompleteWeather, geo.PermissionState, error) {
	return nil, geo.PermissionDenied, geo.ErrGeolocationUnsupported
}

type stubStations struct {
	nearby []weather.StationDetails
	err    error
	detail *weather.StationDetails
}

func (s stubStations) NearbyStations(ctx context.Context, lat, lng float64) ([]weather.StationDetails, error) {
	return s.nearby, s.err
}

func (s stubStations) StationDetails(ctx context.Context, stationID string) *weather.StationDetails {
	return s.detail
}

func newTestApp(stations StationDirectory) *fiber.App {
	app := fiber.New()
	manager := state.NewManager(stubFetcher{})
	RegisterRoutes(app, manager, stations)
	return app
}

func TestSearchRequiresQuery(t *testing.T) {
	app := newTestApp(stubStations{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/weather/search", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestSearchReturnsSnapshot(t *testing.T) {
	app := newTestApp(stubStations{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/weather/search?q=Denver", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var snap state.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}
	if snap.Data == nil || snap.Data.Location.City != "Denver" {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}

func TestCoordinatesValidation(t *testing.T) {
	app := newTestApp(stubStations{})

	cases := []string{
		"/api/v1/weather/coordinates",
		"/api/v1/weather/coordinates?lat=abc&lng=-104.9",
		"/api/v1/weather/coordinates?lat=39.7",
		"/api/v1/weather/coordinates?lat=91.0&lng=-104.9",
		"/api/v1/weather/coordinates?lat=39.7&lng=-190.0",
	}

	for _, target := range cases {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", target, err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: expected status %d, got %d", target, http.StatusBadRequest, resp.StatusCode)
		}
	}
}

func TestCoordinatesOutOfCoverageSurfacesInSnapshot(t *testing.T) {
	app := newTestApp(stubStations{})

	// London is a valid coordinate pair but outside coverage; the failure
	// belongs in the view state, not the transport layer.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/weather/coordinates?lat=51.5&lng=-0.1", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var snap state.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}
	if snap.Data != nil {
		t.Error("expected no data for out-of-coverage query")
	}
	if snap.Error == "" {
		t.Error("expected an error message in the snapshot")
	}
}

func TestCurrentLocationUnsupported(t *testing.T) {
	app := newTestApp(stubStations{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/weather/current-location", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var snap state.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}
	if snap.LocationPermission != geo.PermissionDenied {
		t.Errorf("expected denied permission, got %v", snap.LocationPermission)
	}
	if snap.Error == "" {
		t.Error("expected an error message in the snapshot")
	}
}

func TestClearErrorEndpoint(t *testing.T) {
	app := newTestApp(stubStations{})

	// Seed an error through the unsupported current-location path.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/weather/current-location", nil)
	if _, err := app.Test(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/weather/error", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var snap state.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}
	if snap.Error != "" {
		t.Errorf("expected cleared error, got %q", snap.Error)
	}
}

func TestNearbyStationsEndpoint(t *testing.T) {
	distance := 1.2
	app := newTestApp(stubStations{
		nearby: []weather.StationDetails{
			{ID: "KBDU", StationIdentifier: "KBDU", Distance: &distance},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stations/nearby?lat=39.7&lng=-104.9", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var body struct {
		Stations []weather.StationDetails `json:"stations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(body.Stations) != 1 || body.Stations[0].ID != "KBDU" {
		t.Errorf("unexpected stations: %+v", body.Stations)
	}
}

func TestNearbyStationsFailure(t *testing.T) {
	app := newTestApp(stubStations{err: weather.ErrStationLookupFailed})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stations/nearby?lat=39.7&lng=-104.9", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected status %d, got %d", http.StatusBadGateway, resp.StatusCode)
	}
}

func TestStationByIDNotFound(t *testing.T) {
	app := newTestApp(stubStations{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stations/KXYZ", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

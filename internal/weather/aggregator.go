package weather

import (
	"context"
	"log"
	"sync"

	"github.com/wxpoint/wxpoint/internal/geo"
)

const (
	forecastDays = 7
)

// Aggregator orchestrates the geocoder, position source, and weather
// gateway into single CompleteWeather fetches.
type Aggregator struct {
	gateway  Gateway
	geocoder Geocoder
	position PositionSource
}

// NewAggregator creates an Aggregator. position may be nil on deployments
// without any device location capability.
func NewAggregator(gateway Gateway, geocoder Geocoder, position PositionSource) *Aggregator {
	return &Aggregator{
		gateway:  gateway,
		geocoder: geocoder,
		position: position,
	}
}

// FetchByCoordinates validates coverage, fetches the grid metadata, then
// fans out the forecast, hourly forecast, alerts, and office-detail
// fetches concurrently. Forecast and hourly failures are fatal; alerts
// and office details degrade to empty/nil per the Gateway contract.
func (a *Aggregator) FetchByCoordinates(ctx context.Context, lat, lng float64) (*CompleteWeather, error) {
	if !geo.InCoverageArea(lat, lng) {
		return nil, ErrOutOfCoverage
	}

	grid, err := a.gateway.PointMetadata(ctx, lat, lng)
	if err != nil {
		return nil, err
	}

	var (
		wg       sync.WaitGroup
		forecast []ForecastPeriod
		hourly   []ForecastPeriod
		alerts   []Alert
		office   *OfficeDetails
		fErr     error
		hErr     error
	)

	// The join always completes, even when a critical fetch has already
	// failed, so no in-flight request is orphaned.
	wg.Add(4)
	go func() {
		defer wg.Done()
		forecast, fErr = a.gateway.Forecast(ctx, grid.ForecastURL)
	}()
	go func() {
		defer wg.Done()
		hourly, hErr = a.gateway.HourlyForecast(ctx, grid.ForecastHourlyURL)
	}()
	go func() {
		defer wg.Done()
		alerts = a.gateway.ActiveAlerts(ctx, lat, lng)
	}()
	go func() {
		defer wg.Done()
		office = a.gateway.OfficeDetails(ctx, grid.ForecastOfficeURL)
	}()
	wg.Wait()

	if fErr != nil {
		return nil, fErr
	}
	if hErr != nil {
		return nil, hErr
	}

	return assemble(lat, lng, grid, forecast, hourly, alerts, office)
}

// FetchByText geocodes the query and fetches weather for the first
// candidate. Zero geocode results surface as geo.ErrLocationNotFound
// without any weather fetch being attempted.
func (a *Aggregator) FetchByText(ctx context.Context, query string) (*CompleteWeather, error) {
	results, err := a.geocoder.Geocode(ctx, query)
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return nil, geo.ErrLocationNotFound
	}

	first := results[0]
	log.Printf("aggregator: %q resolved to %s (%.4f, %.4f)", query, first.DisplayName, first.Lat, first.Lng)

	return a.FetchByCoordinates(ctx, first.Lat, first.Lng)
}

// FetchByCurrentPosition resolves the device position and fetches weather
// for it. The returned PermissionState reflects whether position
// resolution succeeded, for the caller to display.
func (a *Aggregator) FetchByCurrentPosition(ctx context.Context) (*CompleteWeather, geo.PermissionState, error) {
	if a.position == nil {
		return nil, geo.PermissionDenied, geo.ErrGeolocationUnsupported
	}

	pos, err := a.position.Current(ctx)
	if err != nil {
		return nil, geo.PermissionDenied, err
	}

	data, err := a.FetchByCoordinates(ctx, pos.Lat, pos.Lng)
	return data, geo.PermissionGranted, err
}

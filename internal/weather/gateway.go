package weather

import (
	"context"

	"github.com/wxpoint/wxpoint/internal/geo"
)

// Gateway abstracts the weather data provider (NWS). Methods returning an
// error are critical-path: their failure aborts the query. Methods without
// an error return are supplementary by contract; any failure is absorbed
// and reported as empty/nil data.
type Gateway interface {
	PointMetadata(ctx context.Context, lat, lng float64) (*GridLocation, error)
	Forecast(ctx context.Context, url string) ([]ForecastPeriod, error)
	HourlyForecast(ctx context.Context, url string) ([]ForecastPeriod, error)
	ActiveAlerts(ctx context.Context, lat, lng float64) []Alert
	OfficeDetails(ctx context.Context, url string) *OfficeDetails
	NearbyStations(ctx context.Context, lat, lng float64) ([]StationDetails, error)
	StationDetails(ctx context.Context, stationID string) *StationDetails
}

// Geocoder resolves free-text queries to candidate coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, query string) ([]geo.GeocodeResult, error)
}

// PositionSource resolves the current device position.
type PositionSource interface {
	Current(ctx context.Context) (geo.Coordinates, error)
}

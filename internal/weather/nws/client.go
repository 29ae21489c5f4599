package nws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/sony/gobreaker"

	"github.com/wxpoint/wxpoint/internal/common"
	"github.com/wxpoint/wxpoint/internal/geo"
	"github.com/wxpoint/wxpoint/internal/weather"
)

const (
	hourlyPeriodLimit  = 24
	nearbyStationLimit = 10
)

// Client is the api.weather.gov gateway. It implements weather.Gateway.
type Client struct {
	baseURL   string
	userAgent string
	httpCfg   common.HTTPClientConfig
	circuit   *gobreaker.CircuitBreaker
}

// NewClient creates a Client. The NWS asks callers to identify themselves
// through the User-Agent header.
func NewClient(client *http.Client, baseURL, userAgent string) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "nws",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
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

// getJSON fetches url through the resilience helper and decodes the body
// into out.
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	buildRequest := func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/geo+json")
		return req, nil
	}

	resp, err := common.DoRequestWithResilience(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return json.NewDecoder(resp.Body).Decode(out)
}

// PointMetadata fetches grid/location metadata for a coordinate pair.
func (c *Client) PointMetadata(ctx context.Context, lat, lng float64) (*weather.GridLocation, error) {
	url := fmt.Sprintf("%s/points/%.4f,%.4f", c.baseURL, lat, lng)

	var pt pointResponse
	if err := c.getJSON(ctx, url, &pt); err != nil {
		return nil, fmt.Errorf("%w: %v", weather.ErrLocationDataUnavailable, err)
	}
	return pt.toGridLocation(), nil
}

// Forecast fetches the forecast periods from url. The URL is opaque,
// supplied by PointMetadata.
func (c *Client) Forecast(ctx context.Context, url string) ([]weather.ForecastPeriod, error) {
	var fc forecastResponse
	if err := c.getJSON(ctx, url, &fc); err != nil {
		return nil, fmt.Errorf("%w: %v", weather.ErrForecastUnavailable, err)
	}
	return fc.Properties.Periods, nil
}

// HourlyForecast fetches hourly periods from url, truncated to the next
// 24 hours.
func (c *Client) HourlyForecast(ctx context.Context, url string) ([]weather.ForecastPeriod, error) {
	periods, err := c.Forecast(ctx, url)
	if err != nil {
		return nil, err
	}
	if len(periods) > hourlyPeriodLimit {
		periods = periods[:hourlyPeriodLimit]
	}
	return periods, nil
}

// ActiveAlerts fetches alerts active at the point. Alerts are
// supplementary: any failure is logged and an empty list returned.
func (c *Client) ActiveAlerts(ctx context.Context, lat, lng float64) []weather.Alert {
	url := fmt.Sprintf("%s/alerts/active?point=%.4f,%.4f", c.baseURL, lat, lng)

	var al alertsResponse
	if err := c.getJSON(ctx, url, &al); err != nil {
		log.Printf("nws: alerts fetch failed for (%.4f, %.4f): %v", lat, lng, err)
		return []weather.Alert{}
	}
	return al.toAlerts()
}

// OfficeDetails fetches forecast-office metadata from url. Office details
// are cosmetic: any failure is logged and nil returned.
func (c *Client) OfficeDetails(ctx context.Context, url string) *weather.OfficeDetails {
	if url == "" {
		return nil
	}

	var of officeResponse
	if err := c.getJSON(ctx, url, &of); err != nil {
		log.Printf("nws: office details fetch failed for %s: %v", url, err)
		return nil
	}
	return of.toOfficeDetails()
}

// NearbyStations discovers the observation-station collection for the
// point and returns the closest ten stations, sorted by great-circle
// distance ascending.
func (c *Client) NearbyStations(ctx context.Context, lat, lng float64) ([]weather.StationDetails, error) {
	grid, err := c.PointMetadata(ctx, lat, lng)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", weather.ErrStationLookupFailed, err)
	}

	var st stationsResponse
	if err := c.getJSON(ctx, grid.ObservationStationsURL, &st); err != nil {
		return nil, fmt.Errorf("%w: %v", weather.ErrStationLookupFailed, err)
	}

	stations := make([]weather.StationDetails, 0, len(st.Features))
	for _, f := range st.Features {
		if len(f.Geometry.Coordinates) < 2 {
			continue
		}
		stationLng, stationLat := f.Geometry.Coordinates[0], f.Geometry.Coordinates[1]
		distance := geo.GreatCircleMiles(lat, lng, stationLat, stationLng)

		stations = append(stations, weather.StationDetails{
			ID:                f.Properties.StationIdentifier,
			Name:              f.Properties.Name,
			StationIdentifier: f.Properties.StationIdentifier,
			TimeZone:          f.Properties.TimeZone,
			Coordinates:       geo.Coordinates{Lat: stationLat, Lng: stationLng},
			Elevation:         f.Properties.Elevation,
			County:            f.Properties.County,
			State:             f.Properties.State,
			Distance:          &distance,
		})
	}

	sort.Slice(stations, func(i, j int) bool {
		return *stations[i].Distance < *stations[j].Distance
	})

	if len(stations) > nearbyStationLimit {
		stations = stations[:nearbyStationLimit]
	}
	return stations, nil
}

// StationDetails fetches a single station by identifier. A lookup failure
// is logged and nil returned; absence is not an error.
func (c *Client) StationDetails(ctx context.Context, stationID string) *weather.StationDetails {
	url := fmt.Sprintf("%s/stations/%s", c.baseURL, stationID)

	var st stationResponse
	if err := c.getJSON(ctx, url, &st); err != nil {
		log.Printf("nws: station details fetch failed for %s: %v", stationID, err)
		return nil
	}
	if len(st.Geometry.Coordinates) < 2 {
		log.Printf("nws: station %s has no coordinates", stationID)
		return nil
	}

	return &weather.StationDetails{
		ID:                st.Properties.StationIdentifier,
		Name:              st.Properties.Name,
		StationIdentifier: st.Properties.StationIdentifier,
		TimeZone:          st.Properties.TimeZone,
		Coordinates:       geo.Coordinates{Lat: st.Geometry.Coordinates[1], Lng: st.Geometry.Coordinates[0]},
		Elevation:         st.Properties.Elevation,
		County:            st.Properties.County,
		State:             st.Properties.State,
	}
}

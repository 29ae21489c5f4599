package weather

import (
	"fmt"

	"github.com/wxpoint/wxpoint/internal/geo"
)

// assemble builds the CompleteWeather aggregate from the fetched parts.
// Slicing rule: current is the first forecast period, forecast the next
// seven, hourly the gateway-truncated hourly list.
func assemble(lat, lng float64, grid *GridLocation, forecast, hourly []ForecastPeriod, alerts []Alert, office *OfficeDetails) (*CompleteWeather, error) {
	if len(forecast) == 0 {
		return nil, fmt.Errorf("%w: no forecast periods returned", ErrForecastUnavailable)
	}

	city := grid.RelativeCity
	if city == "" {
		city = "Unknown"
	}
	state := grid.RelativeState
	if state == "" {
		state = "Unknown"
	}

	rest := forecast[1:]
	if len(rest) > forecastDays {
		rest = rest[:forecastDays]
	}

	// Non-nil slices so the JSON shape is stable for the presentation layer.
	if hourly == nil {
		hourly = []ForecastPeriod{}
	}
	if alerts == nil {
		alerts = []Alert{}
	}

	return &CompleteWeather{
		Location: Place{
			City:        city,
			State:       state,
			Coordinates: geo.Coordinates{Lat: lat, Lng: lng},
		},
		Station: StationInfo{
			ForecastOfficeURL: grid.ForecastOfficeURL,
			CWA:               grid.CWA,
			GridID:            grid.GridID,
			RadarStation:      grid.RadarStation,
			TimeZone:          grid.TimeZone,
		},
		OfficeDetails: office,
		Current:       forecast[0],
		Forecast:      append([]ForecastPeriod{}, rest...),
		Hourly:        hourly,
		Alerts:        alerts,
	}, nil
}

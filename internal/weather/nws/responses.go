package nws

import "github.com/wxpoint/wxpoint/internal/weather"

// Raw api.weather.gov response shapes. The API wraps everything of
// interest in .properties (GeoJSON), so these exist only to be mapped
// into the weather package's domain records.

type pointResponse struct {
	Properties struct {
		CWA                 string `json:"cwa"`
		ForecastOffice      string `json:"forecastOffice"`
		GridID              string `json:"gridId"`
		GridX               int    `json:"gridX"`
		GridY               int    `json:"gridY"`
		Forecast            string `json:"forecast"`
		ForecastHourly      string `json:"forecastHourly"`
		ForecastGridData    string `json:"forecastGridData"`
		ObservationStations string `json:"observationStations"`
		ForecastZone        string `json:"forecastZone"`
		County              string `json:"county"`
		FireWeatherZone     string `json:"fireWeatherZone"`
		TimeZone            string `json:"timeZone"`
		RadarStation        string `json:"radarStation"`
		RelativeLocation    struct {
			Properties struct {
				City  string `json:"city"`
				State string `json:"state"`
			} `json:"properties"`
		} `json:"relativeLocation"`
	} `json:"properties"`
}

func (r pointResponse) toGridLocation() *weather.GridLocation {
	p := r.Properties
	return &weather.GridLocation{
		CWA:                    p.CWA,
		ForecastOfficeURL:      p.ForecastOffice,
		GridID:                 p.GridID,
		GridX:                  p.GridX,
		GridY:                  p.GridY,
		ForecastURL:            p.Forecast,
		ForecastHourlyURL:      p.ForecastHourly,
		ForecastGridDataURL:    p.ForecastGridData,
		ObservationStationsURL: p.ObservationStations,
		ForecastZone:           p.ForecastZone,
		County:                 p.County,
		FireWeatherZone:        p.FireWeatherZone,
		TimeZone:               p.TimeZone,
		RadarStation:           p.RadarStation,
		RelativeCity:           p.RelativeLocation.Properties.City,
		RelativeState:          p.RelativeLocation.Properties.State,
	}
}

type forecastResponse struct {
	Properties struct {
		Periods []weather.ForecastPeriod `json:"periods"`
	} `json:"properties"`
}

type alertsResponse struct {
	Features []struct {
		ID         string        `json:"id"`
		Properties weather.Alert `json:"properties"`
	} `json:"features"`
}

func (r alertsResponse) toAlerts() []weather.Alert {
	alerts := make([]weather.Alert, 0, len(r.Features))
	for _, f := range r.Features {
		a := f.Properties
		if a.ID == "" {
			a.ID = f.ID
		}
		alerts = append(alerts, a)
	}
	return alerts
}

// stationProperties is shared by the station collection features and the
// single-station endpoint.
type stationProperties struct {
	Elevation         weather.QuantitativeValue `json:"elevation"`
	StationIdentifier string                    `json:"stationIdentifier"`
	Name              string                    `json:"name"`
	TimeZone          string                    `json:"timeZone"`
	County            string                    `json:"county"`
	State             string                    `json:"state"`
}

type stationsResponse struct {
	Features []struct {
		ID       string `json:"id"`
		Geometry struct {
			// GeoJSON order: [lng, lat]
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties stationProperties `json:"properties"`
	} `json:"features"`
}

type stationResponse struct {
	ID       string `json:"id"`
	Geometry struct {
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
	Properties stationProperties `json:"properties"`
}

type officeResponse struct {
	Properties struct {
		AtID                        string                `json:"@id"`
		ID                          string                `json:"id"`
		Name                        string                `json:"name"`
		Address                     weather.OfficeAddress `json:"address"`
		Telephone                   string                `json:"telephone"`
		FaxNumber                   string                `json:"faxNumber"`
		Email                       string                `json:"email"`
		SameAs                      string                `json:"sameAs"`
		NWSRegion                   string                `json:"nwsRegion"`
		ParentOrganization          string                `json:"parentOrganization"`
		ResponsibleCounties         []string              `json:"responsibleCounties"`
		ResponsibleForecastZones    []string              `json:"responsibleForecastZones"`
		ResponsibleFireZones        []string              `json:"responsibleFireZones"`
		ApprovedObservationStations []string              `json:"approvedObservationStations"`
	} `json:"properties"`
}

func (r officeResponse) toOfficeDetails() *weather.OfficeDetails {
	p := r.Properties

	id := p.AtID
	if id == "" {
		id = p.ID
	}

	return &weather.OfficeDetails{
		ID:                          id,
		Name:                        p.Name,
		Address:                     p.Address,
		Telephone:                   p.Telephone,
		FaxNumber:                   p.FaxNumber,
		Email:                       p.Email,
		SameAs:                      p.SameAs,
		NWSRegion:                   p.NWSRegion,
		ParentOrganization:          p.ParentOrganization,
		ResponsibleCounties:         emptyIfNil(p.ResponsibleCounties),
		ResponsibleForecastZones:    emptyIfNil(p.ResponsibleForecastZones),
		ResponsibleFireZones:        emptyIfNil(p.ResponsibleFireZones),
		ApprovedObservationStations: emptyIfNil(p.ApprovedObservationStations),
	}
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

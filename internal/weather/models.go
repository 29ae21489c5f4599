package weather

import (
	"time"

	"github.com/wxpoint/wxpoint/internal/geo"
)

// QuantitativeValue is the NWS unit-tagged measurement wrapper.
type QuantitativeValue struct {
	UnitCode string  `json:"unitCode"`
	Value    float64 `json:"value"`
}

// Place is the human-readable location a weather result describes.
type Place struct {
	City        string          `json:"city"`
	State       string          `json:"state"`
	Coordinates geo.Coordinates `json:"coordinates"`
}

// GridLocation is the per-coordinate metadata returned by the NWS points
// endpoint. It carries the URLs for all subsequent fetches and is fetched
// fresh for every query.
type GridLocation struct {
	CWA                    string `json:"cwa"`
	ForecastOfficeURL      string `json:"forecastOffice"`
	GridID                 string `json:"gridId"`
	GridX                  int    `json:"gridX"`
	GridY                  int    `json:"gridY"`
	ForecastURL            string `json:"forecast"`
	ForecastHourlyURL      string `json:"forecastHourly"`
	ForecastGridDataURL    string `json:"forecastGridData"`
	ObservationStationsURL string `json:"observationStations"`
	ForecastZone           string `json:"forecastZone"`
	County                 string `json:"county"`
	FireWeatherZone        string `json:"fireWeatherZone"`
	TimeZone               string `json:"timeZone"`
	RadarStation           string `json:"radarStation"`

	// RelativeLocation may be absent; callers fall back to "Unknown".
	RelativeCity  string `json:"relativeCity,omitempty"`
	RelativeState string `json:"relativeState,omitempty"`
}

// ForecastPeriod is one discrete forecast entry ("Tonight", "Monday", or a
// single hour in the hourly product). Immutable once fetched.
type ForecastPeriod struct {
	Number           int                `json:"number"`
	Name             string             `json:"name"`
	StartTime        time.Time          `json:"startTime"`
	EndTime          time.Time          `json:"endTime"`
	IsDaytime        bool               `json:"isDaytime"`
	Temperature      int                `json:"temperature"`
	TemperatureUnit  string             `json:"temperatureUnit"`
	TemperatureTrend string             `json:"temperatureTrend,omitempty"`
	WindSpeed        string             `json:"windSpeed"`
	WindDirection    string             `json:"windDirection"`
	Icon             string             `json:"icon"`
	ShortForecast    string             `json:"shortForecast"`
	DetailedForecast string             `json:"detailedForecast"`
	RelativeHumidity *QuantitativeValue `json:"relativeHumidity,omitempty"`
	Dewpoint         *QuantitativeValue `json:"dewpoint,omitempty"`
}

// Alert is one active weather alert. Zero alerts for a point is the normal
// case, not an error.
type Alert struct {
	ID          string    `json:"id"`
	AreaDesc    string    `json:"areaDesc"`
	Sent        time.Time `json:"sent"`
	Effective   time.Time `json:"effective"`
	Onset       time.Time `json:"onset"`
	Expires     time.Time `json:"expires"`
	Ends        time.Time `json:"ends"`
	Status      string    `json:"status"`
	MessageType string    `json:"messageType"`
	Category    string    `json:"category"`
	Severity    string    `json:"severity"`
	Certainty   string    `json:"certainty"`
	Urgency     string    `json:"urgency"`
	Event       string    `json:"event"`
	SenderName  string    `json:"senderName"`
	Headline    string    `json:"headline"`
	Description string    `json:"description"`
	Instruction string    `json:"instruction"`
	Response    string    `json:"response"`
}

// StationDetails describes a single observation station. Distance is set
// only on nearby-station results, measured in miles from the query point.
type StationDetails struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	StationIdentifier string            `json:"stationIdentifier"`
	TimeZone          string            `json:"timeZone"`
	Coordinates       geo.Coordinates   `json:"coordinates"`
	Elevation         QuantitativeValue `json:"elevation"`
	County            string            `json:"county"`
	State             string            `json:"state"`
	Distance          *float64          `json:"distance,omitempty"`
}

// OfficeAddress is the postal address block of a forecast office.
type OfficeAddress struct {
	StreetAddress   string `json:"streetAddress"`
	AddressLocality string `json:"addressLocality"`
	AddressRegion   string `json:"addressRegion"`
	PostalCode      string `json:"postalCode"`
}

// OfficeDetails is administrative metadata for the forecasting office.
// Cosmetic: its absence degrades display only.
type OfficeDetails struct {
	ID                          string        `json:"id"`
	Name                        string        `json:"name"`
	Address                     OfficeAddress `json:"address"`
	Telephone                   string        `json:"telephone"`
	FaxNumber                   string        `json:"faxNumber"`
	Email                       string        `json:"email"`
	SameAs                      string        `json:"sameAs"`
	NWSRegion                   string        `json:"nwsRegion"`
	ParentOrganization          string        `json:"parentOrganization"`
	ResponsibleCounties         []string      `json:"responsibleCounties"`
	ResponsibleForecastZones    []string      `json:"responsibleForecastZones"`
	ResponsibleFireZones        []string      `json:"responsibleFireZones"`
	ApprovedObservationStations []string      `json:"approvedObservationStations"`
}

// StationInfo is the grid/office identification shown alongside a result.
type StationInfo struct {
	ForecastOfficeURL string `json:"forecastOffice"`
	CWA               string `json:"cwa"`
	GridID            string `json:"gridId"`
	RadarStation      string `json:"radarStation"`
	TimeZone          string `json:"timeZone"`
}

// CompleteWeather is the aggregate handed to the presentation layer.
// Constructed atomically per successful query and replaced wholesale by
// the next one; never mutated in place.
type CompleteWeather struct {
	Location      Place            `json:"location"`
	Station       StationInfo      `json:"station"`
	OfficeDetails *OfficeDetails   `json:"officeDetails,omitempty"`
	Current       ForecastPeriod   `json:"current"`
	Forecast      []ForecastPeriod `json:"forecast"`
	Hourly        []ForecastPeriod `json:"hourly"`
	Alerts        []Alert          `json:"alerts"`
}

package weather

import "errors"

// Critical-path failures. Each aborts the whole query and surfaces a
// single message to the caller. Alert and office-detail failures are
// deliberately absent: those degrade to empty/nil data instead (see the
// Gateway method signatures).
var (
	ErrOutOfCoverage           = errors.New("location is outside the United States; weather data covers US locations only")
	ErrLocationDataUnavailable = errors.New("failed to get location data from the weather service")
	ErrForecastUnavailable     = errors.New("failed to get forecast data")
	ErrStationLookupFailed     = errors.New("failed to get nearby weather stations")
)

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/wxpoint/wxpoint/internal/geo"
)

type AppConfig struct {
	// Outbound API endpoints.
	NWSBaseURL      string
	GeocoderBaseURL string

	// UserAgent identifies this deployment to the NWS and the geocoder.
	UserAgent string

	// GeocoderCountry restricts text searches to one country.
	GeocoderCountry string

	// HTTPTimeout bounds every outbound request.
	HTTPTimeout time.Duration

	// RefreshInterval controls how often the last query is re-run.
	// Zero disables refreshing.
	RefreshInterval time.Duration

	// DevicePosition is an optional fixed device location. Nil means the
	// deployment has no geolocation capability.
	DevicePosition *geo.Coordinates

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.NWSBaseURL = getenvDefault("NWS_BASE_URL", "https://api.weather.gov")
	cfg.GeocoderBaseURL = getenvDefault("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org")
	cfg.UserAgent = getenvDefault("WXPOINT_USER_AGENT", "wxpoint/1.0")
	cfg.GeocoderCountry = getenvDefault("GEOCODER_COUNTRY", "us")

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	refreshStr := getenvDefault("REFRESH_INTERVAL", "0")
	refresh, err := time.ParseDuration(refreshStr)
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	cfg.RefreshInterval = refresh

	pos, err := loadDevicePosition()
	if err != nil {
		return nil, err
	}
	cfg.DevicePosition = pos

	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

// loadDevicePosition reads the optional fixed device location. Both
// variables must be set together.
func loadDevicePosition() (*geo.Coordinates, error) {
	latStr := os.Getenv("DEVICE_LAT")
	lngStr := os.Getenv("DEVICE_LNG")
	if latStr == "" && lngStr == "" {
		return nil, nil
	}
	if latStr == "" || lngStr == "" {
		return nil, fmt.Errorf("DEVICE_LAT and DEVICE_LNG must both be set")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid DEVICE_LAT: %w", err)
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid DEVICE_LNG: %w", err)
	}

	return &geo.Coordinates{Lat: lat, Lng: lng}, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

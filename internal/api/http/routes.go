package httpapi

import (
	"context"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/wxpoint/wxpoint/internal/state"
	"github.com/wxpoint/wxpoint/internal/weather"
)

var validate = validator.New()

// StationDirectory is the station-lookup surface the stations endpoints
// need from the weather gateway.
type StationDirectory interface {
	NearbyStations(ctx context.Context, lat, lng float64) ([]weather.StationDetails, error)
	StationDetails(ctx context.Context, stationID string) *weather.StationDetails
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, manager *state.Manager, stations StationDirectory) {
	v1 := app.Group("/api/v1")

	// Current view state: data, loading, error, location permission.
	v1.Get("/weather", func(c *fiber.Ctx) error {
		return c.JSON(manager.Snapshot())
	})

	v1.Get("/weather/search", func(c *fiber.Ctx) error {
		var q searchQuery
		q.Q = c.Query("q")
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		return c.JSON(manager.SearchByText(c.Context(), q.Q))
	})

	v1.Get("/weather/coordinates", func(c *fiber.Ctx) error {
		coords, err := parseCoordsQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		return c.JSON(manager.SearchByCoordinates(c.Context(), coords.Lat, coords.Lng))
	})

	v1.Post("/weather/current-location", func(c *fiber.Ctx) error {
		return c.JSON(manager.SearchByCurrentPosition(c.Context()))
	})

	v1.Delete("/weather/error", func(c *fiber.Ctx) error {
		manager.ClearError()
		return c.JSON(manager.Snapshot())
	})

	v1.Delete("/weather", func(c *fiber.Ctx) error {
		manager.ClearData()
		return c.JSON(manager.Snapshot())
	})

	v1.Get("/stations/nearby", func(c *fiber.Ctx) error {
		coords, err := parseCoordsQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		list, err := stations.NearbyStations(c.Context(), coords.Lat, coords.Lng)
		if err != nil {
			if errors.Is(err, weather.ErrStationLookupFailed) {
				return fiber.NewError(fiber.StatusBadGateway, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch nearby stations")
		}

		return c.JSON(fiber.Map{"stations": list})
	})

	v1.Get("/stations/:id", func(c *fiber.Ctx) error {
		st := stations.StationDetails(c.Context(), c.Params("id"))
		if st == nil {
			return fiber.NewError(fiber.StatusNotFound, "station not found")
		}
		return c.JSON(st)
	})
}

// searchQuery holds the text-search query parameter.
type searchQuery struct {
	Q string `validate:"required"`
}

// coordsQuery holds a validated coordinate pair.
type coordsQuery struct {
	Lat float64 `validate:"latitude"`
	Lng float64 `validate:"longitude"`
}

func parseCoordsQuery(c *fiber.Ctx) (coordsQuery, error) {
	var q coordsQuery

	latStr := c.Query("lat")
	lngStr := c.Query("lng")
	if latStr == "" || lngStr == "" {
		return q, errors.New("lat and lng query parameters are required")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return q, errors.New("invalid lat; must be a decimal degree value")
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return q, errors.New("invalid lng; must be a decimal degree value")
	}

	q.Lat = lat
	q.Lng = lng

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

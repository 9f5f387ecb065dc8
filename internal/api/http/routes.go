package httpapi

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/yjleow/wbgt-bot/internal/wbgt"
	"github.com/yjleow/wbgt-bot/internal/wbgt/upstream"
)

var validate = validator.New()

// LivenessMessage is the fixed confirmation string served on the root path
// for the hosting platform's liveness probe.
const LivenessMessage = "WBGT Telegram Bot is running!"

// Fetcher retrieves the raw record list for a normalized date string.
type Fetcher interface {
	Fetch(ctx context.Context, date string) ([]wbgt.Record, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. The read-only
// query endpoint runs the same fetch/group pipeline as the bot but holds no
// session state, so it never contends with conversation processing.
func RegisterRoutes(app *fiber.App, fetcher Fetcher) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(LivenessMessage)
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "wbgt-bot",
		})
	})

	v1 := app.Group("/api/v1")

	v1.Get("/wbgt", func(c *fiber.Ctx) error {
		var q wbgtQuery
		q.Date = strings.TrimSpace(c.Query("date"))
		q.Station = c.Query("station")

		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		date, err := wbgt.ParseDateInput(q.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid date; use YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS")
		}

		records, err := fetcher.Fetch(c.Context(), date)
		if err != nil {
			if errors.Is(err, upstream.ErrMalformedPayload) {
				return fiber.NewError(fiber.StatusBadGateway, "unexpected response from weather source")
			}
			return fiber.NewError(fiber.StatusBadGateway, "failed to fetch WBGT data")
		}

		result := wbgt.GroupByStation(records)

		if q.Station != "" {
			readings, ok := result[q.Station]
			if !ok {
				return fiber.NewError(fiber.StatusNotFound, "no data for requested station")
			}
			return c.JSON(fiber.Map{
				"date":     date,
				"station":  q.Station,
				"readings": readings,
			})
		}

		return c.JSON(fiber.Map{
			"date":     date,
			"stations": result.Stations(),
			"readings": result,
		})
	})
}

// wbgtQuery holds query parameters for the WBGT endpoint.
type wbgtQuery struct {
	Date    string `validate:"required"`
	Station string
}

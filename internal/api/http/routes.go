package httpapi

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/trackside-weather/internal/weather"
)

var validate = validator.New()

// Resolver is what the routes need from weather.Service.
type Resolver interface {
	ResolveWeatherForEvent(ctx context.Context, eventID string) (*weather.Result, error)
	SweepExpired(ctx context.Context) (int, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service Resolver) {
	v1 := app.Group("/api/v1")

	v1.Get("/events/:id/weather", func(c *fiber.Ctx) error {
		params, err := parseEventParams(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		res, err := service.ResolveWeatherForEvent(c.UserContext(), params.ID)
		if err != nil {
			var exhausted *weather.ResolutionExhaustedError
			switch {
			case errors.Is(err, weather.ErrEventNotFound):
				return fiber.NewError(fiber.StatusNotFound, "event or track not found")
			case errors.As(err, &exhausted):
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error":      true,
					"message":    "weather unavailable and nothing cached for this event",
					"candidates": exhausted.Candidates,
					"cause":      errorText(exhausted.Err),
				})
			default:
				return fiber.NewError(fiber.StatusInternalServerError, "failed to resolve weather")
			}
		}

		return c.JSON(res)
	})

	v1.Post("/weather/sweep", func(c *fiber.Ctx) error {
		n, err := service.SweepExpired(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to sweep expired weather")
		}
		return c.JSON(fiber.Map{"removed": n})
	})
}

// eventParams holds path parameters identifying an event.
type eventParams struct {
	ID string `validate:"required,uuid"`
}

func parseEventParams(c *fiber.Ctx) (eventParams, error) {
	p := eventParams{ID: c.Params("id")}
	if err := validate.Struct(p); err != nil {
		return p, err
	}
	return p, nil
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

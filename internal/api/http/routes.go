package httpapi

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/current-weather-proxy/internal/store"
	"github.com/i474232898/current-weather-proxy/internal/weather"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "current-weather-proxy"

// RegisterRoutes wires the HTTP handlers into the Fiber app.
// requestTimeout bounds each weather lookup, retries included (0 = no deadline).
func RegisterRoutes(app *fiber.App, service *weather.Service, requestTimeout time.Duration) {
	app.Get("/health", func(c *fiber.Ctx) error {
		resp := fiber.Map{
			"status":  "ok",
			"service": ServiceName,
		}

		probe, err := service.UpstreamStatus()
		switch {
		case err == nil:
			resp["upstream"] = probe
			resp["recentFailures"] = service.RecentFailures()
			if !probe.OK {
				resp["status"] = "degraded"
			}
		case errors.Is(err, store.ErrNotFound):
			resp["upstream"] = "pending"
		}

		return c.JSON(resp)
	})

	app.Post("/getCurrentWeather", func(c *fiber.Ctx) error {
		var req weatherRequest
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		q, err := weather.NewQuery(req.City, req.OutputFormat)
		if err != nil {
			return toHTTPError(err)
		}

		ctx := c.UserContext()
		if requestTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, requestTimeout)
			defer cancel()
		}

		out, err := service.CurrentWeather(ctx, q)
		if err != nil {
			return toHTTPError(err)
		}

		c.Set(fiber.HeaderContentType, out.ContentType)
		return c.Status(fiber.StatusOK).Send(out.Body)
	})
}

// ErrorHandler renders every handler error as a JSON body.
func ErrorHandler(c *fiber.Ctx, err error) error {
	// Centralized error response
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// toHTTPError maps domain errors onto HTTP errors. Upstream details stay in the logs.
func toHTTPError(err error) error {
	var vErr *weather.ValidationError
	if errors.As(err, &vErr) {
		return fiber.NewError(fiber.StatusBadRequest, vErr.Message)
	}

	var upErr *weather.UpstreamError
	if !errors.As(err, &upErr) {
		log.Printf("ERROR: weather lookup failed: %v", err)
	}
	return fiber.NewError(fiber.StatusInternalServerError, "Internal Server Error")
}

// weatherRequest holds the body of a weather lookup.
type weatherRequest struct {
	City         string `json:"city" xml:"city" form:"city" query:"city"`
	OutputFormat string `json:"output_format" xml:"output_format" form:"output_format" query:"output_format"`
}

// bind reads the request body, falling back to query parameters when it is empty.
func (r *weatherRequest) bind(c *fiber.Ctx) error {
	if len(c.Body()) == 0 {
		return c.QueryParser(r)
	}
	return c.BodyParser(r)
}

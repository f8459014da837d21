package httpapi

import (
	"bytes"
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/html"

	"github.com/i474232898/todays-weather/internal/chart"
	"github.com/i474232898/todays-weather/internal/store"
	"github.com/i474232898/todays-weather/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	app.Get("/", func(c *fiber.Ctx) error {
		var graph []*html.Node
		ch, err := buildChart(c, service, weather.KindForecast)
		if err != nil {
			log.Printf("ERROR: chart render failed: %v", err)
			graph = []*html.Node{chart.ErrorMessage(err)}
		} else {
			graph = []*html.Node{ch.Root}
		}

		var narrative []*html.Node
		if paragraphs, err := service.Narrative(c.UserContext()); err != nil {
			log.Printf("INFO: narrative unavailable: %v", err)
		} else {
			narrative = chart.NarrativeNodes(paragraphs)
		}

		var buf bytes.Buffer
		if err := chart.WritePage(&buf, graph, narrative); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render page")
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.Send(buf.Bytes())
	})

	v1 := app.Group("/api/v1")

	// Mirrors the page's data endpoint: always 200, with either a success
	// document or an error message in the body.
	v1.Get("/backend", func(c *fiber.Ctx) error {
		kind, err := weather.ParseKind(c.Query("t"))
		if err != nil {
			return c.JSON(weather.Failed("Unknown type"))
		}
		return c.JSON(service.Backend(c.UserContext(), kind))
	})

	v1.Get("/chart.svg", func(c *fiber.Ctx) error {
		q, err := parseChartQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		ch, err := buildChart(c, service, q.kind())
		if err != nil {
			return toFiberError(err, "failed to render chart")
		}

		var buf bytes.Buffer
		if err := ch.WriteSVG(&buf); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to write chart")
		}
		c.Set(fiber.HeaderContentType, "image/svg+xml")
		return c.Send(buf.Bytes())
	})

	v1.Get("/chart.png", func(c *fiber.Ctx) error {
		q, err := parseChartQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		ds, err := service.Dataset(c.UserContext(), q.kind())
		if err != nil {
			return toFiberError(err, "failed to load forecast")
		}

		var buf bytes.Buffer
		if err := chart.WritePNG(&buf, ds); err != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}
		c.Set(fiber.HeaderContentType, "image/png")
		return c.Send(buf.Bytes())
	})

	v1.Get("/narrative", func(c *fiber.Ctx) error {
		paragraphs, err := service.Narrative(c.UserContext())
		if err != nil {
			return toFiberError(err, "failed to load regional forecast")
		}
		return c.JSON(fiber.Map{
			"paragraphs": paragraphs,
		})
	})

	v1.Get("/fields", func(c *fiber.Ctx) error {
		return c.JSON(service.Fields())
	})
}

// chartQuery holds query parameters for the chart endpoints.
type chartQuery struct {
	Type string `validate:"omitempty,oneof=forecast observation"`
}

func (q chartQuery) kind() weather.Kind {
	if q.Type == "" {
		return weather.KindForecast
	}
	return weather.Kind(q.Type)
}

func parseChartQuery(c *fiber.Ctx) (chartQuery, error) {
	q := chartQuery{Type: c.Query("t")}
	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

func buildChart(c *fiber.Ctx, service *weather.Service, kind weather.Kind) (*chart.Chart, error) {
	ds, err := service.Dataset(c.UserContext(), kind)
	if err != nil {
		return nil, err
	}
	return chart.Build(ds)
}

// toFiberError maps pipeline errors to HTTP status codes.
func toFiberError(err error, message string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, message)
	case errors.Is(err, weather.ErrUpstream), errors.Is(err, weather.ErrMalformedDocument):
		return fiber.NewError(fiber.StatusBadGateway, message+": "+err.Error())
	case errors.Is(err, chart.ErrNoSamples):
		return fiber.NewError(fiber.StatusUnprocessableEntity, message+": "+err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, message)
	}
}

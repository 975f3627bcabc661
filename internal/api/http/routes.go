package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/meteocat-tools/xema-aggregation/internal/store"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app. The serve mode
// exposes the latest collected document; it never triggers collection
// itself (the scheduler does).
func RegisterRoutes(app *fiber.App, acc *store.RunAccumulator) {
	v1 := app.Group("/api/v1")

	v1.Get("/reports/latest", func(c *fiber.Ctx) error {
		doc, err := acc.LatestDocument()
		if err != nil {
			if errors.Is(err, store.ErrNoDocument) {
				return fiber.NewError(fiber.StatusNotFound, "no collection run has completed yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load report")
		}
		return c.JSON(doc)
	})

	v1.Get("/reports/stations/:code", func(c *fiber.Ctx) error {
		var req stationQuery
		req.Code = c.Params("code")
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		doc, err := acc.LatestDocument()
		if err != nil {
			if errors.Is(err, store.ErrNoDocument) {
				return fiber.NewError(fiber.StatusNotFound, "no collection run has completed yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load report")
		}

		for _, rep := range doc.Series {
			if rep.Station.Code == req.Code {
				return c.JSON(fiber.Map{
					"generated_at": doc.GeneratedAt,
					"run_id":       doc.RunID,
					"start_date":   doc.StartDate,
					"end_date":     doc.EndDate,
					"report":       rep,
				})
			}
		}
		return fiber.NewError(fiber.StatusNotFound, "no report for requested station")
	})
}

// stationQuery holds the path parameter of the per-station endpoint.
type stationQuery struct {
	Code string `validate:"required,alphanum,max=8"`
}

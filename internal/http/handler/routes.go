package handler

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"archecho/internal/model"
	"archecho/internal/service"
)

// Services bundles the injected application services for route registration.
type Services struct {
	Discovery service.DiscoveryService
	Projects  service.ProjectService
	Concepts  service.ConceptService
	Linker    service.LinkService
}

type analyzeRequest struct {
	StoragePath string `json:"storage_path"`
}

// HealthCheck reports readiness based on DB connectivity only.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness check with no dependencies.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// QueryProjects runs the ranked discovery query. It never errors: a total
// load failure comes back as a single diagnostic row inside the list.
func QueryProjects(svc service.DiscoveryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filters := model.QueryFilters{
			ProjectType:    c.Query("project_type", "all"),
			AreaType:       c.Query("area_type", "all"),
			TotalFloorArea: c.Query("floor_area", "all"),
			SearchTerms:    strings.Fields(strings.ToLower(c.Query("q"))),
		}

		results := svc.Query(c.UserContext(), filters)
		return c.JSON(fiber.Map{
			"data":  results,
			"total": len(results),
		})
	}
}

// GetProject returns a single project with its full resolved file list.
func GetProject(svc service.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		p, err := svc.GetWithFiles(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrIDRequired) {
				return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "project id is required")
			}
			if errors.Is(err, service.ErrProjectNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "project not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(p)
	}
}

// AnalyzeProject extracts design concepts from a stored document and merges
// them into the project's tag set.
func AnalyzeProject(svc service.ConceptService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var req analyzeRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		tags, err := svc.AnalyzeObject(c.UserContext(), id, req.StoragePath)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrIDRequired):
				return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "project id is required")
			case errors.Is(err, service.ErrStoragePathRequired):
				return writeError(c, fiber.StatusBadRequest, "STORAGE_PATH_REQUIRED", "storage_path is required")
			case errors.Is(err, service.ErrProjectNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "project not found")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.JSON(fiber.Map{"design_concepts": tags})
	}
}

// UploadFile stores an uploaded file and links it to its project by filename
// convention (multipart/form-data, field name: file).
func UploadFile(svc service.LinkService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		report, err := svc.Upload(c.UserContext(), f, fh.Filename, ct, fh.Size)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(report)
	}
}

// GetFilters lists the filter vocabularies for the discovery surface.
func GetFilters() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"project_types":          model.ProjectTypes,
			"area_types":             model.AreaTypes,
			"floor_area_options":     model.FloorAreaOptions,
			"design_concept_options": model.DesignConceptOptions,
		})
	}
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin: parse, delegate, translate errors.
func RegisterRoutes(app *fiber.App, db *sql.DB, metrics prometheus.Gatherer, svcs Services) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	// Prometheus exposition, bridged onto fasthttp
	if metrics != nil {
		metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(metrics, promhttp.HandlerOpts{}))
		app.Get("/metrics", func(c *fiber.Ctx) error {
			metricsHandler(c.Context())
			return nil
		})
	}

	app.Get("/filters", GetFilters())
	app.Get("/projects", QueryProjects(svcs.Discovery))
	app.Get("/projects/:id", GetProject(svcs.Projects))
	app.Post("/projects/:id/analyze", AnalyzeProject(svcs.Concepts))
	app.Post("/files", UploadFile(svcs.Linker))
}

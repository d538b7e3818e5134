package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"arxivimg/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// db may be nil when the fetch audit log is disabled.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc service.ImageService) {
	// Serve OpenAPI spec and a standalone Swagger UI page
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

	// Readiness: checks DB connectivity when the audit log is configured
	app.Get("/health", HealthCheck(db))

	// Simple liveness probe
	app.Get("/healthz", LivenessProbe())

	// Core endpoint: fetch one figure from an arXiv HTML page
	app.Get("/get_single_arxiv_image", GetSingleArxivImage(svc))

	// Fetch audit log
	app.Get("/fetches", ListFetches(svc))
	app.Get("/fetches/:id", GetFetch(svc))
	app.Delete("/fetches/:id", DeleteFetch(svc))
}

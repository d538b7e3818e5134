package main

import (
	"context"
	"database/sql"
	"log"
	"strings"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"arxivimg/docs"
	"arxivimg/internal/arxiv"
	"arxivimg/internal/config"
	"arxivimg/internal/database"
	"arxivimg/internal/database/migration"
	handlers "arxivimg/internal/http/handler"
	"arxivimg/internal/http/middleware"
	appotel "arxivimg/internal/otel"
	"arxivimg/internal/repository"
	"arxivimg/internal/repository/postgres"
	"arxivimg/internal/service"
	"arxivimg/internal/storage"
)

// @title arXiv Single Image Fetcher
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx := context.Background()
	loc := time.UTC

	// Initialize OTLP tracing (no-op when OTEL_SDK_DISABLED=true)
	shutdownTracing, err := appotel.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	// Fetch audit log is optional: only wired when the database is configured
	var (
		db   *sql.DB
		repo repository.FetchRepository
	)
	if cfg.Database.Enabled() {
		db, err = database.NewPostgres(cfg.Database)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
		repo = postgres.NewFetchPostgres(db)
	}

	// Figure cache is optional: only wired when MinIO is configured
	var cache storage.Storage
	if cfg.MinIO.Enabled() {
		cache, err = storage.NewMinIO(cfg.MinIO)
		if err != nil {
			log.Fatalf("failed to initialize figure cache: %v", err)
		}
	}

	fetcher := arxiv.NewClient(cfg.Arxiv)
	imgSvc := service.NewImageService(fetcher, cache, repo, cfg.Arxiv.AllowedHost)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	// Server-side tracing spans
	app.Use(otelfiber.Middleware())

	// Prometheus request metrics and exposition endpoint
	promMW, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to register prometheus metrics: %v", err)
	}
	app.Use(promMW.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Register HTTP routes with injected service
	handlers.RegisterRoutes(app, db, imgSvc)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

package http

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"

	"webscout/internal/config"
	"webscout/internal/metrics"
)

// Server is the REST API.
type Server struct {
	app    *fiber.App
	config *config.Config
	rdb    *redis.Client
	logger *slog.Logger
}

// NewServer wires routes and middleware. Search and fetch are served by the
// given implementations.
func NewServer(cfg *config.Config, searcher Searcher, fetcher Fetcher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	// Inject config and services into context for handlers
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("config", cfg)
		c.Locals("searcher", searcher)
		c.Locals("fetcher", fetcher)
		return c.Next()
	})
	app.Use(requestLogger(logger))

	// Redis client for shared rate limiting and health checks
	var rdb *redis.Client
	if cfg.Redis.URL != "" {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Warn("invalid redis url, falling back to in-process rate limiting", "error", err)
		} else {
			rdb = redis.NewClient(opt)
		}
	}

	app.Get("/healthz", func(c *fiber.Ctx) error {
		// Shallow health: process is up
		if c.Query("deep") != "true" {
			return c.JSON(fiber.Map{"status": "ok"})
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		redisStatus := "disabled"
		if rdb != nil {
			if err := rdb.Ping(ctx).Err(); err != nil {
				redisStatus = "error"
			} else {
				redisStatus = "ok"
			}
		}

		status := "ok"
		if redisStatus == "error" {
			status = "error"
		}
		return c.JSON(fiber.Map{
			"status": status,
			"redis":  redisStatus,
		})
	})

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	var rateMw fiber.Handler
	if rdb != nil {
		rateMw = redisRateLimit(cfg.RateLimit.DefaultPerMinute, rdb)
	} else {
		rateMw = localRateLimit(cfg.RateLimit.DefaultPerMinute)
	}

	v1 := app.Group("/v1", rateMw)
	v1.Post("/search", searchHandler)
	v1.Post("/fetch", fetchHandler)

	return &Server{
		app:    app,
		config: cfg,
		rdb:    rdb,
		logger: logger,
	}
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.logger.Info("rest api listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown stops the listener and closes the Redis client.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.app.ShutdownWithContext(ctx)
	if s.rdb != nil {
		_ = s.rdb.Close()
	}
	return err
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if fe, ok := err.(*fiber.Error); ok {
		code = fe.Code
	}
	return c.Status(code).JSON(ErrorResponse{
		Success: false,
		Code:    "ERROR",
		Error:   err.Error(),
	})
}

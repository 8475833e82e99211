// Package main provides the Propsheet API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/trace"

	"github.com/propsheet/propsheet/pkg/eventbus"
	"github.com/propsheet/propsheet/pkg/groupstate"
	"github.com/propsheet/propsheet/pkg/inspector"
	"github.com/propsheet/propsheet/pkg/services"
	"github.com/propsheet/propsheet/pkg/web"
)

type API struct {
	logger   *slog.Logger
	store    groupstate.Store
	registry *inspector.Registry
	eventBus eventbus.EventBus
	tracer   trace.Tracer
	validate *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	store groupstate.Store,
	registry *inspector.Registry,
) *API {
	return &API{
		logger:   logger,
		store:    store,
		registry: registry,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) WithEventBus(bus eventbus.EventBus) *API {
	a.eventBus = bus

	return a
}

func (a *API) WithTracer(tracer trace.Tracer) *API {
	a.tracer = tracer

	return a
}

func (a *API) App() *fiber.App {
	sessionService := services.NewSessions(a.registry, a.store, a.logger)
	if a.eventBus != nil {
		sessionService = sessionService.WithEventBus(a.eventBus)
	}

	if a.tracer != nil {
		sessionService = sessionService.WithTracer(a.tracer)
	}

	handlers := web.NewAPIHandlers(sessionService, a.validate, a.registry)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Propsheet API")
	})

	s := app.Group("/sessions")
	s.Post("/", handlers.CreateSession)
	s.Get("/", handlers.GetSessions)
	s.Get("/:id", handlers.GetSession)
	s.Delete("/:id", handlers.DeleteSession)
	s.Get("/:id/values", handlers.GetValues)
	s.Put("/:id/values/:property", handlers.SetValue)
	s.Post("/:id/validate", handlers.ValidateSession)
	s.Post("/:id/commit", handlers.CommitSession)
	s.Put("/:id/overrides/:property", handlers.SetOverride)
	s.Delete("/:id/overrides/:property", handlers.DeleteOverride)
	s.Put("/:id/groups/:index", handlers.SetGroupExpanded)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}

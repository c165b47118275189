// Package main provides the Cascade API server.
package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/trace"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/cascadehq/cascade/pkg/engine"
	"github.com/cascadehq/cascade/pkg/eventbus"
	"github.com/cascadehq/cascade/pkg/persistence"
	"github.com/cascadehq/cascade/pkg/services"
	"github.com/cascadehq/cascade/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	validate    *validator.Validate
	tracer      trace.Tracer
	workers     int
	queueSize   int
}

func NewAPI(
	logger *slog.Logger,
	p persistence.Persistence,
	eventBus eventbus.EventBus,
	tracer trace.Tracer,
	workers, queueSize int,
) *API {
	return &API{
		logger:      logger,
		persistence: p,
		eventBus:    eventBus,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		tracer:      tracer,
		workers:     workers,
		queueSize:   queueSize,
	}
}

func (a *API) App(ctx context.Context) *fiber.App {
	workflowService := services.NewWorkflow(a.persistence, services.WithEventPublisher(a.eventBus))
	instanceService := services.NewInstance(a.persistence)

	engineOpts := []engine.Option{engine.WithPublisher(a.eventBus)}
	if a.tracer != nil {
		engineOpts = append(engineOpts, engine.WithTracer(a.tracer))
	}

	runEngine := engine.NewEngine(a.persistence, a.logger.With("module", "engine"), engineOpts...)

	dispatcher := engine.NewDispatcher(runEngine, a.logger.With("module", "dispatcher"), a.workers, a.queueSize)
	dispatcher.Start(ctx)

	handlers := web.NewAPIHandlers(workflowService, instanceService, runEngine, dispatcher, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Cascade API")
	})

	app.Get("/palette", handlers.GetPalette)

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Patch("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Put("/:id/graph", handlers.SaveWorkflowGraph)
	w.Post("/:id/publish", handlers.PublishWorkflow)
	w.Post("/:id/execute", handlers.ExecuteWorkflow)
	w.Get("/:id/instances", handlers.GetWorkflowInstances)

	app.Get("/instances/:id", handlers.GetInstance)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(ctx context.Context, port int) error {
	app := a.App(ctx)

	return app.Listen(":" + strconv.Itoa(port))
}

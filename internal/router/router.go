package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/tanvir4425/Mask-App-sub001/internal/handler"
	"github.com/tanvir4425/Mask-App-sub001/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	FactCheck *handler.FactCheckHandler
	Trust     *handler.TrustHandler
	Event     *handler.EventHandler
	Admin     *handler.AdminHandler
	Health    *handler.HealthHandler
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, corsOrigins string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(handler.MetricsMiddleware())
	app.Use(middleware.NewCORS(corsOrigins))

	// Probes and metrics (before API group, no rate limits)
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", handler.MetricsHandler())

	reads := middleware.NewReadRateLimiter().Handler()
	events := middleware.NewEventRateLimiter().Handler()
	admin := middleware.NewAdminRateLimiter().Handler()

	// API routes
	api := app.Group("/api")

	// Public read routes
	api.Get("/posts/:postId/factcheck", h.FactCheck.GetByPostID, reads)
	api.Get("/trust/:subjectType/:subjectId", h.Trust.GetBySubject, reads)

	// Internal event routes (service-to-service)
	internal := api.Group("/internal")
	internal.Post("/events/post-created", h.Event.PostCreated, events)
	internal.Post("/events/reaction", h.Event.Reaction, events)

	// Admin routes
	adm := api.Group("/admin")
	adm.Post("/factcheck/run-all", h.Admin.RunAll, admin)
	adm.Post("/factcheck/:postId", h.Admin.TriggerPost, admin)
	adm.Post("/trust/:subjectType/:subjectId/recompute", h.Admin.RecomputeTrust, admin)
}

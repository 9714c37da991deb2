package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/clinic-pos/internal/access"
	"github.com/spec-kit/clinic-pos/internal/api/http/handlers"
	"github.com/spec-kit/clinic-pos/internal/auth"
	"github.com/spec-kit/clinic-pos/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Auth      *handlers.AuthHandler
	Access    *handlers.AccessHandler
	Dashboard *handlers.DashboardHandler

	Session *auth.SessionMiddleware
	Policy  access.Checker
	Metrics *observability.Metrics

	// Gatherer serves /metrics. Nil skips the endpoint.
	Gatherer prometheus.Gatherer
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	authGroup := app.Group("/auth", cfg.Session.Handle)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/session", cfg.Auth.Session)
	authGroup.Post("/logout", auth.RequireAuthenticated(), cfg.Auth.Logout)
	authGroup.Post("/password/change", auth.RequireAuthenticated(), cfg.Auth.ChangePassword)

	accessGroup := app.Group("/access", cfg.Session.Handle, auth.RequireAuthenticated())
	accessGroup.Get("/check", cfg.Access.Check)
	accessGroup.Get("/routes", cfg.Access.Routes)

	dashboard := app.Group("/dashboard", cfg.Session.Handle, GuardMiddleware(cfg.Policy, cfg.Metrics))
	dashboard.Get("/", cfg.Dashboard.Page)
	dashboard.Get("/*", cfg.Dashboard.Page)
}

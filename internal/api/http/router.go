package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/shop-service/internal/api/http/handlers"
	"github.com/spec-kit/shop-service/internal/auth"
	"github.com/spec-kit/shop-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Profile        *handlers.ProfileHandler
	Categories     *handlers.CategoriesHandler
	Products       *handlers.ProductsHandler
	AuthMiddleware *auth.AuthMiddleware
	LoginLimiter   *RateLimiter
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	throttled := func(h fiber.Handler) []fiber.Handler {
		if cfg.LoginLimiter == nil {
			return []fiber.Handler{h}
		}
		return []fiber.Handler{cfg.LoginLimiter.Handler(), h}
	}
	requireUser := cfg.AuthMiddleware.Handle

	app.Post("/register", throttled(cfg.Auth.Register)...)
	app.Post("/login", throttled(cfg.Auth.Login)...)
	app.Post("/logout", requireUser, cfg.Auth.Logout)
	app.Post("/token/refresh", cfg.Auth.Refresh)

	app.Get("/profile", requireUser, cfg.Profile.Get)
	app.Patch("/profile", requireUser, cfg.Profile.Update)

	categories := app.Group("/categories")
	categories.Get("/", cfg.Categories.List)
	categories.Get("/:id", cfg.Categories.Get)
	categories.Post("/", requireUser, auth.RequireAdmin(), cfg.Categories.Create)
	categories.Patch("/:id", requireUser, auth.RequireAdmin(), cfg.Categories.Rename)
	categories.Delete("/:id", requireUser, auth.RequireAdmin(), cfg.Categories.Delete)

	products := app.Group("/products")
	products.Get("/", cfg.Products.List)
	products.Get("/:id", cfg.Products.Get)
	products.Post("/", requireUser, cfg.Products.Create)
	products.Patch("/:id", requireUser, cfg.Products.Update)
	products.Delete("/:id", requireUser, cfg.Products.Delete)
}

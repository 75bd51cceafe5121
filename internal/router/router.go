package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/correcteur-api/internal/config"
	"github.com/noah-isme/correcteur-api/internal/handler"
	"github.com/noah-isme/correcteur-api/internal/middleware"
	"github.com/noah-isme/correcteur-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	PolicyHandler     *handler.PolicyHandler
	SubjectHandler    *handler.SubjectHandler
	StudentHandler    *handler.StudentHandler
	SubmissionHandler *handler.SubmissionHandler
	ReferenceHandler  *handler.ReferenceHandler
	JWTMiddleware     fiber.Handler
	SubmitLimiter     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	v1 := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	v1.Get("/health", handler.HealthCheck(cfg))

	api := app.Group("/api")

	if deps.StudentHandler != nil {
		var guards []fiber.Handler
		if deps.SubmitLimiter != nil {
			guards = append(guards, deps.SubmitLimiter)
		}
		deps.StudentHandler.Register(api, guards...)
	}

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = middleware.JWTProtected(cfg.JWTSecret)
	}
	admin := api.Group("/admin", jwtMiddleware, middleware.RequireRole(middleware.RoleAdmin, middleware.RoleTeacher))

	if deps.PolicyHandler != nil {
		deps.PolicyHandler.Register(admin.Group("/prompts"))
	}
	if deps.SubjectHandler != nil {
		deps.SubjectHandler.Register(admin.Group("/subjects"))
	}
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(admin.Group("/submissions"))
	}
	if deps.ReferenceHandler != nil {
		deps.ReferenceHandler.Register(admin.Group("/reference"))
	}
}

package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/leetnote-go-api/internal/config"
	"github.com/noah-isme/leetnote-go-api/internal/handler"
	"github.com/noah-isme/leetnote-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	EvaluationHandler *handler.EvaluationHandler
	SubmissionHandler *handler.SubmissionHandler
	ProblemHandler    *handler.ProblemHandler
	UserHandler       *handler.UserHandler
	LeetcodeHandler   *handler.LeetcodeHandler
	HealthProbes      map[string]handler.HealthProbe
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes))

	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.EvaluationHandler != nil {
		deps.EvaluationHandler.Register(app.Group("/evaluations", jwtMiddleware))
	}

	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(app.Group("/submissions", jwtMiddleware))
	}

	if deps.ProblemHandler != nil {
		deps.ProblemHandler.Register(app.Group("/problems", jwtMiddleware))
	}

	if deps.UserHandler != nil {
		deps.UserHandler.Register(app.Group("/api/users", jwtMiddleware))
	}

	if deps.LeetcodeHandler != nil {
		deps.LeetcodeHandler.Register(app.Group("/api/leetcode", jwtMiddleware))
	}
}

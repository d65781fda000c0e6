package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-challenge-api/internal/config"
	"github.com/noah-isme/gema-challenge-api/internal/handler"
	"github.com/noah-isme/gema-challenge-api/internal/middleware"
	"github.com/noah-isme/gema-challenge-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ParticipantHandler      *handler.ParticipantHandler
	ProblemHandler          *handler.ProblemHandler
	SubmissionHandler       *handler.SubmissionHandler
	LeaderboardHandler      *handler.LeaderboardHandler
	GatewayHandler          *handler.GatewayHandler
	AdminProblemHandler     *handler.AdminProblemHandler
	AdminParticipantHandler *handler.AdminParticipantHandler
	ReviewHandler           *handler.ReviewHandler
	StatsHandler            *handler.StatsHandler
	JWTMiddleware           fiber.Handler
	GatewayMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	gatewayMiddleware := deps.GatewayMiddleware
	if gatewayMiddleware == nil {
		gatewayMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.ParticipantHandler != nil {
		participants := api.Group("/participants")
		deps.ParticipantHandler.Register(participants)
	}

	if deps.ProblemHandler != nil {
		problems := api.Group("/problems")
		deps.ProblemHandler.Register(problems)

		if deps.SubmissionHandler != nil {
			deps.SubmissionHandler.Register(problems)
		}
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions")
		deps.SubmissionHandler.RegisterSubmissionRoutes(submissions)
	}

	if deps.LeaderboardHandler != nil {
		leaderboard := api.Group("/leaderboard")
		deps.LeaderboardHandler.Register(leaderboard)
	}

	// Chat updates relayed by the messaging gateway. Authenticated with the
	// shared gateway token and rate limited per client.
	if deps.GatewayHandler != nil {
		gateway := api.Group("/gateway", gatewayMiddleware, middleware.RateLimit("gateway", 60, time.Minute))
		deps.GatewayHandler.Register(gateway)
	}

	// Operator surface.
	admin := api.Group("/admin", jwtMiddleware, middleware.RequireRole("admin"))

	if deps.AdminProblemHandler != nil {
		adminProblems := admin.Group("/problems")
		deps.AdminProblemHandler.Register(adminProblems)

		if deps.ReviewHandler != nil {
			deps.ReviewHandler.RegisterProblemRoutes(adminProblems)
		}
	}

	if deps.AdminParticipantHandler != nil {
		adminParticipants := admin.Group("/participants")
		deps.AdminParticipantHandler.Register(adminParticipants)
	}

	if deps.ReviewHandler != nil {
		submissions := admin.Group("/submissions")
		deps.ReviewHandler.Register(submissions)
	}

	if deps.StatsHandler != nil {
		stats := admin.Group("/stats")
		deps.StatsHandler.Register(stats)
	}
}

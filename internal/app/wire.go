package app

import (
	"log/slog"

	"github.com/betpool/tracker/internal/auth"
	"github.com/betpool/tracker/internal/guard"
	"github.com/betpool/tracker/internal/handler"
	"github.com/betpool/tracker/internal/ledger"
	"github.com/betpool/tracker/internal/metrics"
	"github.com/betpool/tracker/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Engine     *ledger.Engine
	Board      *service.BoardService
	JWTMgr     *auth.JWTManager
	Logger     *slog.Logger
	CORSOrigin string
	// Health checks keyed by dependency name (store, cache)
	Checks map[string]handler.HealthChecker
	// Optional write guards; nil disables them
	AdminLimiter *guard.RateLimiter
	Idempotency  *guard.IdempotencyGuard
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	engine := deps.Engine
	jwtMgr := deps.JWTMgr
	logger := deps.Logger

	origin := deps.CORSOrigin
	if origin == "" {
		origin = "*"
	}

	// Handlers
	memberHandler := handler.NewMemberHandler(engine)
	betHandler := handler.NewBetHandler(engine)
	eventHandler := handler.NewEventHandler(engine)
	botwHandler := handler.NewBetOfTheWeekHandler(engine)
	statsHandler := handler.NewStatsHandler(deps.Board)
	adminHandler := handler.NewAdminHandler(engine, logger)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(metrics.Middleware)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORS(origin))

	// Prometheus exposition keeps its own content type
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(handler.JSONContentType)

		r.Get("/health", handler.HealthHandler(engine, deps.Checks))

		// Public reads
		r.Get("/members", memberHandler.List)
		r.Route("/bets", func(r chi.Router) {
			r.Get("/", betHandler.List)
			r.Get("/recent", betHandler.Recent)
		})
		r.Route("/events", func(r chi.Router) {
			r.Get("/", eventHandler.List)
			r.Get("/upcoming", eventHandler.Upcoming)
		})
		r.Get("/bet-of-the-week", botwHandler.Get)
		r.Route("/stats", func(r chi.Router) {
			r.Get("/members/{id}", statsHandler.Member)
			r.Get("/leaderboard", statsHandler.Leaderboard)
			r.Get("/awards", statsHandler.Awards)
			r.Get("/hot-hand", statsHandler.HotHand)
			r.Get("/summary", statsHandler.Summary)
			r.Get("/board", statsHandler.Board)
		})

		// Admin-authenticated routes
		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.AuthenticateAdmin(jwtMgr))

			// Any admin role may inspect
			r.Get("/reconcile", adminHandler.Reconcile)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(auth.WriteRoles()...))
				if deps.AdminLimiter != nil {
					r.Use(handler.RateLimit(deps.AdminLimiter))
				}
				if deps.Idempotency != nil {
					r.Use(handler.Idempotent(deps.Idempotency))
				}

				r.Post("/refresh", adminHandler.Refresh)

				r.Route("/members", func(r chi.Router) {
					r.Post("/", memberHandler.Create)
					r.Post("/{id}/funds", memberHandler.AddFunds)
					r.Put("/{id}/balance", memberHandler.SetBalance)
				})

				r.Route("/bets", func(r chi.Router) {
					r.Post("/", betHandler.Place)
					r.Post("/{id}/settle", betHandler.Settle)
					r.Delete("/{id}", betHandler.Delete)
				})

				r.Route("/events", func(r chi.Router) {
					r.Post("/", eventHandler.Create)
					r.Post("/{id}/attendees", eventHandler.AddAttendee)
					r.Post("/{id}/complete", eventHandler.Complete)
					r.Delete("/{id}", eventHandler.Delete)
				})

				r.Put("/bet-of-the-week", botwHandler.Set)
				r.Delete("/bet-of-the-week", botwHandler.Clear)
			})
		})
	})

	return r
}

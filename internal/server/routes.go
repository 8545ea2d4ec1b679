package server

import (
	"context"

	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"clubdir/internal/cache"
	"clubdir/internal/clock"
	"clubdir/internal/email"
	"clubdir/internal/handlers/api"
	"clubdir/internal/middleware"
	"clubdir/internal/models"
	"clubdir/internal/services"
	"clubdir/internal/store"
)

// Deps are the services the routes are wired to.
type Deps struct {
	Clubs    *services.ClubService
	Access   *services.AccessService
	Events   *services.EventService
	Users    *services.UserService
	Store    store.Client             // optional; pinged by /readyz
	Tokens   *middleware.TokenManager // nil disables bearer tokens
	Cache    *cache.Cache
	Stats    *cache.Stats
	Mail     *email.Service      // optional
	Admins   api.RecipientLister // optional
	Clock    clock.Clock
	Gatherer prometheus.Gatherer // nil serves the default registry
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(ctx context.Context, d Deps) error {
	log := s.Logger
	auth := middleware.NewAuthMiddleware(d.Tokens, log)

	clubs := api.NewClubHandler(d.Clubs, log)
	access := api.NewAccessRequestHandler(d.Access, log)
	events := api.NewEventHandler(d.Events, log)
	users := api.NewAuthHandler(d.Users, d.Tokens, log)
	debug := api.NewDebugHandler(s.Cfg.EnableDebugEndpoints, d.Cache, d.Stats, d.Mail, d.Admins, d.Clock, log)

	probes := api.NewProbeHandler(d.Store, log)
	s.App.Get("/healthz", probes.Liveness)
	s.App.Get("/readyz", probes.Readiness)

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	s.App.Use(auth.LoadPrincipal)
	app := s.App

	// Public directory
	app.Get("/clubs", clubs.ListPublic)
	app.Get("/clubs/:id", clubs.GetPublic)

	// Accounts
	app.Post("/signup", users.Signup)
	app.Post("/auth/login", users.Login)
	app.Post("/auth/logout", users.Logout)
	app.Get("/auth/me", users.Me)

	if s.Cfg.IsOIDCEnabled() {
		oidcHandler, err := api.NewOIDCHandler(ctx, s.Cfg, d.Users, log)
		if err != nil {
			return err
		}
		app.Get("/auth/oidc/login", oidcHandler.Login)
		app.Get("/auth/oidc/callback", oidcHandler.Callback)
	} else {
		log.Info("OIDC sign-in disabled (OIDC_ISSUER not set)")
	}

	// Leader routes; role and membership checks happen in the services.
	// The admin group is also gated on role here.
	leader := app.Group("/leader", auth.RequireAuth)
	leader.Get("/club", clubs.GetOwn)
	leader.Post("/club", clubs.SubmitOwn)
	leader.Get("/clubs", clubs.ListMine)
	leader.Post("/clubs", clubs.Create)
	leader.Get("/clubs/:clubId", clubs.GetManaged)
	leader.Post("/clubs/:clubId", clubs.UpdateManaged)
	leader.Get("/events", events.List)
	leader.Post("/events", events.Create)
	leader.Get("/events/:eventId", events.Get)
	leader.Post("/events/:eventId", events.Update)

	app.Get("/access-requests", access.Latest)
	app.Get("/access-requests/mine", access.Mine)
	app.Post("/access-requests", access.Submit)

	// Admin review queues
	admin := app.Group("/admin", auth.RequireRole(models.RoleAdmin))
	admin.Get("/clubs/pending", clubs.ListPending)
	admin.Get("/clubs/pending/count", clubs.CountPending)
	admin.Post("/clubs/:id/approve", clubs.Approve)
	admin.Post("/clubs/:id/reject", clubs.Reject)
	admin.Get("/access-requests/pending", access.ListPending)
	admin.Post("/access-requests/:id/approve", access.Approve)
	admin.Post("/access-requests/:id/reject", access.Reject)

	// Development diagnostics
	dbg := app.Group("/debug", debug.Guard)
	dbg.Get("/airtable-stats", debug.Stats)
	dbg.Post("/airtable-stats", debug.StatsAction)
	dbg.Get("/send-test-email", debug.TestEmailUsage)
	dbg.Post("/send-test-email", debug.SendTestEmail)

	if !s.Cfg.EnableDebugEndpoints {
		log.Info("debug endpoints disabled", zap.String("env", s.Cfg.Env))
	}
	return nil
}

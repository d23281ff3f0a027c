package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/MailerAdmin/internal/middleware"
	"github.com/atinyakov/MailerAdmin/internal/models"
)

// DefaultAuthRateLimit is the per-IP budget of login and register
// requests per minute.
const DefaultAuthRateLimit = 20

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	Auth      *AuthHandler
	Users     *UserHandler
	Billing   *BillingHandler
	Campaigns *CampaignHandler
	Stats     *StatsHandler
}

// NewRouter constructs the stub admin API under /api.
//
// Middleware chain (applied in order):
//  1. AllowContentType("application/json"), which rejects non-JSON bodies
//  2. WithRequestLogging(logger)
//  3. per-IP rate limiting on login and register
//  4. BearerAuth on every route but the public auth ones, plus
//     RequireAdmin on everything except /auth/me
func NewRouter(h Handlers, authn middleware.Authenticator, logger *zap.Logger, authRateLimit int) http.Handler {
	if authRateLimit <= 0 {
		authRateLimit = DefaultAuthRateLimit
	}
	r := chi.NewRouter()

	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(middleware.WithRequestLogging(logger))

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(authRateLimit))
			r.Post("/auth/login", h.Auth.Login)
			r.Post("/auth/register", h.Auth.Register)
		})
		r.Post("/auth/forgot-password", h.Auth.ForgotPassword)
		r.Post("/auth/reset-password", h.Auth.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(authn))
			r.Get("/auth/me", h.Auth.Me)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Post("/auth/admin/reset-user-password", h.Auth.AdminResetPassword)
				r.Get("/auth/pending-registrations", h.Auth.PendingRegistrations)
				r.Post("/auth/verify-registration", h.Auth.VerifyRegistration)

				r.Route("/users", func(r chi.Router) {
					r.Get("/", h.Users.List)
					r.Get("/{id}", h.Users.Get)
					r.Patch("/{id}", h.Users.UpdateRole)
					r.Delete("/{id}", h.Users.Delete)
					r.Patch("/{id}/restrict", h.Users.Restrict)
					r.Patch("/{id}/suspend", h.Users.Suspend)
					r.Patch("/{id}/activate", h.Users.Activate)
				})

				r.Route("/billing", func(r chi.Router) {
					r.Get("/", h.Billing.Snapshot)
					r.Get("/plans", h.Billing.Plans)
					r.Post("/plan", h.Billing.CreatePlan)
					r.Patch("/plan/{name}", h.Billing.UpdateLimit)
					r.Delete("/plan/{name}", h.Billing.DeletePlan)
				})

				r.Route("/campaigns", func(r chi.Router) {
					r.Get("/", h.Campaigns.List)
					r.Get("/stats/overview", h.Campaigns.Overview)
					r.Get("/{id}", h.Campaigns.Get)
					r.Get("/{id}/stats", h.Campaigns.Stats)
					r.Patch("/{id}/pause", h.Campaigns.Transition(models.ActionPause))
					r.Patch("/{id}/resume", h.Campaigns.Transition(models.ActionResume))
					r.Patch("/{id}/stop", h.Campaigns.Transition(models.ActionStop))
				})

				r.Route("/stats", func(r chi.Router) {
					r.Get("/", h.Stats.Summary)
					r.Get("/weekly-engagement", h.Stats.Weekly)
					r.Get("/weekly-engagement-breakdown", h.Stats.Breakdown)
					r.Get("/user/{id}", h.Stats.User)
				})
			})
		})
	})

	return r
}

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth     *AuthHandler
	Vote     *VoteHandler
	Runoff   *RunoffHandler
	Audit    *AuditHandler
	Election *ElectionHandler
	Catalog  *CatalogHandler
	Stats    *StatsHandler
	Voter    *VoterHandler
	Admin    *AdminHandler
}

func NewHandler(h Handlers, authService ports.AuthService, limiter *RateLimiter, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORS(allowedOrigins))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(Authenticate(authService))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("welcome"))
		})

		r.Route("/auth", func(r chi.Router) {
			r.With(limiter.Middleware).Post("/voter/login", h.Auth.VoterLogin)
			r.With(limiter.Middleware).Post("/admin/login", h.Auth.AdminLogin)
			r.Post("/logout", h.Auth.Logout)
		})

		r.Get("/positions", h.Catalog.ListPositions)
		r.Get("/stats/overall", h.Stats.Overall)

		r.Route("/votes", func(r chi.Router) {
			r.Use(limiter.Middleware)
			r.With(RequireVoter).Post("/", h.Vote.CastBallot)
			r.Post("/verify", h.Vote.VerifyVote)
		})

		r.With(limiter.Middleware, RequireVoter).Post("/runoffs/{id}/votes", h.Runoff.Vote)

		r.Route("/admin", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(RequireRole(domain.RoleAdmin))

				r.Get("/runoffs", h.Runoff.List)
				r.Get("/runoffs/{id}", h.Runoff.Get)
				r.Get("/runoffs/{id}/results", h.Runoff.Results)

				r.Get("/audit/votes/{id}", h.Audit.AuditVote)
				r.Get("/audit/fraud", h.Audit.Fraud)
				r.Get("/audit/suspicious", h.Audit.Suspicious)
				r.Get("/audit/logs", h.Audit.Logs)

				r.Get("/stats/positions/{id}", h.Stats.Position)
				r.Get("/stats/top-candidates", h.Stats.TopCandidates)
				r.Get("/stats/trends", h.Stats.Trends)

				r.Get("/election", h.Election.Status)
				r.Get("/election/history", h.Election.History)

				r.Post("/positions", h.Catalog.CreatePosition)
				r.Post("/positions/{id}/candidates", h.Catalog.CreateCandidate)

				r.Get("/profile", h.Admin.Profile)
				r.Post("/change-password", h.Admin.ChangePassword)
			})

			r.Group(func(r chi.Router) {
				r.Use(RequireRole(domain.RoleSuperAdmin))

				r.Post("/runoffs/detect", h.Runoff.Detect)
				r.Post("/runoffs/{id}/start", h.Runoff.Start)
				r.Post("/runoffs/{id}/complete", h.Runoff.Complete)

				r.Post("/audit/full", h.Audit.FullAudit)

				r.Post("/election/start", h.Election.Transition(domain.PhaseActive))
				r.Post("/election/pause", h.Election.Transition(domain.PhasePaused))
				r.Post("/election/complete", h.Election.Transition(domain.PhaseCompleted))
				r.Post("/election/cancel", h.Election.Transition(domain.PhaseCancelled))
				r.Put("/election/settings", h.Election.UpdateSettings)

				r.Post("/voters/import", h.Voter.Import)

				r.Get("/admins", h.Admin.List)
				r.Post("/admins", h.Admin.Create)
				r.Put("/admins/{id}/role", h.Admin.UpdateRole)
				r.Post("/admins/{id}/deactivate", h.Admin.Deactivate)
			})
		})
	})

	return r
}

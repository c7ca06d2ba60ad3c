package http

import (
	"net/http"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"vetdesk/internal/auth"
	"vetdesk/internal/clinic"
	"vetdesk/internal/config"
	"vetdesk/internal/exporter"
	"vetdesk/internal/notify"
)

// NewRouter wires application routes and middleware using chi.
func NewRouter(cfg config.Config, flow *auth.Flow, authService *auth.Service, origins *auth.OriginPolicy, clinicSvc *clinic.Service, whatsapp *notify.WhatsAppClient, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Throttle(200))
	// The origin policy is the single source of truth for CORS grants too.
	// Handing wildcard entries to cors.AllowedOrigins would match them as
	// arbitrary globs instead of digits-only host patterns.
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc: func(r *http.Request, origin string) bool {
			return origins.Allows(origin)
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(newSlogMiddleware(logger))
	r.Use(newSecurityHeadersMiddleware(cfg.Environment))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"environment": cfg.Environment,
		})
	})

	authHandler := NewAuthHandler(flow, authService, origins, cfg.Environment, logger)
	customerHandler := NewCustomerHandler(clinicSvc, exporter.NewCSVExporter(), logger)
	petHandler := NewPetHandler(clinicSvc, logger)
	treatmentHandler := NewTreatmentHandler(clinicSvc, whatsapp, logger)

	r.Get("/auth/google", authHandler.InitiateGoogle)
	r.Get("/auth/google/callback", authHandler.CallbackGoogle)
	r.Post("/auth/logout", authHandler.Logout)

	r.Group(func(r chi.Router) {
		r.Use(newSessionAuthMiddleware(authService, logger))

		r.Get("/me", authHandler.Me)

		r.Route("/api", func(r chi.Router) {
			r.Route("/customers", func(r chi.Router) {
				r.Get("/", customerHandler.List)
				r.Post("/", customerHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", customerHandler.Get)
					r.Put("/", customerHandler.Update)
					r.Delete("/", customerHandler.Delete)
					r.Get("/pets", petHandler.ListByCustomer)
					r.Post("/pets", petHandler.Create)
					r.Get("/treatments/export", customerHandler.ExportTreatments)
				})
			})

			r.Route("/pets/{id}", func(r chi.Router) {
				r.Get("/", petHandler.Get)
				r.Put("/", petHandler.Update)
				r.Delete("/", petHandler.Delete)
				r.Get("/treatments", treatmentHandler.ListByPet)
				r.Post("/treatments", treatmentHandler.Create)
			})

			r.Route("/treatments/{id}", func(r chi.Router) {
				r.Delete("/", treatmentHandler.Delete)
				r.Post("/remind", treatmentHandler.Remind)
			})
		})
	})

	r.NotFound(http.NotFoundHandler().ServeHTTP)

	return r
}

package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zonicbr/onboarding-platform/internal/booking"
	"github.com/zonicbr/onboarding-platform/internal/draft"
	httpmiddleware "github.com/zonicbr/onboarding-platform/internal/http/middleware"
	"github.com/zonicbr/onboarding-platform/internal/leads"
	"github.com/zonicbr/onboarding-platform/internal/onboarding"
	"github.com/zonicbr/onboarding-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger            *logging.Logger
	OnboardingHandler *onboarding.Handler
	DraftHandler      *draft.Handler
	LeadsHandler      *leads.Handler
	BookingHandler    *booking.Handler
	MetricsHandler    http.Handler

	CORSAllowedOrigins []string
	APIBearerToken     string
	AdminJWTSecret     string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Wizard-facing endpoints, guarded by the shared bearer token.
	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.RequireBearer(cfg.APIBearerToken))

		if cfg.OnboardingHandler != nil {
			public.Post("/onboarding/records", cfg.OnboardingHandler.UpsertRecord)
		}
		if cfg.DraftHandler != nil {
			public.Route("/onboarding/draft/{session}", func(r chi.Router) {
				r.Get("/", cfg.DraftHandler.GetDraft)
				r.Put("/", cfg.DraftHandler.PutDraft)
				r.Delete("/", cfg.DraftHandler.DeleteDraft)
			})
		}
		if cfg.LeadsHandler != nil {
			public.Post("/leads", cfg.LeadsHandler.UpsertLead)
		}
		if cfg.BookingHandler != nil {
			public.Route("/cal", func(r chi.Router) {
				r.Get("/slots", cfg.BookingHandler.GetSlots)
				r.Post("/booking", cfg.BookingHandler.CreateBooking)
				r.Post("/booking/cancel", cfg.BookingHandler.CancelBooking)
			})
		}
	})

	// Admin reads (protected by JWT)
	if cfg.AdminJWTSecret != "" && cfg.OnboardingHandler != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminJWTSecret))
			admin.Get("/records/{id}", cfg.OnboardingHandler.GetRecord)
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

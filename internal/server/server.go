// Package server exposes the HTTP API: public station listing and price
// submission endpoints plus token-guarded admin review endpoints.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/fuelboard/fuelboard/internal/enrich"
	"github.com/fuelboard/fuelboard/internal/store"
)

const defaultMaxBodyBytes = 1 << 20

// Server holds the dependencies for the HTTP handlers.
type Server struct {
	store        store.Store
	enricher     *enrich.Enricher
	adminToken   string
	corsOrigins  []string
	maxBodyBytes int64
}

// Options configures a Server.
type Options struct {
	// AdminToken guards the admin endpoints; empty disables the guard.
	AdminToken string
	// CORSOrigins lists allowed browser origins; empty allows any.
	CORSOrigins []string
	// MaxBodyBytes caps request body size; zero applies the default.
	MaxBodyBytes int64
}

// New creates a Server.
func New(st store.Store, enricher *enrich.Enricher, opts Options) *Server {
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	return &Server{
		store:        st,
		enricher:     enricher,
		adminToken:   opts.AdminToken,
		corsOrigins:  opts.CORSOrigins,
		maxBodyBytes: maxBody,
	}
}

// Router builds the HTTP handler with all routes and middleware attached.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(requestLogger)

	origins := s.corsOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/stations", s.handleListStations)
		r.Post("/prices", s.handleSubmitPrices)
		r.Post("/stations/suggest", s.handleSuggestStation)

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.adminAuth)
			r.Get("/submissions", s.handleListSubmissions)
			r.Post("/submissions/{id}/approve", s.handleReview(true))
			r.Post("/submissions/{id}/reject", s.handleReview(false))
			r.Post("/stations", s.handleCreateStation)
		})
	})

	return r
}

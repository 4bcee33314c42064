// Package api exposes the travel planning workflows over REST. Routes
// are mounted by the caller, typically under /api.
package api

import (
	_ "embed"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-openapi/runtime/middleware"

	"github.com/pkfare/tripscale/workflow"
)

// API holds the dependencies needed by the REST handlers.
type API struct {
	planner *workflow.Service
	logger  *slog.Logger
}

//go:embed openapi.yaml
var openapiSpec []byte

// Option configures the API instance.
type Option func(*API)

// WithLogger sets the structured logger. If not set, a default JSON
// logger writing to stderr is used.
func WithLogger(logger *slog.Logger) Option {
	return func(a *API) {
		a.logger = logger
	}
}

// New creates a new API instance.
func New(planner *workflow.Service, opts ...Option) *API {
	a := &API{planner: planner}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	return a
}

// Router returns a chi.Router with all API routes mounted.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})

	r.Handle("/docs*", middleware.SwaggerUI(middleware.SwaggerUIOpts{
		SpecURL: "/api/openapi.yaml",
		Path:    "api/docs",
	}, nil))

	r.Handle("/redoc*", middleware.Redoc(middleware.RedocOpts{
		SpecURL: "/api/openapi.yaml",
		Path:    "api/redoc",
	}, nil))

	r.Route("/travel", func(r chi.Router) {
		r.Post("/direct-input", a.DirectInput)
		r.Post("/guess-me", a.GuessMe)
		r.Post("/confirm-destination", a.ConfirmDestination)
		r.Post("/collect-details", a.CollectDetails)
		r.Get("/routes/{sessionID}", a.GetTripRoutes)
	})

	r.Get("/health/services", a.ServiceHealth)

	return r
}

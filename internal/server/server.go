package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/stratpilot/stratpilot/internal/config"
	"github.com/stratpilot/stratpilot/internal/db"
	"github.com/stratpilot/stratpilot/internal/framework"
	"github.com/stratpilot/stratpilot/internal/journey"
)

// Server is the stratpilot HTTP server. Feature packages mount their routes
// on Router; the server owns middleware, CORS and lifecycle.
type Server struct {
	cfg        *config.Config
	db         *db.DB
	frameworks *framework.Registry
	journeys   *journey.Registry
	router     chi.Router
	httpServer *http.Server
}

// New creates a server around the shared dependencies.
func New(cfg *config.Config, database *db.DB, frameworks *framework.Registry, journeys *journey.Registry) *Server {
	s := &Server{
		cfg:        cfg,
		db:         database,
		frameworks: frameworks,
		journeys:   journeys,
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAllOrigins {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", s.handleHealth)

	// API routes are registered by feature packages via RegisterRoutes.

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	seen := map[journey.FrameworkID]bool{}
	for _, def := range s.journeys.All() {
		for _, id := range def.Frameworks {
			if !seen[id] && s.frameworks.Get(id) != nil {
				seen[id] = true
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":     "ok",
		"provider":   string(s.cfg.Provider),
		"journeys":   len(s.journeys.All()),
		"frameworks": len(seen),
	})
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Database returns the database connection.
func (s *Server) Database() *db.DB { return s.db }

// Start begins listening on the configured port. The write timeout is left
// unset because execution streams stay open for the length of a journey.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("stratpilot server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

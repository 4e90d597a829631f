// Package server wires the HTTP API: account and profile endpoints, editor
// sessions with their suggestion operations, and the assistant flows for
// rewriting and speech.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flashflow-ai/flashflow/internal/assist"
	"github.com/flashflow-ai/flashflow/internal/auth"
	"github.com/flashflow-ai/flashflow/internal/health"
	"github.com/flashflow-ai/flashflow/internal/observe"
	"github.com/flashflow-ai/flashflow/pkg/profile"
	"github.com/flashflow-ai/flashflow/pkg/types"
)

// Server holds the HTTP handler dependencies. Auth and Store may be nil when
// no database is configured; the account endpoints then return 503.
type Server struct {
	Sessions *SessionManager
	Assist   *assist.Service
	Auth     *auth.Service
	Store    profile.Store
	Health   *health.Handler
	Metrics  *observe.Metrics

	// ExtraTones are appended to the built-in tone catalogue.
	ExtraTones []string
}

// Router builds the chi router with all API routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if s.Metrics != nil {
		r.Use(observe.Middleware(s.Metrics))
	}

	if s.Health != nil {
		r.Get("/healthz", s.Health.Healthz)
		r.Get("/readyz", s.Health.Readyz)
	}
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Post("/google", s.handleGoogleSignIn)
		})

		if s.Auth != nil {
			r.Group(func(r chi.Router) {
				r.Use(s.Auth.Middleware)
				r.Get("/profile", s.handleGetProfile)
				r.Put("/profile", s.handleUpdateProfile)
			})
		}

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleDeleteSession)
				r.Put("/content", s.handleSetContent)
				r.Post("/analyze", s.handleAnalyze)
				r.Post("/accept", s.handleAccept)
				r.Post("/accept-all", s.handleAcceptAll)
				r.Post("/reject", s.handleReject)
			})
		})

		r.Post("/rewrite", s.handleRewrite)
		r.Get("/rewrite/stream", s.handleRewriteStream)
		r.Post("/speak", s.handleSpeak)
		r.Get("/voices", s.handleVoices)
		r.Get("/tones", s.handleTones)
	})

	return r
}

// handleVoices returns the speech voice catalogue.
func (s *Server) handleVoices(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"voices":       s.Assist.Voices(),
		"defaultVoice": types.DefaultVoice,
	})
}

// handleTones returns the rewrite tone catalogue, built-ins first.
func (s *Server) handleTones(w http.ResponseWriter, _ *http.Request) {
	tones := append(types.Tones(), s.ExtraTones...)
	writeJSON(w, http.StatusOK, map[string]any{"tones": tones})
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/meur/moonshade/internal/broadcast"
	"github.com/meur/moonshade/internal/events"
	"github.com/meur/moonshade/internal/game"
)

// Pinger reports whether the storage backend is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the HTTP server dependencies
type Server struct {
	store   *events.Store
	backend Pinger
	hub     *broadcast.Hub
	origins []string
	router  chi.Router
}

// New creates a new API server
func New(store *events.Store, backend Pinger, hub *broadcast.Hub, origins []string) *Server {
	s := &Server{
		store:   store,
		backend: backend,
		hub:     hub,
		origins: origins,
		router:  chi.NewRouter(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Router exposes the underlying router so callers can mount extra routes
func (s *Server) Router() chi.Router {
	return s.router
}

func (s *Server) setupMiddleware() {
	origins := s.origins
	if len(origins) == 0 {
		origins = []string{"http://localhost:*"}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.Compress(5))

		// Whole document
		r.Post("/session", s.handleOpenSession)
		r.Get("/document", s.handleExportDocument)
		r.Put("/document", s.handleImportDocument)
		r.Delete("/document", s.handleResetDocument)

		// Share tokens and links
		r.Get("/share-token", s.handleGetShareToken)
		r.Post("/share-token/decode", s.handleDecodeShareToken)
		r.With(rateLimitByIP(shareRate, shareBurst)).Post("/share", s.handleCreateShareLink)
		r.Get("/s/{code}", s.handleResolveShareLink)

		// Events
		r.Get("/events", s.handleListEvents)
		r.Post("/events", s.handleCreateEvent)
		r.Route("/events/{eventID}", func(r chi.Router) {
			r.Get("/", s.handleGetEvent)
			r.Patch("/", s.handleRenameEvent)
			r.Delete("/", s.handleDeleteEvent)
			r.Post("/duplicate", s.handleDuplicateEvent)
			r.Post("/switch", s.handleSwitchEvent)
			r.Get("/bundle", s.handleEventBundle)
			r.Get("/bridge", s.handleEventBridge)
		})

		// Current event: board and teams
		r.Route("/current", func(r chi.Router) {
			r.Get("/", s.handleGetCurrent)

			r.Put("/board/size", s.handleResizeBoard)
			r.Patch("/board/tiles/{index}", s.handlePaintTile)
			r.Post("/board/stripe", s.handleQuickPaint)

			r.Post("/teams", s.handleAddTeam)
			r.Patch("/teams/{teamID}", s.handleUpdateTeam)
			r.Delete("/teams/{teamID}", s.handleDeleteTeam)
			r.Post("/teams/{teamID}/move", s.handleMoveTeam)
			r.Post("/teams/{teamID}/roll", s.handleRollTeam)
			r.Post("/teams/{teamID}/drop", s.handleDropTeam)
			r.Post("/teams/{teamID}/select", s.handleSelectTeam)

			r.Delete("/selection", s.handleClearSelection)
			r.Post("/selection/arrow", s.handleArrowSelected)
			r.Post("/selection/move", s.handleMoveSelected)
		})
	})

	// Live document stream
	if s.hub != nil {
		s.router.Get("/ws", s.hub.Handler(s.store.Export))
	}

	// Health check
	s.router.Get("/health", s.handleHealth)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.backend != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.backend.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("health check: storage unreachable")
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Response helpers ---

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondStoreError maps Event Store errors onto HTTP statuses
func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, events.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, events.ErrIndex),
		errors.Is(err, events.ErrParse),
		errors.Is(err, game.ErrInvalidDirection):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, events.ErrSharesUnavailable):
		respondError(w, http.StatusNotImplemented, err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		respondError(w, http.StatusInternalServerError, "Internal error")
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meur/moonshade/internal/bridge"
)

type eventRequest struct {
	Name string `json:"name"`
}

// handleListEvents returns all events, oldest first
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.Events())
}

// handleCreateEvent creates a new event and makes it current
func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ev, err := s.store.CreateEvent(r.Context(), req.Name)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, ev)
}

// handleGetEvent returns a single event by ID
func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := s.store.Event(chi.URLParam(r, "eventID"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ev)
}

// handleRenameEvent updates an event's name
func (s *Server) handleRenameEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "eventID")

	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.store.RenameEvent(r.Context(), id, req.Name); err != nil {
		respondStoreError(w, err)
		return
	}

	ev, err := s.store.Event(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ev)
}

// handleDeleteEvent deletes an event; unknown ids succeed
func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteEvent(r.Context(), chi.URLParam(r, "eventID")); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleDuplicateEvent copies an event under a new id
func (s *Server) handleDuplicateEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := s.store.DuplicateEvent(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, ev)
}

// handleSwitchEvent makes an event current
func (s *Server) handleSwitchEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "eventID")
	if err := s.store.SwitchTo(r.Context(), id); err != nil {
		respondStoreError(w, err)
		return
	}
	ev, err := s.store.Current()
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ev)
}

// handleEventBundle streams the bot bundle ZIP for an event
func (s *Server) handleEventBundle(w http.ResponseWriter, r *http.Request) {
	ev, err := s.store.Event(chi.URLParam(r, "eventID"))
	if err != nil {
		respondStoreError(w, err)
		return
	}

	data, err := bridge.Bundle(ev)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", bridge.BundleName(ev)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// handleEventBridge returns the bot instructions for an event
func (s *Server) handleEventBridge(w http.ResponseWriter, r *http.Request) {
	ev, err := s.store.Event(chi.URLParam(r, "eventID"))
	if err != nil {
		respondStoreError(w, err)
		return
	}

	guide, err := bridge.NewGuide(ev)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, guide)
}

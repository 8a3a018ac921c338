package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meur/moonshade/internal/events"
)

// ExportFileName is the download name used by the admin console
const ExportFileName = "moonshade-events.json"

// maxDocumentSize bounds imported documents; a 20x20 board with notes on
// every tile is far below this. Larger bodies are rejected, not truncated.
const maxDocumentSize = 16 << 20

type tokenRequest struct {
	Token string `json:"token"`
}

type shareResponse struct {
	Code  string `json:"code,omitempty"`
	Token string `json:"token"`
}

// handleOpenSession loads the startup state, preferring a valid share token
func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.store.Open(r.Context(), req.Token); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.store.Export())
}

// handleExportDocument downloads the whole document as a JSON file
func (s *Server) handleExportDocument(w http.ResponseWriter, r *http.Request) {
	data, err := s.store.ExportJSON()
	if err != nil {
		respondStoreError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ExportFileName+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// handleImportDocument replaces all state with the uploaded document
func (s *Server) handleImportDocument(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "Document too large")
			return
		}
		respondError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	if err := s.store.Import(r.Context(), data); err != nil {
		if errors.Is(err, events.ErrParse) {
			respondError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.store.Export())
}

// handleResetDocument drops every event
func (s *Server) handleResetDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Reset(r.Context()); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// handleGetShareToken returns the URL fragment token for the current state
func (s *Server) handleGetShareToken(w http.ResponseWriter, r *http.Request) {
	token, err := s.store.ShareToken()
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, shareResponse{Token: token})
}

// handleDecodeShareToken decodes a token without touching state
func (s *Server) handleDecodeShareToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	doc, err := events.DecodeShareToken(req.Token)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

// handleCreateShareLink stores the current state under a short code
func (s *Server) handleCreateShareLink(w http.ResponseWriter, r *http.Request) {
	code, token, err := s.store.CreateShareLink(r.Context())
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, shareResponse{Code: code, Token: token})
}

// handleResolveShareLink returns the document behind a share code
func (s *Server) handleResolveShareLink(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.ResolveShareLink(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

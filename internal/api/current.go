package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meur/moonshade/internal/game"
	"github.com/meur/moonshade/internal/models"
)

type resizeRequest struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

type stepsRequest struct {
	Steps int `json:"steps"`
}

type dropRequest struct {
	Index int `json:"index"`
}

type arrowRequest struct {
	Direction string `json:"direction"`
}

type rollResponse struct {
	Roll int          `json:"roll"`
	Team *models.Team `json:"team"`
}

// handleGetCurrent returns the selected event
func (s *Server) handleGetCurrent(w http.ResponseWriter, r *http.Request) {
	ev, err := s.store.Current()
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ev)
}

// --- Board ---

// handleResizeBoard rebuilds the board at a new size
func (s *Server) handleResizeBoard(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	board, err := s.store.ResizeBoard(r.Context(), req.Rows, req.Cols)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, board)
}

// handlePaintTile merges the given fields into one tile
func (s *Server) handlePaintTile(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid tile index")
		return
	}

	var patch models.TilePatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tile, err := s.store.PaintTile(r.Context(), index, patch)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tile)
}

// handleQuickPaint stripes the board
func (s *Server) handleQuickPaint(w http.ResponseWriter, r *http.Request) {
	if err := s.store.QuickPaintStripe(r.Context()); err != nil {
		respondStoreError(w, err)
		return
	}
	s.handleGetCurrent(w, r)
}

// --- Teams ---

// handleAddTeam creates and selects a new team
func (s *Server) handleAddTeam(w http.ResponseWriter, r *http.Request) {
	team, err := s.store.AddTeam(r.Context())
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, team)
}

// handleUpdateTeam applies name/color/members/position edits
func (s *Server) handleUpdateTeam(w http.ResponseWriter, r *http.Request) {
	var update models.TeamUpdate
	if err := decodeJSON(r, &update); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	team, err := s.store.UpdateTeam(r.Context(), chi.URLParam(r, "teamID"), update)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, team)
}

// handleDeleteTeam removes a team; unknown ids succeed
func (s *Server) handleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTeam(r.Context(), chi.URLParam(r, "teamID")); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleMoveTeam moves a team by a relative number of steps
func (s *Server) handleMoveTeam(w http.ResponseWriter, r *http.Request) {
	var req stepsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	team, err := s.store.MoveTeam(r.Context(), chi.URLParam(r, "teamID"), req.Steps)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, team)
}

// handleRollTeam rolls a six-sided die for a team
func (s *Server) handleRollTeam(w http.ResponseWriter, r *http.Request) {
	roll, team, err := s.store.RollTeam(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rollResponse{Roll: roll, Team: team})
}

// handleDropTeam places a team on a tile
func (s *Server) handleDropTeam(w http.ResponseWriter, r *http.Request) {
	var req dropRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	team, err := s.store.DropTeamOnTile(r.Context(), chi.URLParam(r, "teamID"), req.Index)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, team)
}

// handleSelectTeam selects a team
func (s *Server) handleSelectTeam(w http.ResponseWriter, r *http.Request) {
	if err := s.store.SelectTeam(r.Context(), chi.URLParam(r, "teamID")); err != nil {
		respondStoreError(w, err)
		return
	}
	s.handleGetCurrent(w, r)
}

// handleClearSelection deselects the selected team
func (s *Server) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ClearSelection(r.Context()); err != nil {
		respondStoreError(w, err)
		return
	}
	s.handleGetCurrent(w, r)
}

// handleArrowSelected steps the selected team one cell
func (s *Server) handleArrowSelected(w http.ResponseWriter, r *http.Request) {
	var req arrowRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	dir, err := game.ParseDirection(req.Direction)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	team, err := s.store.MoveSelectedByArrow(r.Context(), dir)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, team)
}

// handleMoveSelected moves the selected team by relative steps
func (s *Server) handleMoveSelected(w http.ResponseWriter, r *http.Request) {
	var req stepsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	team, err := s.store.MoveSelected(r.Context(), req.Steps)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, team)
}

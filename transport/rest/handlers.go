package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rocketscienceinc/aadupuli-backend/internal/apperror"
	"github.com/rocketscienceinc/aadupuli-backend/internal/entity"
)

type createMatchRequest struct {
	Variant       string `json:"variant"`
	PlayerID      string `json:"playerId"`
	PreferredRole string `json:"preferredRole"`
	VsAI          bool   `json:"vsAi"`
}

type joinMatchRequest struct {
	PlayerID string `json:"playerId"`
}

type submitMoveRequest struct {
	Player   string `json:"player"`
	FromNode *int   `json:"from_node"`
	ToNode   *int   `json:"to_node"`
	PlayerID string `json:"playerId"`
}

type errorResponse struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

func (that *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (that *Server) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	var req createMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeError(w, apperror.ErrValidation)
		return
	}

	if req.Variant != "" && req.Variant != entity.DefaultVariant {
		that.writeError(w, apperror.ErrValidation)
		return
	}

	if req.PreferredRole == "" {
		req.PreferredRole = entity.RoleGoat
	}

	match, err := that.session.CreateMatch(r.Context(), req.PlayerID, req.PreferredRole, req.VsAI)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, match)
}

func (that *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	match, err := that.session.GetMatch(r.Context(), r.PathValue("id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, match)
}

func (that *Server) handleJoinMatch(w http.ResponseWriter, r *http.Request) {
	var req joinMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeError(w, apperror.ErrValidation)
		return
	}

	match, err := that.session.JoinMatch(r.Context(), r.PathValue("id"), req.PlayerID)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, match)
}

func (that *Server) handleSubmitMove(w http.ResponseWriter, r *http.Request) {
	var req submitMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeError(w, apperror.ErrValidation)
		return
	}

	if req.ToNode == nil || (req.Player != entity.RoleTiger && req.Player != entity.RoleGoat) {
		that.writeError(w, apperror.ErrValidation)
		return
	}

	move := entity.Move{
		Player:   req.Player,
		FromNode: req.FromNode,
		ToNode:   *req.ToNode,
	}

	match, err := that.session.SubmitMove(r.Context(), r.PathValue("id"), move, req.PlayerID)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, match)
}

func (that *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := that.stats.GetStats(r.Context(), r.PathValue("playerId"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, stats)
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto a stable kind plus the verbatim
// message. Registry internals never leak past the message string.
func (that *Server) writeError(w http.ResponseWriter, err error) {
	kind := "INTERNAL"
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, apperror.ErrValidation):
		kind, status = "VALIDATION", http.StatusBadRequest
	case errors.Is(err, apperror.ErrMatchNotFound):
		kind, status = "NOT_FOUND", http.StatusNotFound
	case errors.Is(err, apperror.ErrNotYourTurn):
		kind, status = "NOT_YOUR_TURN", http.StatusConflict
	case errors.Is(err, apperror.ErrInvalidMove):
		kind, status = "INVALID_MOVE", http.StatusBadRequest
	case errors.Is(err, apperror.ErrGameOver):
		kind, status = "GAME_OVER", http.StatusConflict
	case errors.Is(err, apperror.ErrRoleTaken):
		kind, status = "ROLE_TAKEN", http.StatusConflict
	default:
		that.logger.Error("internal error", "error", err)
	}

	that.writeJSON(w, status, errorResponse{Kind: kind, Error: err.Error()})
}

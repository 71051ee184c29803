package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/wfunc/rpsserver/auth"
	"github.com/wfunc/rpsserver/logger"
	"github.com/wfunc/rpsserver/models"
	"github.com/wfunc/rpsserver/services"
	"github.com/wfunc/rpsserver/state"
)

const (
	msgUserNotFound     = "User not found"
	msgGameNotFound     = "Game not found"
	msgAlreadyStarted   = "Game already started"
	msgSelfPlay         = "You can't play against yourself"
	msgNotStarted       = "Game not started"
	msgNotAPlayer       = "You are not a player of this game"
	msgInvalidChoice    = "Invalid choice"
	msgInternal         = "Internal server error"
	msgTooManyRequests  = "Too many requests"
	maxPlayRequestBytes = 4 << 10
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json;charset=UTF-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Errorf("Failed to write JSON response: %v", err)
	}
}

// writeError sends message as a bare JSON string.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, message)
}

func (s *GameServer) internalError(w http.ResponseWriter, r *http.Request, err error) {
	logger.Log.Errorf("%s %s failed: %v", r.Method, r.URL.Path, err)
	writeError(w, http.StatusInternalServerError, msgInternal)
}

// authenticate writes the 401 (or 500) itself and returns nil on failure.
func (s *GameServer) authenticate(w http.ResponseWriter, r *http.Request) *models.User {
	user, err := s.auth.Authenticate(r)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			writeError(w, http.StatusUnauthorized, msgUserNotFound)
		} else {
			s.internalError(w, r, err)
		}
		return nil
	}
	return user
}

func (s *GameServer) handleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.games.ListGames(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

func (s *GameServer) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	user := s.authenticate(w, r)
	if user == nil {
		return
	}

	game, err := s.games.CreateGame(r.Context(), user)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, game)
}

func (s *GameServer) handleFetchGame(w http.ResponseWriter, r *http.Request) {
	gameID, ok := models.ParseID(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, msgGameNotFound)
		return
	}

	game, err := s.games.GetGame(r.Context(), gameID)
	if err != nil {
		if errors.Is(err, services.ErrGameNotFound) {
			writeError(w, http.StatusNotFound, msgGameNotFound)
			return
		}
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

// handleInviteOpponent validates the syntax of every id before any lookup.
func (s *GameServer) handleInviteOpponent(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.auth.UserID(r); !ok {
		writeError(w, http.StatusUnauthorized, msgUserNotFound)
		return
	}
	vars := mux.Vars(r)
	gameID, ok := models.ParseID(vars["id"])
	if !ok {
		writeError(w, http.StatusNotFound, msgGameNotFound)
		return
	}
	opponentID, ok := models.ParseID(vars["userId"])
	if !ok {
		writeError(w, http.StatusNotFound, msgUserNotFound)
		return
	}

	user := s.authenticate(w, r)
	if user == nil {
		return
	}

	game, err := s.games.InviteOpponent(r.Context(), user, gameID, opponentID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, game)
	case errors.Is(err, services.ErrGameNotFound):
		writeError(w, http.StatusNotFound, msgGameNotFound)
	case errors.Is(err, services.ErrOpponentNotFound):
		writeError(w, http.StatusNotFound, msgUserNotFound)
	case errors.Is(err, state.ErrInvalidState):
		writeError(w, http.StatusConflict, msgAlreadyStarted)
	case errors.Is(err, state.ErrSelfPlay):
		writeError(w, http.StatusConflict, msgSelfPlay)
	default:
		s.internalError(w, r, err)
	}
}

type playRequest struct {
	Choice string `json:"choice"`
}

// decodeChoice returns "" for any body that is not exactly one
// {"choice": "<string>"} object; the state machine then rejects it as an
// invalid choice.
func decodeChoice(body io.Reader) string {
	dec := json.NewDecoder(body)
	var req playRequest
	if err := dec.Decode(&req); err != nil {
		return ""
	}
	// 拒绝尾随数据
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return ""
	}
	return req.Choice
}

func (s *GameServer) handlePlay(w http.ResponseWriter, r *http.Request) {
	user := s.authenticate(w, r)
	if user == nil {
		return
	}

	gameID, ok := models.ParseID(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, msgGameNotFound)
		return
	}

	choice := decodeChoice(http.MaxBytesReader(w, r.Body, maxPlayRequestBytes))

	game, err := s.games.Play(r.Context(), user, gameID, choice)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, game)
	case errors.Is(err, services.ErrGameNotFound):
		writeError(w, http.StatusNotFound, msgGameNotFound)
	case errors.Is(err, state.ErrInvalidState):
		writeError(w, http.StatusConflict, msgNotStarted)
	case errors.Is(err, state.ErrNotAParticipant):
		writeError(w, http.StatusForbidden, msgNotAPlayer)
	case errors.Is(err, state.ErrInvalidChoice):
		writeError(w, http.StatusBadRequest, msgInvalidChoice)
	default:
		s.internalError(w, r, err)
	}
}

func (s *GameServer) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	user := s.authenticate(w, r)
	if user == nil {
		return
	}

	gameID, ok := models.ParseID(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, msgGameNotFound)
		return
	}

	err := s.games.DeleteGame(r.Context(), user, gameID)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, services.ErrGameNotFound):
		writeError(w, http.StatusNotFound, msgGameNotFound)
	case errors.Is(err, state.ErrNotAParticipant):
		writeError(w, http.StatusForbidden, msgNotAPlayer)
	default:
		s.internalError(w, r, err)
	}
}

package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"hamawards/internal/common"
)

type credentialsRequest struct {
	Callsign string `json:"callsign"`
	Password string `json:"password"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: invalid json body", common.ErrValidation))
		return
	}

	user, err := s.users.Register(r.Context(), req.Callsign, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":       user.ID,
		"callsign": user.Callsign,
		"role":     user.Role,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: invalid json body", common.ErrValidation))
		return
	}

	token, user, err := s.users.Login(r.Context(), req.Callsign, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":    token,
		"callsign": user.Callsign,
		"role":     user.Role,
	})
}

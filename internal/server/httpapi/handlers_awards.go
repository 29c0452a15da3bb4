package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"hamawards/internal/common"
	"hamawards/internal/lifecycle"
	"hamawards/internal/server/models"
)

type awardPayload struct {
	ID          int64               `json:"id,omitempty"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	BgURL       string              `json:"bg_url,omitempty"`
	Rules       json.RawMessage     `json:"rules"`
	Layout      json.RawMessage     `json:"layout,omitempty"`
	Status      string              `json:"status,omitempty"`
	CreatorID   int64               `json:"creator_id,omitempty"`
	AuditLog    []models.AuditEntry `json:"audit_log,omitempty"`
	CreatedAt   *time.Time          `json:"created_at,omitempty"`
}

func awardToPayload(a *models.Award) awardPayload {
	created := a.CreatedAt
	return awardPayload{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		BgURL:       a.BgURL,
		Rules:       a.Rules,
		Layout:      a.Layout,
		Status:      string(a.Status),
		CreatorID:   a.CreatorID,
		AuditLog:    a.AuditLog,
		CreatedAt:   &created,
	}
}

func (p awardPayload) toModel() *models.Award {
	return &models.Award{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		BgURL:       p.BgURL,
		Rules:       p.Rules,
		Layout:      p.Layout,
	}
}

func awardID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid award id", common.ErrValidation)
	}
	return id, nil
}

func (s *Server) handleListAwards(w http.ResponseWriter, r *http.Request) {
	list, err := s.awards.List(r.Context(), principalFrom(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	payload := make([]awardPayload, 0, len(list))
	for _, a := range list {
		payload = append(payload, awardToPayload(a))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleCreateAward(w http.ResponseWriter, r *http.Request) {
	var req awardPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: invalid json body", common.ErrValidation))
		return
	}

	created, err := s.awards.Create(r.Context(), principalFrom(r), req.toModel())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, awardToPayload(created))
}

func (s *Server) handleGetAward(w http.ResponseWriter, r *http.Request) {
	id, err := awardID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	award, err := s.awards.Get(r.Context(), principalFrom(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, awardToPayload(award))
}

func (s *Server) handleUpdateAward(w http.ResponseWriter, r *http.Request) {
	id, err := awardID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req awardPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: invalid json body", common.ErrValidation))
		return
	}
	award := req.toModel()
	award.ID = id

	updated, err := s.awards.Update(r.Context(), principalFrom(r), award)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, awardToPayload(updated))
}

type lifecycleRequest struct {
	Action string `json:"action"`
	Reason string `json:"reason,omitempty"`
}

func (s *Server) handleLifecycle(w http.ResponseWriter, r *http.Request) {
	id, err := awardID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req lifecycleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: invalid json body", common.ErrValidation))
		return
	}

	award, err := s.awards.ApplyLifecycle(r.Context(), principalFrom(r), id, lifecycle.Action(req.Action), req.Reason)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, awardToPayload(award))
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	id, err := awardID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	breakdown := r.URL.Query().Get("breakdown")
	includeBreakdown := breakdown == "true" || breakdown == "1"

	verdict, err := s.awards.Check(r.Context(), principalFrom(r), id, includeBreakdown)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, verdict)
}

type claimPayload struct {
	ID         int64     `json:"id"`
	AwardID    int64     `json:"award_id"`
	AwardName  string    `json:"award_name,omitempty"`
	BgURL      string    `json:"bg_url,omitempty"`
	Level      string    `json:"level"`
	TrackingID string    `json:"tracking_id"`
	IssuedAt   time.Time `json:"issued_at"`
}

func claimToPayload(c *models.Claim) claimPayload {
	return claimPayload{
		ID:         c.ID,
		AwardID:    c.AwardID,
		AwardName:  c.AwardName,
		BgURL:      c.BgURL,
		Level:      c.Level,
		TrackingID: c.TrackingID,
		IssuedAt:   c.IssuedAt,
	}
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	id, err := awardID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	claim, err := s.awards.Claim(r.Context(), principalFrom(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, claimToPayload(claim))
}

func (s *Server) handleListClaims(w http.ResponseWriter, r *http.Request) {
	list, err := s.awards.ClaimsForUser(r.Context(), principalFrom(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	payload := make([]claimPayload, 0, len(list))
	for _, c := range list {
		payload = append(payload, claimToPayload(c))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleBackgroundUploadURL(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r)
	if p.Role != string(lifecycle.RoleAdmin) && p.Role != string(lifecycle.RoleAwardAdmin) {
		s.writeError(w, r, common.ErrForbidden)
		return
	}

	key, url, err := s.backgrounds.GetPresignedPutURL(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"key": key, "upload_url": url})
}

func (s *Server) handleBackgroundGetURL(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		s.writeError(w, r, fmt.Errorf("%w: key is required", common.ErrValidation))
		return
	}

	url, err := s.backgrounds.GetPresignedGetURL(r.Context(), key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

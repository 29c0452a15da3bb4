package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"hamawards/internal/common"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps sentinel errors onto stable machine-readable codes.
// Anything unmatched is an internal error and the real cause stays out of
// the response body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	var code string

	switch {
	case errors.Is(err, common.ErrValidation):
		status, code = http.StatusBadRequest, "VALIDATION"
	case errors.Is(err, common.ErrInvalidRules):
		status, code = http.StatusBadRequest, "INVALID_RULES"
	case errors.Is(err, common.ErrReasonRequired):
		status, code = http.StatusBadRequest, "REASON_REQUIRED"
	case errors.Is(err, common.ErrUnauthorized), errors.Is(err, common.ErrInvalidToken):
		status, code = http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, common.ErrForbidden):
		status, code = http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, common.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, common.ErrAlreadyExists):
		status, code = http.StatusConflict, "ALREADY_EXISTS"
	case errors.Is(err, common.ErrAlreadyClaimed):
		status, code = http.StatusConflict, "ALREADY_CLAIMED"
	case errors.Is(err, common.ErrInvalidTransition):
		status, code = http.StatusConflict, "INVALID_TRANSITION"
	case errors.Is(err, common.ErrNotEligible):
		status, code = http.StatusUnprocessableEntity, "NOT_ELIGIBLE"
	default:
		s.logger.Error(r.Context(), "internal error", "path", r.URL.Path, "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "INTERNAL"})
		return
	}

	writeJSON(w, status, errorResponse{Error: code, Message: err.Error()})
}

package httpapi

import (
	"fmt"
	"io"
	"net/http"

	"hamawards/internal/common"
	"hamawards/internal/server/models"
)

// maxADIFUpload caps one log upload at 16 MiB.
const maxADIFUpload = 16 << 20

type qsoPayload struct {
	ID      int64             `json:"id"`
	Call    string            `json:"call"`
	Band    string            `json:"band"`
	Mode    string            `json:"mode"`
	Date    string            `json:"qso_date"`
	Time    string            `json:"time_on"`
	DXCC    string            `json:"dxcc,omitempty"`
	Country string            `json:"country,omitempty"`
	Grid    string            `json:"gridsquare,omitempty"`
	IOTA    string            `json:"iota,omitempty"`
	State   string            `json:"state,omitempty"`
	QSL     bool              `json:"qsl_confirmed"`
	Fields  map[string]string `json:"fields"`
}

func qsoToPayload(q *models.QSO) qsoPayload {
	return qsoPayload{
		ID:   q.ID,
		Call: q.Record.Call, Band: q.Record.Band, Mode: q.Record.Mode,
		Date: q.Record.Date, Time: q.Record.Time,
		DXCC: q.Record.DXCC, Country: q.Record.Country,
		Grid: q.Record.Grid, IOTA: q.Record.IOTA, State: q.Record.State,
		QSL: q.Record.QSL, Fields: q.Record.Fields,
	}
}

// handleIngest takes the raw ADIF export as the request body.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxADIFUpload))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: error reading body", common.ErrValidation))
		return
	}
	if len(raw) == 0 {
		s.writeError(w, r, fmt.Errorf("%w: empty upload", common.ErrValidation))
		return
	}

	summary, err := s.logbook.Ingest(r.Context(), principalFrom(r).UserID, string(raw))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleListLog(w http.ResponseWriter, r *http.Request) {
	list, err := s.logbook.List(r.Context(), principalFrom(r).UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	payload := make([]qsoPayload, 0, len(list))
	for _, q := range list {
		payload = append(payload, qsoToPayload(q))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleLogStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.logbook.Stats(r.Context(), principalFrom(r).UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handlePurgeLog(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.logbook.Purge(r.Context(), principalFrom(r).UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

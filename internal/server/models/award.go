package models

import (
	"encoding/json"
	"time"

	"hamawards/internal/lifecycle"
)

// AuditEntry is one immutable record in an award's audit trail. The trail is
// append-only: entries are never edited, removed or reordered.
type AuditEntry struct {
	Action string    `json:"action"`
	Actor  string    `json:"actor"`
	At     time.Time `json:"at"`
	Reason string    `json:"reason,omitempty"`
}

// Award is an award definition. Rules and Layout are stored as raw JSON
// documents: Rules is parsed by the rules package on evaluation (legacy or
// structured form), Layout is opaque certificate-rendering metadata passed
// through to clients. Status is the cached result of the latest lifecycle
// transition.
type Award struct {
	ID          int64
	Name        string
	Description string
	BgURL       string
	Rules       json.RawMessage
	Layout      json.RawMessage
	Status      lifecycle.Status
	CreatorID   int64
	AuditLog    []AuditEntry
	CreatedAt   time.Time
}

// LastReason returns the reason from the most recent audit entry carrying
// one. Surfaced to creators when their award was returned.
func (a *Award) LastReason() string {
	for i := len(a.AuditLog) - 1; i >= 0; i-- {
		if a.AuditLog[i].Reason != "" {
			return a.AuditLog[i].Reason
		}
	}
	return ""
}

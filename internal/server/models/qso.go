package models

import (
	"time"

	"hamawards/internal/adif"
)

// QSO is one stored contact log entry. The normalized record carries both
// the typed columns and the raw ADIF field map; rows are immutable after
// ingest except for bulk deletion by their owner or an administrator.
type QSO struct {
	ID        int64
	UserID    int64
	Record    adif.Record
	CreatedAt time.Time
}

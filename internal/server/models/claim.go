package models

import "time"

// Claim is one issuance ledger entry: an operator holding a level of an
// award. TrackingID and IssuedAt are immutable; the display fields are
// joined from the award definition at read time so renames and new
// backgrounds show up on old claims.
type Claim struct {
	ID         int64
	UserID     int64
	AwardID    int64
	Level      string
	TrackingID string
	IssuedAt   time.Time

	// Joined display metadata, current as of the read.
	AwardName string
	BgURL     string
}

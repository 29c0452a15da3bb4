// Package lifecycle implements the award definition state machine: which
// status transitions exist, who may perform them, and when a reason is
// mandatory. The machine itself is pure; persisting the new status and the
// audit trail entry is the caller's job.
package lifecycle

import (
	"fmt"

	"hamawards/internal/common"
)

// Status is the review state of an award definition.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusReturned Status = "returned"
)

// Action is a requested transition.
type Action string

const (
	ActionSubmit   Action = "submit"   // draft → pending, by the creator
	ActionApprove  Action = "approve"  // pending → approved, by an admin
	ActionReturn   Action = "return"   // pending → returned, by an admin, reason required
	ActionWithdraw Action = "withdraw" // approved → returned, by an admin, reason required
	ActionResubmit Action = "resubmit" // returned → pending, by the creator
	ActionReopen   Action = "reopen"   // returned → draft, by the creator
)

// Role mirrors the user roles stored on accounts.
type Role string

const (
	RoleUser       Role = "user"
	RoleAwardAdmin Role = "award_admin"
	RoleAdmin      Role = "admin"
)

// Actor identifies who is requesting a transition.
type Actor struct {
	UserID    int64
	Callsign  string
	Role      Role
	IsCreator bool
}

type transition struct {
	from          Status
	to            Status
	adminOnly     bool
	creatorOrUp   bool
	reasonNeeded  bool
	auditedAction string
}

var transitions = map[Action]transition{
	ActionSubmit:   {from: StatusDraft, to: StatusPending, creatorOrUp: true, auditedAction: "submitted"},
	ActionApprove:  {from: StatusPending, to: StatusApproved, adminOnly: true, auditedAction: "approved"},
	ActionReturn:   {from: StatusPending, to: StatusReturned, adminOnly: true, reasonNeeded: true, auditedAction: "returned"},
	ActionWithdraw: {from: StatusApproved, to: StatusReturned, adminOnly: true, reasonNeeded: true, auditedAction: "withdrawn"},
	ActionResubmit: {from: StatusReturned, to: StatusPending, creatorOrUp: true, auditedAction: "resubmitted"},
	ActionReopen:   {from: StatusReturned, to: StatusDraft, creatorOrUp: true, auditedAction: "reopened"},
}

// ValidStatus reports whether s is one of the four lifecycle states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusReturned:
		return true
	}
	return false
}

// Apply checks the requested transition and returns the resulting status and
// the action name to record in the audit trail. The error is one of the
// common sentinels: ErrInvalidTransition for an unknown action or a wrong
// current status, ErrForbidden for an unauthorized actor, ErrReasonRequired
// when a mandatory reason is missing.
func Apply(current Status, action Action, actor Actor, reason string) (Status, string, error) {
	tr, ok := transitions[action]
	if !ok {
		return "", "", fmt.Errorf("%w: unknown action %q", common.ErrInvalidTransition, action)
	}
	if current != tr.from {
		return "", "", fmt.Errorf("%w: cannot %s from %s", common.ErrInvalidTransition, action, current)
	}
	if tr.adminOnly && actor.Role != RoleAdmin {
		return "", "", common.ErrForbidden
	}
	if tr.creatorOrUp && !actor.IsCreator && actor.Role != RoleAdmin {
		return "", "", common.ErrForbidden
	}
	if tr.reasonNeeded && reason == "" {
		return "", "", common.ErrReasonRequired
	}
	return tr.to, tr.auditedAction, nil
}

// Visible reports whether an award in the given status may be shown to the
// actor. Approved awards are public; everything else is restricted to the
// creator and privileged roles.
func Visible(status Status, actor Actor) bool {
	if status == StatusApproved {
		return true
	}
	return actor.IsCreator || actor.Role == RoleAdmin || actor.Role == RoleAwardAdmin
}

// Package common defines shared sentinel errors used across the HamAwards
// server layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrValidation   = errors.New("validation failed")

	// Award rule configuration errors. Distinct from "not eligible": a schema
	// that fails structural validation is a configuration problem and must not
	// be reported as a failed check.
	ErrInvalidRules = errors.New("invalid award rules")

	// Claim errors.
	ErrNotEligible    = errors.New("not eligible")
	ErrAlreadyClaimed = errors.New("already claimed")

	// Lifecycle errors.
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrReasonRequired    = errors.New("reason required")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)

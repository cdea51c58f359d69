package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized sentinel definitions, partitioned per
// spec.md §7: data-fatal (HALT), programmer errors. Data-recoverable
// conditions are never represented as errors; the orchestrator does not
// collect them as warnings either (StageExecutionAudit is never filled).
var (
	ErrNotFound = errors.New("resource not found")
	ErrRunNotFound = fmt.Errorf("%w: run", ErrNotFound)

	// Programmer errors: violated preconditions, never a property of the data.
	ErrNonMonotonicInput = errors.New("precondition violated: input timestamps are not strictly increasing")
	ErrEmptyStagePlan    = errors.New("precondition violated: stage plan has no stages")
	ErrUnknownChannel    = errors.New("precondition violated: unknown channel kind")

	// Data-fatal errors (HALT conditions).
	ErrTimestampReversal = errors.New("timestamp reversal in raw signal")
	ErrNegativeFlow      = errors.New("negative flow reading")
	ErrNegativePower     = errors.New("negative power reading")
	ErrPhysicsViolation  = errors.New("aggregate physics violation without salvage")
	ErrMissingMandatory  = errors.New("missing mandatory BMD channel")
	ErrLowCoverage       = errors.New("grid coverage below minimum valid fraction")
	ErrAllRowsExcluded   = errors.New("all grid rows excluded")
)

// NewNotFoundError builds a resource-scoped not-found error.
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// NewValidationError builds a field-scoped validation error.
func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

// IsNotFoundError reports whether err is a not-found sentinel.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsHalt reports whether err corresponds to one of the data-fatal HALT sentinels.
func IsHalt(err error) bool {
	switch {
	case errors.Is(err, ErrTimestampReversal),
		errors.Is(err, ErrNegativeFlow),
		errors.Is(err, ErrNegativePower),
		errors.Is(err, ErrPhysicsViolation),
		errors.Is(err, ErrMissingMandatory),
		errors.Is(err, ErrLowCoverage),
		errors.Is(err, ErrAllRowsExcluded):
		return true
	default:
		return false
	}
}

// IsProgrammerError reports whether err is a violated precondition rather
// than a data condition — these must never be silently degraded.
func IsProgrammerError(err error) bool {
	return errors.Is(err, ErrNonMonotonicInput) ||
		errors.Is(err, ErrEmptyStagePlan) ||
		errors.Is(err, ErrUnknownChannel)
}

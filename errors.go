// Copyright (c) 2024 the xsynth authors
//
// MIT License

package xsynth

import "errors"

// Error kinds surfaced by the synthesis pipeline. Every component reports
// failures to its caller by wrapping one of these sentinels; none of them is
// used for normal control flow. In particular, synthesizing a constant
// function is a success path, not an error.
var (
	// ErrInvalidInput reports a missing or malformed variable ordering, an
	// arity mismatch, or an out-of-range reference. It is not recoverable
	// locally.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInfeasible reports that the constraint set admits no valid
	// topology for the given diagram. It is surfaced as is; callers decide
	// whether to relax constraints, the library never retries.
	ErrInfeasible = errors.New("synthesis infeasible")

	// ErrTimeout reports that the external solver exceeded its bound. The
	// synthesis result is discarded entirely; a partial topology is never
	// returned.
	ErrTimeout = errors.New("synthesis timeout")

	// ErrMismatch reports that a topology does not implement its source
	// function. It always carries a counter-example and is never silently
	// ignored, since it indicates a synthesis defect.
	ErrMismatch = errors.New("verification mismatch")
)

package sla

import "errors"

// Sentinel errors for the SLA core. Callers are expected to skip or flag the
// offending record rather than abort a whole reporting pass.
var (
	// ErrMalformedInput marks a snapshot with an unusable timestamp or
	// numeric field. The core fails loudly instead of coercing a default.
	ErrMalformedInput = errors.New("malformed input")

	// ErrMissingConfiguration means no active SLA rule matches the ticket's
	// key combination. Callers classify such tickets as NoDeadline; there is
	// no silent fallback window.
	ErrMissingConfiguration = errors.New("missing configuration")

	// ErrAmbiguousConfiguration means more than one equally specific active
	// SLA rule matches; the conflict is surfaced, not resolved by ordering.
	ErrAmbiguousConfiguration = errors.New("ambiguous configuration")
)

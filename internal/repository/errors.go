// Package repository defines sentinel error values shared across the
// queue repositories. These let handlers and the verification gate
// distinguish failure scenarios with errors.Is: conflicts (duplicate
// codes, wrong-state transitions) map to HTTP 409, absence to 404, and
// infrastructure failures to 503.
package repository

import "errors"

// ErrNotFound is returned when no entry exists for the requested
// customer code. Handlers should translate this into an HTTP 404.
var ErrNotFound = errors.New("entry not found")

// ErrDuplicateID is returned when a registration attempts to reuse an
// existing customer code.
var ErrDuplicateID = errors.New("customer id already exists")

// ErrDuplicatePosition is returned when a registration attempts to
// claim an already-assigned queue position.
var ErrDuplicatePosition = errors.New("queue position already exists")

// ErrAlreadyVerified is returned when a transition is attempted on an
// entry that has already completed exit verification. Verification is
// terminal; this is the replay-rejection path and must never be
// softened into a no-op.
var ErrAlreadyVerified = errors.New("entry already verified")

// ErrNotYetBilled is returned when verification is attempted on an
// entry still in WAITING.
var ErrNotYetBilled = errors.New("entry not yet billed")

// ErrInvalidStateForUndo is returned when a billing reversal is
// requested for an entry whose status is not exactly BILLED.
var ErrInvalidStateForUndo = errors.New("entry not in billed state")

// ErrStoreUnavailable wraps low-level database failures so callers can
// surface a distinct, retryable error category instead of fabricating
// a result. Handlers should translate this into an HTTP 503.
var ErrStoreUnavailable = errors.New("store unavailable")

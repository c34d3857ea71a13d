// Package insights wires the pure engine packages to storage, the segment
// cache, the status store and the execution backend.
package insights

import (
	"errors"
	"time"
)

var (
	// ErrInvalidInput marks requests the engine cannot act on.
	ErrInvalidInput = errors.New("invalid input")
	// ErrManualReview is returned when a suggestion has no executable action.
	ErrManualReview = errors.New("suggestion requires manual review")
	// ErrRejected is returned when the backend answers without success.
	ErrRejected = errors.New("rejected by execution backend")
)

// Clock returns the current time. Services default to time.Now.
type Clock func() time.Time

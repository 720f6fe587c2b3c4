package exam

import "errors"

// Error taxonomy. Handlers map these onto HTTP status codes; everything else
// is treated as an internal store failure.
var (
	ErrValidation       = errors.New("invalid request")
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrAlreadySubmitted = errors.New("session already submitted")
	ErrInsufficientPool = errors.New("not enough questions available for this step")

	// ErrStore wraps persistence failures. The submit transition is
	// all-or-nothing, so a wrapped ErrStore means nothing was persisted and
	// the caller may retry.
	ErrStore = errors.New("store failure")
)

package app

import "errors"

// Sentinel kinds for pipeline-level errors.
var (
	// ErrTooManyBadRows marks a run whose malformed-input fraction
	// exceeded the configured hard ceiling.
	ErrTooManyBadRows = errors.New("malformed input fraction exceeds ceiling")

	// ErrNoInput marks a run started without outcomes or an input path.
	ErrNoInput = errors.New("no input provided")
)

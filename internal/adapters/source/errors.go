package source

import "errors"

// Sentinel kinds for outcome ingestion errors.
var (
	// ErrMalformedRecord marks a row missing a required field or with a
	// success flag that cannot be coerced to a boolean. Fatal in strict
	// mode; skipped and counted in tolerant mode.
	ErrMalformedRecord = errors.New("malformed outcome record")

	// ErrMissingHeader marks an input table without a required column.
	ErrMissingHeader = errors.New("missing required column")
)

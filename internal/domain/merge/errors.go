package merge

import "errors"

// Sentinel kinds for merge errors.
var (
	// ErrMissingPrior marks a stat row with no (position, zone) prior.
	// By policy this is non-fatal: the row is dropped and counted.
	ErrMissingPrior = errors.New("no matching prior for stat row")
)

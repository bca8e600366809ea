package posterior

import "errors"

// isNumeric reports whether err is a per-row numeric-convergence failure,
// which excludes the row rather than aborting the run.
func isNumeric(err error) bool {
	return errors.Is(err, ErrNumericInstability)
}

// Sentinel kinds for posterior computation errors.
var (
	// ErrDegeneratePair marks a joined pair whose posterior shape
	// parameters are not both positive. Zero-attempt priors are excluded
	// upstream, so such a pair is an input-shape defect and fatal.
	ErrDegeneratePair = errors.New("degenerate posterior shape parameters")

	// ErrInvalidShape marks a quantile evaluation with non-positive shape
	// parameters.
	ErrInvalidShape = errors.New("invalid beta shape parameters")

	// ErrNumericInstability marks an inverse-CDF evaluation that failed to
	// converge even after the bisection fallback. The affected row is
	// excluded and counted, never emitted with a NaN interval.
	ErrNumericInstability = errors.New("inverse beta cdf failed to converge")
)

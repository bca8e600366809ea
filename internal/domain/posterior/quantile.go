package posterior

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// bisectMaxIter bounds the bisection fallback. 1<<200 subdivisions of
	// [0,1] is far below float64 resolution, so the loop always terminates
	// at machine precision first.
	bisectMaxIter = 200
	bisectTol     = 1e-14

	// cdfAgreementTol is how closely the forward CDF at the returned
	// quantile must reproduce the requested probability.
	cdfAgreementTol = 1e-6
)

// betaQuantile evaluates the inverse CDF of Beta(alpha, beta) at p.
//
// The primary path is gonum's Quantile, which inverts the regularized
// incomplete Beta function and stays stable across extreme shape
// parameters. When it still produces a non-finite or out-of-range value,
// the routine retries by bisection against the forward CDF. retried
// reports that the fallback ran.
func betaQuantile(alpha, beta, p float64) (q float64, retried bool, err error) {
	if alpha <= 0 || beta <= 0 {
		return 0, false, fmt.Errorf("%w: alpha=%g beta=%g", ErrInvalidShape, alpha, beta)
	}
	// Degenerate tails have exact answers.
	if p <= 0 {
		return 0, false, nil
	}
	if p >= 1 {
		return 1, false, nil
	}

	dist := distuv.Beta{Alpha: alpha, Beta: beta}

	q = safeQuantile(dist, p)
	if validProbability(q) && cdfAgrees(dist, q, p) {
		return q, false, nil
	}

	q, err = bisectQuantile(dist, p)
	if err != nil {
		return 0, true, err
	}
	return q, true, nil
}

// safeQuantile evaluates dist.Quantile without letting a numeric panic
// escape; a panic is reported as NaN and handled by the fallback.
func safeQuantile(dist distuv.Beta, p float64) (q float64) {
	defer func() {
		if r := recover(); r != nil {
			q = math.NaN()
		}
	}()
	return dist.Quantile(p)
}

// bisectQuantile inverts the forward CDF by bisection on [0,1].
func bisectQuantile(dist distuv.Beta, p float64) (float64, error) {
	lo, hi := 0.0, 1.0
	for i := 0; i < bisectMaxIter && hi-lo > bisectTol; i++ {
		mid := 0.5 * (lo + hi)
		c := dist.CDF(mid)
		if math.IsNaN(c) {
			return 0, fmt.Errorf("%w: cdf is NaN at %g (alpha=%g beta=%g)",
				ErrNumericInstability, mid, dist.Alpha, dist.Beta)
		}
		if c < p {
			lo = mid
		} else {
			hi = mid
		}
	}
	q := 0.5 * (lo + hi)
	if !validProbability(q) || !cdfAgrees(dist, q, p) {
		return 0, fmt.Errorf("%w: bisection did not converge (alpha=%g beta=%g p=%g)",
			ErrNumericInstability, dist.Alpha, dist.Beta, p)
	}
	return q, nil
}

func validProbability(q float64) bool {
	return !math.IsNaN(q) && q >= 0 && q <= 1
}

func cdfAgrees(dist distuv.Beta, q, p float64) bool {
	c := dist.CDF(q)
	return !math.IsNaN(c) && math.Abs(c-p) <= cdfAgreementTol
}

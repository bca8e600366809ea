// Package posterior applies the conjugate Beta-Binomial update to joined
// (player stat, group prior) pairs and computes credible intervals and
// shrinkage.
package posterior

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/okian/courtside/internal/domain/merge"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/pkg/logger"
	"github.com/okian/courtside/pkg/metrics"
)

// DefaultConfidence is the default credible-interval confidence level.
const DefaultConfidence = 0.95

// Report summarizes a ComputeAll pass.
type Report struct {
	// Computed is the number of posterior records produced.
	Computed int
	// NumericFailures counts rows excluded after the inverse-CDF fallback
	// also failed.
	NumericFailures int
}

// Engine computes posterior records.
type Engine struct {
	confidence float64
	workers    int
	log        logger.Logger
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithConfidence sets the credible-interval confidence level. Values
// outside (0,1) are ignored.
func WithConfidence(c float64) Option {
	return func(e *Engine) {
		if c > 0 && c < 1 {
			e.confidence = c
		}
	}
}

// WithWorkers sets the fan-out width for ComputeAll. Values below 1 are
// ignored.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n >= 1 {
			e.workers = n
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// New creates an Engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		confidence: DefaultConfidence,
		workers:    runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.Get().Named("posterior")
	}
	return e
}

// Compute applies the conjugate update to one joined pair.
//
//	posterior_alpha = prior_alpha + makes
//	posterior_beta  = prior_beta + (attempts - makes)
//	posterior_mean  = posterior_alpha / (posterior_alpha + posterior_beta)
//
// The credible interval is the central region of the posterior bounded by
// its inverse CDF at (1-C)/2 and 1-(1-C)/2.
func (e *Engine) Compute(pair merge.Pair) (model.PosteriorRecord, error) {
	s, p := pair.Stat, pair.Prior

	postAlpha := p.Alpha + float64(s.Makes)
	postBeta := p.Beta + float64(s.Attempts-s.Makes)
	if postAlpha <= 0 || postBeta <= 0 {
		// Upstream guarantees prior attempts > 0, so both contributions
		// being zero means the input shape is broken, not merely sparse.
		return model.PosteriorRecord{}, fmt.Errorf("%w: player %s %s/%s alpha=%g beta=%g",
			ErrDegeneratePair, s.PlayerID, s.Position, s.Zone, postAlpha, postBeta)
	}

	mean := postAlpha / (postAlpha + postBeta)
	tail := (1 - e.confidence) / 2

	lower, retriedLo, err := betaQuantile(postAlpha, postBeta, tail)
	if err != nil {
		return model.PosteriorRecord{}, fmt.Errorf("lower bound: %w", err)
	}
	upper, retriedHi, err := betaQuantile(postAlpha, postBeta, 1-tail)
	if err != nil {
		return model.PosteriorRecord{}, fmt.Errorf("upper bound: %w", err)
	}
	if retriedLo || retriedHi {
		metrics.RecordQuantileRetry()
	}

	return model.PosteriorRecord{
		PlayerID:      s.PlayerID,
		PlayerName:    s.PlayerName,
		Position:      s.Position,
		Zone:          s.Zone,
		Attempts:      s.Attempts,
		Makes:         s.Makes,
		RawPct:        s.RawPct,
		PriorPct:      p.Pct,
		PosteriorMean: mean,
		CILower:       lower,
		CIUpper:       upper,
		CIWidth:       upper - lower,
		Shrinkage:     s.RawPct - mean,
		PriorAlpha:    p.Alpha,
		PriorBeta:     p.Beta,
		PostAlpha:     postAlpha,
		PostBeta:      postBeta,
	}, nil
}

type indexedResult struct {
	rec model.PosteriorRecord
	err error
}

// ComputeAll computes posterior records for every pair, fanning the
// per-row work across the configured worker count. Rows depend only on
// their own pair, so workers share nothing but the read-only input.
// Results keep the input order regardless of worker scheduling.
//
// Numeric-instability failures exclude the affected row and are counted in
// the report; any other per-row error aborts the whole pass.
func (e *Engine) ComputeAll(ctx context.Context, pairs []merge.Pair) ([]model.PosteriorRecord, Report, error) {
	workers := e.workers
	if workers > len(pairs) && len(pairs) > 0 {
		workers = len(pairs)
	}
	metrics.UpdateWorkerCount(workers)

	results := make([]indexedResult, len(pairs))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				rec, err := e.Compute(pairs[i])
				results[i] = indexedResult{rec: rec, err: err}
			}
		}()
	}

	for i := range pairs {
		if err := ctx.Err(); err != nil {
			close(jobs)
			wg.Wait()
			return nil, Report{}, err
		}
		select {
		case jobs <- i:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, Report{}, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	var rep Report
	records := make([]model.PosteriorRecord, 0, len(pairs))
	for i, res := range results {
		if res.err != nil {
			if isNumeric(res.err) {
				rep.NumericFailures++
				metrics.RecordQuantileFailure()
				e.log.Warn(ctx, "excluding row after numeric failure",
					logger.String("player_id", pairs[i].Stat.PlayerID),
					logger.String("zone", pairs[i].Stat.Zone),
					logger.Error(res.err),
				)
				continue
			}
			return nil, Report{}, res.err
		}
		records = append(records, res.rec)
		metrics.RecordPosteriorComputed()
	}
	rep.Computed = len(records)
	return records, rep, nil
}

// Package app wires the pipeline stages together: ingest, prior
// construction, player aggregation, merge, posterior computation.
package app

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/okian/courtside/internal/adapters/source"
	"github.com/okian/courtside/internal/domain/aggregate"
	"github.com/okian/courtside/internal/domain/merge"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/posterior"
	"github.com/okian/courtside/internal/domain/prior"
	"github.com/okian/courtside/pkg/logger"
	"github.com/okian/courtside/pkg/metrics"
)

// DefaultMaxBadFraction is the default ceiling on the malformed-input
// fraction before the whole run fails.
const DefaultMaxBadFraction = 0.5

// Diagnostics aggregates the per-stage drop counts of one run.
// Aggregation-stage issues are only ever reported here, never raised per
// row to the caller.
type Diagnostics struct {
	RowsIngested    int
	Malformed       int
	UnknownDropped  int
	EmptyGroups     int
	SubThreshold    int
	MissingPrior    int
	NumericFailures int
	Computed        int
}

// Result is the immutable artifact of one pipeline run.
type Result struct {
	RunID        string
	Records      []model.PosteriorRecord
	Priors       []model.GroupPrior
	LeaguePriors []model.GroupPrior
	Diagnostics  Diagnostics
}

// Pipeline runs the full estimation flow over one outcome table.
type Pipeline struct {
	minAttempts    int
	confidence     float64
	workers        int
	strict         bool
	maxBadFraction float64

	// preloaded priors replace the prior-building stage when set; they
	// are normalized (zero-attempt groups dropped and counted) on use.
	preloadedPriors []model.GroupPrior

	reader     *source.Reader
	builder    *prior.Builder
	aggregator *aggregate.Aggregator
	resolver   *merge.Resolver
	engine     *posterior.Engine

	log logger.Logger
}

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithMinAttempts sets the minimum-attempts filter for player aggregation.
func WithMinAttempts(n int) Option {
	return func(p *Pipeline) {
		if n >= 1 {
			p.minAttempts = n
		}
	}
}

// WithConfidence sets the credible-interval confidence level.
func WithConfidence(c float64) Option {
	return func(p *Pipeline) {
		if c > 0 && c < 1 {
			p.confidence = c
		}
	}
}

// WithWorkers sets the posterior fan-out width.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n >= 1 {
			p.workers = n
		}
	}
}

// WithStrict makes malformed input fatal instead of skip-and-count.
func WithStrict(strict bool) Option {
	return func(p *Pipeline) {
		p.strict = strict
	}
}

// WithMaxBadFraction sets the hard ceiling on the malformed fraction.
// Values outside [0,1] are ignored.
func WithMaxBadFraction(f float64) Option {
	return func(p *Pipeline) {
		if f >= 0 && f <= 1 {
			p.maxBadFraction = f
		}
	}
}

// WithPriors supplies a pre-aggregated prior table instead of building
// priors from the outcome set.
func WithPriors(priors []model.GroupPrior) Option {
	return func(p *Pipeline) {
		p.preloadedPriors = priors
	}
}

// WithLogger sets a custom logger for the pipeline.
func WithLogger(log logger.Logger) Option {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// New constructs a Pipeline with default configuration.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		minAttempts:    aggregate.DefaultMinAttempts,
		confidence:     posterior.DefaultConfidence,
		workers:        runtime.NumCPU(),
		maxBadFraction: DefaultMaxBadFraction,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = logger.Get().Named("pipeline")
	}

	p.reader = source.NewReader(source.WithStrict(p.strict), source.WithLogger(p.log))
	p.builder = prior.NewBuilder(prior.WithLogger(p.log))
	p.aggregator = aggregate.New(aggregate.WithMinAttempts(p.minAttempts), aggregate.WithLogger(p.log))
	p.resolver = merge.New(merge.WithLogger(p.log))
	p.engine = posterior.New(
		posterior.WithConfidence(p.confidence),
		posterior.WithWorkers(p.workers),
		posterior.WithLogger(p.log),
	)
	return p
}

// RunFile ingests the CSV table at path and runs the pipeline over it.
func (p *Pipeline) RunFile(ctx context.Context, path string) (*Result, error) {
	if path == "" {
		return nil, ErrNoInput
	}

	start := time.Now()
	outcomes, ingestRep, err := p.reader.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	metrics.ObserveStageDuration("ingest", time.Since(start).Seconds())

	if ingestRep.Rows > 0 {
		badFraction := float64(ingestRep.Malformed) / float64(ingestRep.Rows)
		if badFraction > p.maxBadFraction {
			return nil, fmt.Errorf("%w: %.2f > %.2f", ErrTooManyBadRows, badFraction, p.maxBadFraction)
		}
	}

	res, err := p.Run(ctx, outcomes)
	if err != nil {
		return nil, err
	}
	res.Diagnostics.RowsIngested = ingestRep.Rows
	res.Diagnostics.Malformed = ingestRep.Malformed
	return res, nil
}

// Run executes the estimation flow over an in-memory outcome set and
// returns the posterior records plus a diagnostics summary.
func (p *Pipeline) Run(ctx context.Context, outcomes []model.Outcome) (*Result, error) {
	runID := uuid.NewString()
	p.log.Info(ctx, "starting pipeline run",
		logger.String("run_id", runID),
		logger.Int("outcomes", len(outcomes)),
	)

	res := &Result{RunID: runID}

	// Priors
	start := time.Now()
	var priorRep prior.Report
	if p.preloadedPriors != nil {
		normalized, dropped := prior.Normalize(append([]model.GroupPrior(nil), p.preloadedPriors...))
		res.Priors = normalized
		priorRep.EmptyGroups = dropped
		priorRep.Groups = len(normalized)
	} else {
		var err error
		res.Priors, priorRep, err = p.builder.Build(ctx, outcomes)
		if err != nil {
			return nil, err
		}
	}
	leaguePriors, _, err := p.builder.BuildLeague(ctx, outcomes)
	if err != nil {
		return nil, err
	}
	res.LeaguePriors = leaguePriors
	metrics.ObserveStageDuration("priors", time.Since(start).Seconds())

	// Player aggregation
	start = time.Now()
	stats, aggRep, err := p.aggregator.Aggregate(ctx, outcomes)
	if err != nil {
		return nil, err
	}
	metrics.ObserveStageDuration("aggregate", time.Since(start).Seconds())

	// Merge
	start = time.Now()
	pairs, missing, err := p.resolver.Resolve(ctx, stats, res.Priors)
	if err != nil {
		return nil, err
	}
	metrics.ObserveStageDuration("merge", time.Since(start).Seconds())

	// Posterior computation
	start = time.Now()
	records, postRep, err := p.engine.ComputeAll(ctx, pairs)
	if err != nil {
		return nil, err
	}
	metrics.ObserveStageDuration("posterior", time.Since(start).Seconds())

	res.Records = records
	res.Diagnostics = Diagnostics{
		UnknownDropped:  priorRep.UnknownDropped,
		EmptyGroups:     priorRep.EmptyGroups,
		SubThreshold:    aggRep.SubThreshold,
		MissingPrior:    missing,
		NumericFailures: postRep.NumericFailures,
		Computed:        postRep.Computed,
	}

	metrics.UpdateRecordTotal(len(records))
	metrics.UpdateLastRunUnix(time.Now().Unix())

	p.log.Info(ctx, "pipeline run complete",
		logger.String("run_id", runID),
		logger.Int("records", len(records)),
		logger.Int("missing_prior", missing),
		logger.Int("numeric_failures", postRep.NumericFailures),
	)
	return res, nil
}

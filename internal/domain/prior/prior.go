// Package prior builds Beta prior parameters from raw shot outcomes.
//
// Priors are grouped by (position, zone). Outcomes with an unclassified
// position are excluded before grouping: unknown positions would bias the
// baseline every classified player is compared against.
package prior

import (
	"context"
	"sort"

	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/pkg/logger"
	"github.com/okian/courtside/pkg/metrics"
)

// Report summarizes what Build dropped along the way.
type Report struct {
	// UnknownDropped counts outcomes excluded for an unclassified position.
	UnknownDropped int
	// EmptyGroups counts zero-attempt groups dropped during normalization.
	EmptyGroups int
	// Groups is the number of priors produced.
	Groups int
}

// Builder aggregates outcomes into group priors.
type Builder struct {
	log logger.Logger
}

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithLogger sets a custom logger for the builder.
func WithLogger(log logger.Logger) Option {
	return func(b *Builder) {
		if log != nil {
			b.log = log
		}
	}
}

// NewBuilder creates a Builder with the given options.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		opt(b)
	}
	if b.log == nil {
		b.log = logger.Get().Named("prior")
	}
	return b
}

type groupKey struct {
	position string
	zone     string
}

// Build aggregates outcomes into per-(position, zone) Beta priors.
// The returned slice is sorted by position, then attempts descending.
func (b *Builder) Build(ctx context.Context, outcomes []model.Outcome) ([]model.GroupPrior, Report, error) {
	var rep Report

	counts := make(map[groupKey]*model.GroupPrior)
	for _, o := range outcomes {
		if !o.Classified() {
			rep.UnknownDropped++
			continue
		}
		key := groupKey{position: o.Position, zone: o.Zone}
		g, ok := counts[key]
		if !ok {
			g = &model.GroupPrior{Position: o.Position, Zone: o.Zone}
			counts[key] = g
		}
		g.Attempts++
		if o.Made {
			g.Makes++
		}
	}

	priors := make([]model.GroupPrior, 0, len(counts))
	for _, g := range counts {
		priors = append(priors, *g)
	}
	priors, dropped := Normalize(priors)
	rep.EmptyGroups = dropped
	rep.Groups = len(priors)

	sortPriors(priors)

	metrics.UpdatePriorGroups(len(priors))
	b.log.Debug(ctx, "built priors",
		logger.Int("groups", rep.Groups),
		logger.Int("unknown_dropped", rep.UnknownDropped),
		logger.Int("empty_groups", rep.EmptyGroups),
	)
	return priors, rep, nil
}

// BuildLeague aggregates outcomes into per-zone priors across all
// positions, for baseline comparison output. League priors carry an empty
// Position and are never consulted when a position-specific prior is
// missing.
func (b *Builder) BuildLeague(ctx context.Context, outcomes []model.Outcome) ([]model.GroupPrior, Report, error) {
	var rep Report

	counts := make(map[string]*model.GroupPrior)
	for _, o := range outcomes {
		g, ok := counts[o.Zone]
		if !ok {
			g = &model.GroupPrior{Zone: o.Zone}
			counts[o.Zone] = g
		}
		g.Attempts++
		if o.Made {
			g.Makes++
		}
	}

	priors := make([]model.GroupPrior, 0, len(counts))
	for _, g := range counts {
		priors = append(priors, *g)
	}
	priors, dropped := Normalize(priors)
	rep.EmptyGroups = dropped
	rep.Groups = len(priors)

	sortPriors(priors)

	b.log.Debug(ctx, "built league priors", logger.Int("groups", rep.Groups))
	return priors, rep, nil
}

// Normalize recomputes the derived prior fields from the raw counts and
// drops groups with zero attempts, returning the dropped count. A
// zero-attempt group cannot yield a valid Beta distribution.
func Normalize(priors []model.GroupPrior) ([]model.GroupPrior, int) {
	out := priors[:0]
	dropped := 0
	for _, g := range priors {
		if err := Validate(g); err != nil {
			dropped++
			metrics.RecordEmptyGroupDropped()
			continue
		}
		g.Pct = float64(g.Makes) / float64(g.Attempts)
		g.Alpha = float64(g.Makes)
		g.Beta = float64(g.Attempts - g.Makes)
		out = append(out, g)
	}
	return out, dropped
}

func sortPriors(priors []model.GroupPrior) {
	sort.Slice(priors, func(i, j int) bool {
		if priors[i].Position != priors[j].Position {
			return priors[i].Position < priors[j].Position
		}
		if priors[i].Attempts != priors[j].Attempts {
			return priors[i].Attempts > priors[j].Attempts
		}
		return priors[i].Zone < priors[j].Zone
	})
}

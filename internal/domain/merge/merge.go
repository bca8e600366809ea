// Package merge joins player stats to their matching group prior.
package merge

import (
	"context"
	"fmt"

	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/pkg/logger"
	"github.com/okian/courtside/pkg/metrics"
)

// Pair is one joined (player stat, group prior) row, the unit of posterior
// computation.
type Pair struct {
	Stat  model.EntityStat
	Prior model.GroupPrior
}

// Resolver joins stats to priors on exact (position, zone) keys.
type Resolver struct {
	log logger.Logger
}

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithLogger sets a custom logger for the resolver.
func WithLogger(log logger.Logger) Option {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}

// New creates a Resolver with the given options.
func New(opts ...Option) *Resolver {
	r := &Resolver{}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.Get().Named("merge")
	}
	return r
}

type priorKey struct {
	position string
	zone     string
}

// Index is a prior set keyed by (position, zone) for exact-match joins.
type Index map[priorKey]model.GroupPrior

// NewIndex builds an Index from a prior slice. Later duplicates of the
// same key overwrite earlier ones.
func NewIndex(priors []model.GroupPrior) Index {
	idx := make(Index, len(priors))
	for _, p := range priors {
		idx[priorKey{position: p.Position, zone: p.Zone}] = p
	}
	return idx
}

// Lookup returns the prior for a stat row's (position, zone), or
// ErrMissingPrior when no exact match exists.
func (idx Index) Lookup(s model.EntityStat) (model.GroupPrior, error) {
	p, ok := idx[priorKey{position: s.Position, zone: s.Zone}]
	if !ok {
		return model.GroupPrior{}, fmt.Errorf("%w: %s/%s", ErrMissingPrior, s.Position, s.Zone)
	}
	return p, nil
}

// Resolve joins each stat row to the prior with exactly matching
// (position, zone). Rows with no matching prior are dropped and counted;
// no fallback to a coarser prior is applied. Pairs preserve the order of
// the stats slice.
func (r *Resolver) Resolve(ctx context.Context, stats []model.EntityStat, priors []model.GroupPrior) ([]Pair, int, error) {
	index := NewIndex(priors)

	pairs := make([]Pair, 0, len(stats))
	dropped := 0
	for _, s := range stats {
		p, err := index.Lookup(s)
		if err != nil {
			dropped++
			metrics.RecordMissingPriorDropped()
			r.log.Debug(ctx, "no matching prior, dropping row",
				logger.String("player_id", s.PlayerID),
				logger.String("position", s.Position),
				logger.String("zone", s.Zone),
			)
			continue
		}
		pairs = append(pairs, Pair{Stat: s, Prior: p})
	}

	if dropped > 0 {
		r.log.Warn(ctx, "player-zone rows without matching priors",
			logger.Int("dropped", dropped),
		)
	}
	return pairs, dropped, nil
}

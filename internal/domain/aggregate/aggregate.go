// Package aggregate computes per-player shooting counts by (position, zone).
//
// Rows below the configured minimum-attempts threshold are dropped
// entirely rather than retained with wide uncertainty: sub-threshold
// samples carry no reliable signal even after shrinkage.
package aggregate

import (
	"context"
	"sort"

	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/pkg/logger"
	"github.com/okian/courtside/pkg/metrics"
)

// DefaultMinAttempts is the default volume filter for player-zone rows.
const DefaultMinAttempts = 5

// Report summarizes the aggregation pass.
type Report struct {
	// SubThreshold counts player-zone rows dropped below the attempts
	// threshold.
	SubThreshold int
	// Rows is the number of stats produced.
	Rows int
	// Players is the number of distinct players with at least one row.
	Players int
}

// Aggregator groups outcomes into per-player per-zone counts.
type Aggregator struct {
	minAttempts int64
	log         logger.Logger
}

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithMinAttempts sets the minimum-attempts threshold. Values below 1 are
// ignored.
func WithMinAttempts(n int) Option {
	return func(a *Aggregator) {
		if n >= 1 {
			a.minAttempts = int64(n)
		}
	}
}

// WithLogger sets a custom logger for the aggregator.
func WithLogger(log logger.Logger) Option {
	return func(a *Aggregator) {
		if log != nil {
			a.log = log
		}
	}
}

// New creates an Aggregator with the given options.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{minAttempts: DefaultMinAttempts}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = logger.Get().Named("aggregate")
	}
	return a
}

type statKey struct {
	playerID string
	position string
	zone     string
}

// Aggregate groups outcomes by (player, position, zone) and applies the
// minimum-attempts filter. Output is sorted by player id, position, zone
// so reruns on identical input are byte-identical.
func (a *Aggregator) Aggregate(ctx context.Context, outcomes []model.Outcome) ([]model.EntityStat, Report, error) {
	counts := make(map[statKey]*model.EntityStat)
	for _, o := range outcomes {
		key := statKey{playerID: o.PlayerID, position: o.Position, zone: o.Zone}
		s, ok := counts[key]
		if !ok {
			s = &model.EntityStat{
				PlayerID:   o.PlayerID,
				PlayerName: o.PlayerName,
				Position:   o.Position,
				Zone:       o.Zone,
			}
			counts[key] = s
		}
		s.Attempts++
		if o.Made {
			s.Makes++
		}
	}

	var rep Report
	players := make(map[string]struct{})
	stats := make([]model.EntityStat, 0, len(counts))
	for _, s := range counts {
		if s.Attempts < a.minAttempts {
			rep.SubThreshold++
			continue
		}
		s.RawPct = float64(s.Makes) / float64(s.Attempts)
		stats = append(stats, *s)
		players[s.PlayerID] = struct{}{}
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].PlayerID != stats[j].PlayerID {
			return stats[i].PlayerID < stats[j].PlayerID
		}
		if stats[i].Position != stats[j].Position {
			return stats[i].Position < stats[j].Position
		}
		return stats[i].Zone < stats[j].Zone
	})

	rep.Rows = len(stats)
	rep.Players = len(players)

	metrics.RecordSubThresholdRows(rep.SubThreshold)
	a.log.Debug(ctx, "aggregated player stats",
		logger.Int("rows", rep.Rows),
		logger.Int("players", rep.Players),
		logger.Int("sub_threshold", rep.SubThreshold),
	)
	return stats, rep, nil
}

// Package analysis provides pure, side-effect-free views over a finished
// posterior record set. The record slice is treated as immutable; every
// view sorts or scans a copy.
package analysis

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/okian/courtside/internal/domain/model"
)

// DefaultBucketBounds are the default sample-size boundaries for
// shrinkage reporting.
var DefaultBucketBounds = []float64{20, 50, 100, 500}

// View wraps an immutable posterior record set.
type View struct {
	records []model.PosteriorRecord
}

// New creates a View over records. The caller must not mutate the slice
// afterwards.
func New(records []model.PosteriorRecord) *View {
	return &View{records: records}
}

// Len returns the number of records in the view.
func (v *View) Len() int { return len(v.records) }

// Bucket is a per-sample-size summary of shrinkage behavior.
type Bucket struct {
	Label string
	Count int
	// MeanShrinkage and StdDevShrinkage describe the signed shrinkage in
	// the bucket. StdDevShrinkage is 0 when the bucket holds fewer than
	// two records.
	MeanShrinkage   float64
	StdDevShrinkage float64
	MeanCIWidth     float64
	MeanAttempts    float64
}

// BucketSummary groups records into sample-size buckets. Boundaries are
// right-closed: a record lands in the first bucket whose boundary is >=
// its attempts; records beyond the last boundary land in the final
// open-ended bucket. Bounds must be strictly increasing.
func (v *View) BucketSummary(bounds []float64) ([]Bucket, error) {
	if len(bounds) == 0 {
		return nil, fmt.Errorf("bucket bounds must not be empty")
	}
	for i := 1; i < len(bounds); i++ {
		if bounds[i] <= bounds[i-1] {
			return nil, fmt.Errorf("bucket bounds must be strictly increasing")
		}
	}

	nb := len(bounds) + 1
	shrink := make([][]float64, nb)
	widths := make([][]float64, nb)
	attempts := make([][]float64, nb)

	for _, r := range v.records {
		b := bucketIndex(bounds, float64(r.Attempts))
		shrink[b] = append(shrink[b], r.Shrinkage)
		widths[b] = append(widths[b], r.CIWidth)
		attempts[b] = append(attempts[b], float64(r.Attempts))
	}

	out := make([]Bucket, nb)
	for i := 0; i < nb; i++ {
		out[i] = Bucket{
			Label: bucketLabel(bounds, i),
			Count: len(shrink[i]),
		}
		if len(shrink[i]) == 0 {
			continue
		}
		out[i].MeanShrinkage = stat.Mean(shrink[i], nil)
		out[i].MeanCIWidth = stat.Mean(widths[i], nil)
		out[i].MeanAttempts = stat.Mean(attempts[i], nil)
		if len(shrink[i]) >= 2 {
			out[i].StdDevShrinkage = stat.StdDev(shrink[i], nil)
		}
	}
	return out, nil
}

func bucketIndex(bounds []float64, attempts float64) int {
	for i, b := range bounds {
		if attempts <= b {
			return i
		}
	}
	return len(bounds)
}

func bucketLabel(bounds []float64, i int) string {
	switch {
	case i == 0:
		return fmt.Sprintf("<=%g", bounds[0])
	case i == len(bounds):
		return fmt.Sprintf(">%g", bounds[len(bounds)-1])
	default:
		return fmt.Sprintf("%g-%g", bounds[i-1]+1, bounds[i])
	}
}

// PositionSummary is a per-position rollup of the record set.
type PositionSummary struct {
	Position         string
	MeanPosterior    float64
	MeanAbsShrinkage float64
	MeanCIWidth      float64
	Players          int
}

// PositionSummaries rolls the record set up by position, sorted by
// position name.
func (v *View) PositionSummaries() []PositionSummary {
	type acc struct {
		post, absShrink, width []float64
		players               map[string]struct{}
	}
	byPos := make(map[string]*acc)
	for _, r := range v.records {
		a, ok := byPos[r.Position]
		if !ok {
			a = &acc{players: make(map[string]struct{})}
			byPos[r.Position] = a
		}
		a.post = append(a.post, r.PosteriorMean)
		s := r.Shrinkage
		if s < 0 {
			s = -s
		}
		a.absShrink = append(a.absShrink, s)
		a.width = append(a.width, r.CIWidth)
		a.players[r.PlayerID] = struct{}{}
	}

	out := make([]PositionSummary, 0, len(byPos))
	for pos, a := range byPos {
		out = append(out, PositionSummary{
			Position:         pos,
			MeanPosterior:    stat.Mean(a.post, nil),
			MeanAbsShrinkage: stat.Mean(a.absShrink, nil),
			MeanCIWidth:      stat.Mean(a.width, nil),
			Players:          len(a.players),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// TopN returns the n records with the highest posterior mean within zone,
// restricted to records with at least minAttempts. Ties keep input order.
func (v *View) TopN(zone string, n int, minAttempts int64) []model.PosteriorRecord {
	var filtered []model.PosteriorRecord
	for _, r := range v.records {
		if r.Zone == zone && r.Attempts >= minAttempts {
			filtered = append(filtered, r)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].PosteriorMean > filtered[j].PosteriorMean
	})
	if n < len(filtered) {
		filtered = filtered[:n]
	}
	return filtered
}

// MostAttempts returns the record with the maximum attempts; ties keep the
// first record in input order. ok is false for an empty view.
func (v *View) MostAttempts() (rec model.PosteriorRecord, ok bool) {
	for _, r := range v.records {
		if !ok || r.Attempts > rec.Attempts {
			rec, ok = r, true
		}
	}
	return rec, ok
}

// FewestAttempts returns the record with the minimum attempts; ties keep
// the first record in input order. ok is false for an empty view.
func (v *View) FewestAttempts() (rec model.PosteriorRecord, ok bool) {
	for _, r := range v.records {
		if !ok || r.Attempts < rec.Attempts {
			rec, ok = r, true
		}
	}
	return rec, ok
}

// LargestShrinkage returns the n records with the largest positive
// shrinkage: overperformers on small samples regularized down. Ties keep
// input order.
func (v *View) LargestShrinkage(n int) []model.PosteriorRecord {
	out := make([]model.PosteriorRecord, len(v.records))
	copy(out, v.records)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Shrinkage > out[j].Shrinkage })
	if n < len(out) {
		out = out[:n]
	}
	return out
}

// SmallestShrinkage returns the n records with the largest negative
// shrinkage: underperformers on small samples regularized up. Ties keep
// input order.
func (v *View) SmallestShrinkage(n int) []model.PosteriorRecord {
	out := make([]model.PosteriorRecord, len(v.records))
	copy(out, v.records)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Shrinkage < out[j].Shrinkage })
	if n < len(out) {
		out = out[:n]
	}
	return out
}

// Lookup returns every record whose player name contains sub
// (case-insensitive), sorted by attempts descending.
func (v *View) Lookup(sub string) []model.PosteriorRecord {
	sub = strings.ToLower(sub)
	var out []model.PosteriorRecord
	for _, r := range v.records {
		if strings.Contains(strings.ToLower(r.PlayerName), sub) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Attempts > out[j].Attempts })
	return out
}

package posterior_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/courtside/internal/domain/merge"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/posterior"
	"github.com/okian/courtside/pkg/logger"
)

func TestMain(m *testing.M) {
	_ = logger.Init()
	m.Run()
}

func pair(makes, attempts int64, alpha, beta float64) merge.Pair {
	return merge.Pair{
		Stat: model.EntityStat{
			PlayerID: "p1",
			Position: "Guard",
			Zone:     "Above the Break 3",
			Makes:    makes,
			Attempts: attempts,
			RawPct:   float64(makes) / float64(attempts),
		},
		Prior: model.GroupPrior{
			Position: "Guard",
			Zone:     "Above the Break 3",
			Makes:    int64(alpha),
			Attempts: int64(alpha + beta),
			Pct:      alpha / (alpha + beta),
			Alpha:    alpha,
			Beta:     beta,
		},
	}
}

func TestEngine_Compute(t *testing.T) {
	Convey("Given a posterior engine at 95% confidence", t, func() {
		engine := posterior.New(posterior.WithConfidence(0.95))

		Convey("When computing a small overperforming sample", func() {
			// prior 450/1000 (45%), player 9/10 (90%)
			rec, err := engine.Compute(pair(9, 10, 450, 550))
			So(err, ShouldBeNil)

			Convey("Then the update is additive", func() {
				So(rec.PostAlpha, ShouldEqual, 459)
				So(rec.PostBeta, ShouldEqual, 551)
			})

			Convey("Then the mean shrinks nearly all the way to the prior", func() {
				So(rec.PosteriorMean, ShouldAlmostEqual, 0.4545, 0.0001)
				So(rec.Shrinkage, ShouldAlmostEqual, 0.4455, 0.0001)
			})

			Convey("Then the interval brackets the mean", func() {
				So(rec.CILower, ShouldBeLessThanOrEqualTo, rec.PosteriorMean)
				So(rec.CIUpper, ShouldBeGreaterThanOrEqualTo, rec.PosteriorMean)
				So(rec.CIWidth, ShouldAlmostEqual, rec.CIUpper-rec.CILower, 1e-12)
				So(rec.CIWidth, ShouldBeGreaterThanOrEqualTo, 0)
			})
		})

		Convey("When computing a large sample matching the prior rate", func() {
			// prior 45%, player 900/2000 (45%)
			rec, err := engine.Compute(pair(900, 2000, 450, 550))
			So(err, ShouldBeNil)
			So(rec.PosteriorMean, ShouldAlmostEqual, 0.45, 0.001)
			So(rec.Shrinkage, ShouldAlmostEqual, 0, 0.001)
		})

		Convey("When the sample dwarfs the prior", func() {
			// prior 10 attempts, player 60000/100000
			rec, err := engine.Compute(pair(60000, 100000, 4, 6))
			So(err, ShouldBeNil)

			Convey("Then the posterior mean approaches the raw rate", func() {
				So(rec.PosteriorMean, ShouldAlmostEqual, 0.6, 0.001)
				So(rec.Shrinkage, ShouldAlmostEqual, 0, 0.001)
			})

			Convey("Then the interval is narrow", func() {
				So(rec.CIWidth, ShouldBeLessThan, 0.01)
			})
		})

		Convey("When the sample is minimal", func() {
			// player 2/5 against prior 45%: mean stays near alpha/(alpha+beta)
			rec, err := engine.Compute(pair(2, 5, 450, 550))
			So(err, ShouldBeNil)
			So(rec.PosteriorMean, ShouldAlmostEqual, 450.0/1000, 0.005)
		})

		Convey("When the posterior mean is checked across parameter ranges", func() {
			for _, tc := range []struct {
				makes, attempts int64
				alpha, beta     float64
			}{
				{0, 5, 100, 200},
				{5, 5, 100, 200},
				{50, 100, 1, 1},
				{1, 1000, 500, 500},
			} {
				rec, err := engine.Compute(pair(tc.makes, tc.attempts, tc.alpha, tc.beta))
				So(err, ShouldBeNil)
				So(rec.PosteriorMean, ShouldBeGreaterThan, 0)
				So(rec.PosteriorMean, ShouldBeLessThan, 1)
				So(rec.CILower, ShouldBeLessThanOrEqualTo, rec.PosteriorMean)
				So(rec.CIUpper, ShouldBeGreaterThanOrEqualTo, rec.PosteriorMean)
			}
		})

		Convey("When both prior and sample contribute nothing", func() {
			p := pair(0, 0, 0, 0)
			p.Stat.RawPct = 0
			_, err := engine.Compute(p)

			Convey("Then it is a fatal input-shape error", func() {
				So(errors.Is(err, posterior.ErrDegeneratePair), ShouldBeTrue)
			})
		})
	})

	Convey("Given engines at different confidence levels", t, func() {
		Convey("When widening the confidence level", func() {
			narrow, err := posterior.New(posterior.WithConfidence(0.5)).Compute(pair(50, 100, 45, 55))
			So(err, ShouldBeNil)
			wide, err := posterior.New(posterior.WithConfidence(0.99)).Compute(pair(50, 100, 45, 55))
			So(err, ShouldBeNil)

			Convey("Then the interval widens", func() {
				So(wide.CIWidth, ShouldBeGreaterThan, narrow.CIWidth)
			})
		})
	})
}

func TestEngine_ComputeAll(t *testing.T) {
	Convey("Given a batch of joined pairs", t, func() {
		engine := posterior.New(posterior.WithWorkers(4))

		pairs := make([]merge.Pair, 0, 50)
		for i := 0; i < 50; i++ {
			p := pair(int64(i%10+1), int64(i%10+5), 450, 550)
			p.Stat.PlayerID = fmt.Sprintf("p%02d", i)
			pairs = append(pairs, p)
		}

		Convey("When computing across workers", func() {
			records, rep, err := engine.ComputeAll(context.Background(), pairs)
			So(err, ShouldBeNil)

			Convey("Then every pair yields exactly one record", func() {
				So(rep.Computed, ShouldEqual, len(pairs))
				So(records, ShouldHaveLength, len(pairs))
				So(rep.NumericFailures, ShouldEqual, 0)
			})

			Convey("Then output keeps input order regardless of scheduling", func() {
				for i, r := range records {
					So(r.PlayerID, ShouldEqual, fmt.Sprintf("p%02d", i))
				}
			})

			Convey("Then a second run is numerically identical", func() {
				again, _, err := engine.ComputeAll(context.Background(), pairs)
				So(err, ShouldBeNil)
				So(again, ShouldHaveLength, len(records))
				for i := range records {
					So(again[i].PosteriorMean, ShouldAlmostEqual, records[i].PosteriorMean, 1e-9)
					So(again[i].CILower, ShouldAlmostEqual, records[i].CILower, 1e-9)
					So(again[i].CIUpper, ShouldAlmostEqual, records[i].CIUpper, 1e-9)
				}
			})
		})

		Convey("When a degenerate pair is mixed in", func() {
			bad := pair(0, 0, 0, 0)
			_, _, err := engine.ComputeAll(context.Background(), append(pairs, bad))

			Convey("Then the whole pass aborts", func() {
				So(errors.Is(err, posterior.ErrDegeneratePair), ShouldBeTrue)
			})
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, _, err := engine.ComputeAll(ctx, pairs)
			So(err, ShouldEqual, context.Canceled)
		})

		Convey("When the batch is empty", func() {
			records, rep, err := engine.ComputeAll(context.Background(), nil)
			So(err, ShouldBeNil)
			So(records, ShouldBeEmpty)
			So(rep.Computed, ShouldEqual, 0)
		})
	})
}

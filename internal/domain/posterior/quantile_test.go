package posterior

import (
	"errors"
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"gonum.org/v1/gonum/stat/distuv"
)

func TestBetaQuantile(t *testing.T) {
	Convey("Given the inverse Beta CDF", t, func() {
		Convey("When evaluating the symmetric Beta(2,2) median", func() {
			q, retried, err := betaQuantile(2, 2, 0.5)
			So(err, ShouldBeNil)
			So(retried, ShouldBeFalse)
			So(q, ShouldAlmostEqual, 0.5, 1e-9)
		})

		Convey("When evaluating a uniform Beta(1,1)", func() {
			for _, p := range []float64{0.025, 0.5, 0.975} {
				q, _, err := betaQuantile(1, 1, p)
				So(err, ShouldBeNil)
				So(q, ShouldAlmostEqual, p, 1e-9)
			}
		})

		Convey("When the probability sits at the degenerate tails", func() {
			q, _, err := betaQuantile(3, 7, 0)
			So(err, ShouldBeNil)
			So(q, ShouldEqual, 0)

			q, _, err = betaQuantile(3, 7, 1)
			So(err, ShouldBeNil)
			So(q, ShouldEqual, 1)
		})

		Convey("When shape parameters are extreme", func() {
			Convey("Then very large symmetric shapes stay finite and ordered", func() {
				lo, _, err := betaQuantile(5e5, 5e5, 0.025)
				So(err, ShouldBeNil)
				hi, _, err := betaQuantile(5e5, 5e5, 0.975)
				So(err, ShouldBeNil)
				So(lo, ShouldBeLessThan, hi)
				So(lo, ShouldBeBetween, 0.498, 0.5)
				So(hi, ShouldBeBetween, 0.5, 0.502)
			})

			Convey("Then heavily skewed shapes stay in range", func() {
				q, _, err := betaQuantile(999999, 1, 0.5)
				So(err, ShouldBeNil)
				So(q, ShouldBeBetween, 0.999, 1.0)

				q, _, err = betaQuantile(1, 999999, 0.5)
				So(err, ShouldBeNil)
				So(q, ShouldBeBetween, 0.0, 0.001)
			})

			Convey("Then tiny fractional shapes stay in range", func() {
				q, _, err := betaQuantile(0.01, 0.01, 0.5)
				So(err, ShouldBeNil)
				So(q, ShouldBeBetween, 0, 1)
			})
		})

		Convey("When the quantile agrees with the forward CDF", func() {
			dist := distuv.Beta{Alpha: 459, Beta: 551}
			for _, p := range []float64{0.025, 0.25, 0.5, 0.75, 0.975} {
				q, _, err := betaQuantile(459, 551, p)
				So(err, ShouldBeNil)
				So(dist.CDF(q), ShouldAlmostEqual, p, 1e-6)
			}
		})

		Convey("When shape parameters are invalid", func() {
			_, _, err := betaQuantile(0, 5, 0.5)
			So(errors.Is(err, ErrInvalidShape), ShouldBeTrue)

			_, _, err = betaQuantile(5, -1, 0.5)
			So(errors.Is(err, ErrInvalidShape), ShouldBeTrue)
		})
	})
}

func TestBisectQuantile(t *testing.T) {
	Convey("Given the bisection fallback", t, func() {
		Convey("When inverting well-behaved distributions", func() {
			for _, tc := range []struct{ alpha, beta, p float64 }{
				{2, 2, 0.5},
				{459, 551, 0.025},
				{459, 551, 0.975},
				{10, 90, 0.5},
			} {
				dist := distuv.Beta{Alpha: tc.alpha, Beta: tc.beta}
				q, err := bisectQuantile(dist, tc.p)
				So(err, ShouldBeNil)
				So(dist.CDF(q), ShouldAlmostEqual, tc.p, 1e-6)
			}
		})

		Convey("When comparing against the primary path", func() {
			dist := distuv.Beta{Alpha: 1350, Beta: 1650}
			q1 := dist.Quantile(0.975)
			q2, err := bisectQuantile(dist, 0.975)
			So(err, ShouldBeNil)
			So(q2, ShouldAlmostEqual, q1, 1e-9)
		})
	})
}

func TestValidProbability(t *testing.T) {
	Convey("Given the probability validity check", t, func() {
		So(validProbability(0), ShouldBeTrue)
		So(validProbability(1), ShouldBeTrue)
		So(validProbability(0.5), ShouldBeTrue)
		So(validProbability(math.NaN()), ShouldBeFalse)
		So(validProbability(-0.001), ShouldBeFalse)
		So(validProbability(1.001), ShouldBeFalse)
	})
}

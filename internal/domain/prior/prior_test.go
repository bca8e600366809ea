package prior_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/prior"
	"github.com/okian/courtside/pkg/logger"
)

func TestMain(m *testing.M) {
	_ = logger.Init()
	m.Run()
}

// outcomes expands (position, zone, makes, attempts) counts into rows.
func outcomes(position, zone string, makes, attempts int) []model.Outcome {
	rows := make([]model.Outcome, 0, attempts)
	for i := 0; i < attempts; i++ {
		rows = append(rows, model.Outcome{
			PlayerID: "p1",
			Position: position,
			Zone:     zone,
			Made:     i < makes,
		})
	}
	return rows
}

func TestBuilder_Build(t *testing.T) {
	Convey("Given raw outcomes across groups", t, func() {
		b := prior.NewBuilder()
		ctx := context.Background()

		rows := outcomes("Guard", "Corner 3", 4, 10)
		rows = append(rows, outcomes("Guard", "Mid-Range", 5, 8)...)
		rows = append(rows, outcomes("Center", "Corner 3", 1, 2)...)

		Convey("When building group priors", func() {
			priors, rep, err := b.Build(ctx, rows)
			So(err, ShouldBeNil)
			So(rep.Groups, ShouldEqual, 3)
			So(priors, ShouldHaveLength, 3)

			Convey("Then counts map straight to Beta parameters", func() {
				byKey := map[string]model.GroupPrior{}
				for _, g := range priors {
					byKey[g.Position+"/"+g.Zone] = g
				}
				g := byKey["Guard/Corner 3"]
				So(g.Makes, ShouldEqual, 4)
				So(g.Attempts, ShouldEqual, 10)
				So(g.Alpha, ShouldEqual, 4)
				So(g.Beta, ShouldEqual, 6)
				So(g.Pct, ShouldAlmostEqual, 0.4, 1e-12)
			})

			Convey("Then priors come back position-sorted, attempts descending", func() {
				So(priors[0].Position, ShouldEqual, "Center")
				So(priors[1].Position, ShouldEqual, "Guard")
				So(priors[2].Position, ShouldEqual, "Guard")
				So(priors[1].Attempts, ShouldBeGreaterThanOrEqualTo, priors[2].Attempts)
			})
		})

		Convey("When some outcomes carry an unclassified position", func() {
			mixed := append(rows, outcomes(model.UnknownPosition, "Corner 3", 3, 7)...)
			priors, rep, err := b.Build(ctx, mixed)
			So(err, ShouldBeNil)

			Convey("Then they are excluded from every group and counted", func() {
				So(rep.UnknownDropped, ShouldEqual, 7)
				So(rep.Groups, ShouldEqual, 3)
				for _, g := range priors {
					So(g.Position, ShouldNotEqual, model.UnknownPosition)
				}
			})
		})

		Convey("When the input is empty", func() {
			priors, rep, err := b.Build(ctx, nil)
			So(err, ShouldBeNil)
			So(priors, ShouldBeEmpty)
			So(rep.Groups, ShouldEqual, 0)
		})
	})
}

func TestBuilder_BuildLeague(t *testing.T) {
	Convey("Given outcomes across positions in a shared zone", t, func() {
		b := prior.NewBuilder()
		ctx := context.Background()

		rows := outcomes("Guard", "Corner 3", 4, 10)
		rows = append(rows, outcomes("Center", "Corner 3", 6, 10)...)

		Convey("When building league priors", func() {
			priors, rep, err := b.BuildLeague(ctx, rows)
			So(err, ShouldBeNil)
			So(rep.Groups, ShouldEqual, 1)

			Convey("Then positions pool into one zone-wide baseline", func() {
				So(priors[0].Position, ShouldBeEmpty)
				So(priors[0].Zone, ShouldEqual, "Corner 3")
				So(priors[0].Attempts, ShouldEqual, 20)
				So(priors[0].Makes, ShouldEqual, 10)
				So(priors[0].Pct, ShouldAlmostEqual, 0.5, 1e-12)
			})
		})
	})
}

func TestNormalize(t *testing.T) {
	Convey("Given a preloaded prior set", t, func() {
		priors := []model.GroupPrior{
			{Position: "Guard", Zone: "Corner 3", Makes: 450, Attempts: 1000},
			{Position: "Guard", Zone: "Mid-Range", Makes: 0, Attempts: 0},
			{Position: "Center", Zone: "Corner 3", Makes: 30, Attempts: 60},
		}

		Convey("When normalizing", func() {
			out, dropped := prior.Normalize(priors)

			Convey("Then the zero-attempt group is dropped and counted once", func() {
				So(dropped, ShouldEqual, 1)
				So(out, ShouldHaveLength, 2)
				for _, g := range out {
					So(g.Attempts, ShouldBeGreaterThan, 0)
				}
			})

			Convey("Then derived fields are recomputed from the counts", func() {
				So(out[0].Alpha, ShouldEqual, 450)
				So(out[0].Beta, ShouldEqual, 550)
				So(out[0].Pct, ShouldAlmostEqual, 0.45, 1e-12)
			})
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Given group prior validation", t, func() {
		So(prior.Validate(model.GroupPrior{Position: "Guard", Zone: "Corner 3", Makes: 1, Attempts: 2}), ShouldBeNil)

		err := prior.Validate(model.GroupPrior{Position: "Guard", Zone: "Corner 3"})
		So(errors.Is(err, prior.ErrEmptyGroup), ShouldBeTrue)
	})
}

package sink_test

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/courtside/internal/adapters/sink"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/pkg/logger"
)

func TestMain(m *testing.M) {
	_ = logger.Init()
	m.Run()
}

func sampleRecords() []model.PosteriorRecord {
	return []model.PosteriorRecord{
		{
			PlayerID:      "p1",
			PlayerName:    "Alpha",
			Position:      "Guard",
			Zone:          "Corner 3",
			Attempts:      10,
			Makes:         9,
			RawPct:        0.9,
			PriorPct:      0.45,
			PosteriorMean: 0.4545,
			CILower:       0.4238,
			CIUpper:       0.4855,
			CIWidth:       0.0617,
			Shrinkage:     0.4455,
			PriorAlpha:    450,
			PriorBeta:     550,
			PostAlpha:     459,
			PostBeta:      551,
		},
		{
			PlayerID:      "p2",
			PlayerName:    "Beta",
			Position:      "Center",
			Zone:          "Restricted Area",
			Attempts:      2000,
			Makes:         900,
			RawPct:        0.45,
			PriorPct:      0.45,
			PosteriorMean: 0.45,
			CILower:       0.4322,
			CIUpper:       0.4679,
			CIWidth:       0.0357,
			Shrinkage:     0,
			PriorAlpha:    450,
			PriorBeta:     550,
			PostAlpha:     1350,
			PostBeta:      1650,
		},
	}
}

func TestSink_EncodeJSON(t *testing.T) {
	Convey("Given a finished record set", t, func() {
		s := sink.New()

		Convey("When encoding the interchange form", func() {
			var buf bytes.Buffer
			So(s.EncodeJSON(&buf, sampleRecords()), ShouldBeNil)

			var decoded []map[string]any
			So(json.Unmarshal(buf.Bytes(), &decoded), ShouldBeNil)
			So(decoded, ShouldHaveLength, 2)

			Convey("Then numbers come out as plain decimals", func() {
				So(decoded[0]["player_id"], ShouldEqual, "p1")
				So(decoded[0]["posterior_mean"], ShouldAlmostEqual, 0.4545, 1e-9)
				So(decoded[0]["attempts"], ShouldEqual, 10)
				So(decoded[1]["shrinkage"], ShouldEqual, 0)
			})

			Convey("Then field names match the interchange contract", func() {
				for _, key := range []string{
					"player_id", "player_name", "position", "zone",
					"attempts", "makes", "raw_fg_pct", "prior_fg_pct",
					"posterior_mean", "ci_lower", "ci_upper", "ci_width",
					"shrinkage", "prior_alpha", "prior_beta",
					"posterior_alpha", "posterior_beta",
				} {
					So(decoded[0], ShouldContainKey, key)
				}
			})
		})

		Convey("When a record carries non-finite values", func() {
			recs := sampleRecords()[:1]
			recs[0].CILower = math.NaN()
			recs[0].CIUpper = math.Inf(1)

			var buf bytes.Buffer
			So(s.EncodeJSON(&buf, recs), ShouldBeNil)

			var decoded []map[string]any
			So(json.Unmarshal(buf.Bytes(), &decoded), ShouldBeNil)

			Convey("Then they serialize as explicit nulls", func() {
				So(decoded[0]["ci_lower"], ShouldBeNil)
				So(decoded[0]["ci_upper"], ShouldBeNil)
				So(decoded[0]["posterior_mean"], ShouldNotBeNil)
			})
		})

		Convey("When the record set is empty", func() {
			var buf bytes.Buffer
			So(s.EncodeJSON(&buf, nil), ShouldBeNil)

			var decoded []map[string]any
			So(json.Unmarshal(buf.Bytes(), &decoded), ShouldBeNil)
			So(decoded, ShouldBeEmpty)
		})
	})
}

func TestSink_WriteParquet(t *testing.T) {
	Convey("Given a finished record set", t, func() {
		s := sink.New()
		ctx := context.Background()

		Convey("When writing the columnar form", func() {
			path := filepath.Join(t.TempDir(), "posterior.parquet")
			So(s.WriteParquet(ctx, path, sampleRecords()), ShouldBeNil)

			Convey("Then reading it back yields identical rows", func() {
				rows, err := parquet.ReadFile[model.PosteriorRecord](path)
				So(err, ShouldBeNil)
				So(rows, ShouldResemble, sampleRecords())
			})
		})

		Convey("When the output directory does not exist", func() {
			err := s.WriteParquet(ctx, "/nonexistent/out.parquet", sampleRecords())
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSink_WriteJSON(t *testing.T) {
	Convey("Given a finished record set", t, func() {
		s := sink.New()
		path := filepath.Join(t.TempDir(), "posterior.json")

		Convey("When writing to disk", func() {
			So(s.WriteJSON(context.Background(), path, sampleRecords()), ShouldBeNil)

			b, err := os.ReadFile(path)
			So(err, ShouldBeNil)

			var rows []map[string]any
			So(json.Unmarshal(b, &rows), ShouldBeNil)
			So(rows, ShouldHaveLength, 2)
		})
	})
}

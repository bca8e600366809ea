package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/pkg/logger"
)

// nullFloat marshals non-finite values as an explicit JSON null instead of
// failing or emitting a non-standard token.
type nullFloat float64

func (n nullFloat) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// jsonRecord is the record-oriented interchange form: plain decimal
// numbers, explicit nulls for missing values, no library-specific scalar
// wrappers.
type jsonRecord struct {
	PlayerID      string    `json:"player_id"`
	PlayerName    string    `json:"player_name"`
	Position      string    `json:"position"`
	Zone          string    `json:"zone"`
	Attempts      int64     `json:"attempts"`
	Makes         int64     `json:"makes"`
	RawPct        nullFloat `json:"raw_fg_pct"`
	PriorPct      nullFloat `json:"prior_fg_pct"`
	PosteriorMean nullFloat `json:"posterior_mean"`
	CILower       nullFloat `json:"ci_lower"`
	CIUpper       nullFloat `json:"ci_upper"`
	CIWidth       nullFloat `json:"ci_width"`
	Shrinkage     nullFloat `json:"shrinkage"`
	PriorAlpha    nullFloat `json:"prior_alpha"`
	PriorBeta     nullFloat `json:"prior_beta"`
	PostAlpha     nullFloat `json:"posterior_alpha"`
	PostBeta      nullFloat `json:"posterior_beta"`
}

func toJSONRecord(r model.PosteriorRecord) jsonRecord {
	return jsonRecord{
		PlayerID:      r.PlayerID,
		PlayerName:    r.PlayerName,
		Position:      r.Position,
		Zone:          r.Zone,
		Attempts:      r.Attempts,
		Makes:         r.Makes,
		RawPct:        nullFloat(r.RawPct),
		PriorPct:      nullFloat(r.PriorPct),
		PosteriorMean: nullFloat(r.PosteriorMean),
		CILower:       nullFloat(r.CILower),
		CIUpper:       nullFloat(r.CIUpper),
		CIWidth:       nullFloat(r.CIWidth),
		Shrinkage:     nullFloat(r.Shrinkage),
		PriorAlpha:    nullFloat(r.PriorAlpha),
		PriorBeta:     nullFloat(r.PriorBeta),
		PostAlpha:     nullFloat(r.PostAlpha),
		PostBeta:      nullFloat(r.PostBeta),
	}
}

// WriteJSON writes records as an array of objects at path.
func (s *Sink) WriteJSON(ctx context.Context, path string, records []model.PosteriorRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create json output: %w", err)
	}
	defer f.Close()

	if err := s.EncodeJSON(f, records); err != nil {
		return err
	}

	s.log.Info(ctx, "wrote interchange output",
		logger.String("path", path),
		logger.Int("records", len(records)),
	)
	return nil
}

// EncodeJSON writes the interchange form to w.
func (s *Sink) EncodeJSON(w io.Writer, records []model.PosteriorRecord) error {
	out := make([]jsonRecord, len(records))
	for i, r := range records {
		out[i] = toJSONRecord(r)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode json records: %w", err)
	}
	return nil
}

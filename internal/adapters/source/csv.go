// Package source reads the flat outcome table handed over by the
// acquisition collaborator.
package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/pkg/logger"
	"github.com/okian/courtside/pkg/metrics"
)

// Required columns. player_name is optional.
const (
	colPlayerID   = "player_id"
	colPlayerName = "player_name"
	colPosition   = "position"
	colZone       = "zone"
	colMade       = "made"
)

// Report summarizes one ingest pass.
type Report struct {
	// Rows counts every data row seen, malformed or not.
	Rows int
	// Malformed counts rows skipped in tolerant mode.
	Malformed int
}

// Reader parses CSV outcome tables.
type Reader struct {
	strict bool
	log    logger.Logger
}

// Option applies a configuration option to the Reader.
type Option func(*Reader)

// WithStrict makes malformed rows fatal instead of skip-and-count.
func WithStrict(strict bool) Option {
	return func(r *Reader) {
		r.strict = strict
	}
}

// WithLogger sets a custom logger for the reader.
func WithLogger(log logger.Logger) Option {
	return func(r *Reader) {
		if log != nil {
			r.log = log
		}
	}
}

// NewReader creates a Reader with the given options.
func NewReader(opts ...Option) *Reader {
	r := &Reader{}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.Get().Named("source")
	}
	return r
}

// ReadFile reads outcomes from a CSV file at path.
func (r *Reader) ReadFile(ctx context.Context, path string) ([]model.Outcome, Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Report{}, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return r.Read(ctx, f)
}

// Read parses outcomes from CSV data. The first row must be a header
// containing player_id, position, zone and made columns; player_name is
// carried through when present. Position values that are empty map to
// Unknown rather than failing the row.
func (r *Reader) Read(ctx context.Context, src io.Reader) ([]model.Outcome, Report, error) {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1 // row width is validated against the header below

	header, err := cr.Read()
	if err != nil {
		return nil, Report{}, fmt.Errorf("read header: %w", err)
	}
	cols, err := indexColumns(header)
	if err != nil {
		return nil, Report{}, err
	}

	var rep Report
	var outcomes []model.Outcome
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, Report{}, fmt.Errorf("read row: %w", err)
		}

		rep.Rows++
		o, rowErr := cols.parse(row)
		if rowErr != nil {
			if r.strict {
				return nil, Report{}, fmt.Errorf("row %d: %w", rep.Rows, rowErr)
			}
			rep.Malformed++
			metrics.RecordRowMalformed()
			r.log.Debug(ctx, "skipping malformed row",
				logger.Int("row", rep.Rows),
				logger.Error(rowErr),
			)
			continue
		}
		outcomes = append(outcomes, o)
	}

	metrics.RecordRowsIngested(rep.Rows)
	r.log.Info(ctx, "ingested outcomes",
		logger.Int("rows", rep.Rows),
		logger.Int("malformed", rep.Malformed),
	)
	return outcomes, rep, nil
}

type columnIndex struct {
	playerID   int
	playerName int // -1 when absent
	position   int
	zone       int
	made       int
	width      int
}

func indexColumns(header []string) (columnIndex, error) {
	idx := columnIndex{playerID: -1, playerName: -1, position: -1, zone: -1, made: -1, width: len(header)}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case colPlayerID:
			idx.playerID = i
		case colPlayerName:
			idx.playerName = i
		case colPosition:
			idx.position = i
		case colZone:
			idx.zone = i
		case colMade:
			idx.made = i
		}
	}
	for _, req := range []struct {
		name string
		pos  int
	}{
		{colPlayerID, idx.playerID},
		{colPosition, idx.position},
		{colZone, idx.zone},
		{colMade, idx.made},
	} {
		if req.pos < 0 {
			return columnIndex{}, fmt.Errorf("%w: %s", ErrMissingHeader, req.name)
		}
	}
	return idx, nil
}

func (c columnIndex) parse(row []string) (model.Outcome, error) {
	if len(row) != c.width {
		return model.Outcome{}, fmt.Errorf("%w: expected %d fields, got %d", ErrMalformedRecord, c.width, len(row))
	}

	o := model.Outcome{
		PlayerID: strings.TrimSpace(row[c.playerID]),
		Position: strings.TrimSpace(row[c.position]),
		Zone:     strings.TrimSpace(row[c.zone]),
	}
	if c.playerName >= 0 {
		o.PlayerName = strings.TrimSpace(row[c.playerName])
	}
	if o.Position == "" {
		o.Position = model.UnknownPosition
	}
	if o.PlayerID == "" {
		return model.Outcome{}, fmt.Errorf("%w: empty player_id", ErrMalformedRecord)
	}
	if o.Zone == "" {
		return model.Outcome{}, fmt.Errorf("%w: empty zone", ErrMalformedRecord)
	}

	made, err := strconv.ParseBool(strings.TrimSpace(row[c.made]))
	if err != nil {
		return model.Outcome{}, fmt.Errorf("%w: made flag %q is not boolean", ErrMalformedRecord, row[c.made])
	}
	o.Made = made
	return o, nil
}

package sink

import (
	"context"
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/pkg/logger"
)

// WriteParquet writes records as a columnar parquet file at path. Column
// names follow the parquet tags on model.PosteriorRecord.
func (s *Sink) WriteParquet(ctx context.Context, path string, records []model.PosteriorRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create parquet output: %w", err)
	}
	defer f.Close()

	w := parquet.NewGenericWriter[model.PosteriorRecord](f)
	if _, err := w.Write(records); err != nil {
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}

	s.log.Info(ctx, "wrote columnar output",
		logger.String("path", path),
		logger.Int("records", len(records)),
	)
	return nil
}

// Package sink writes finished posterior records for the presentation
// collaborator: a columnar parquet file for scan-efficient access and a
// record-oriented JSON form for web consumption.
package sink

import (
	"github.com/okian/courtside/pkg/logger"
)

// Sink writes posterior record sets to disk.
type Sink struct {
	log logger.Logger
}

// Option applies a configuration option to the Sink.
type Option func(*Sink)

// WithLogger sets a custom logger for the sink.
func WithLogger(log logger.Logger) Option {
	return func(s *Sink) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates a Sink with the given options.
func New(opts ...Option) *Sink {
	s := &Sink{}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get().Named("sink")
	}
	return s
}

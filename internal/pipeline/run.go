package pipeline

import (
	"errors"
	"fmt"
	"io"

	"github.com/noamteyssier/pipspeak/internal/fastq"
	"github.com/shenwei356/bio/seqio/fastx"
)

// PairSource yields read pairs until io.EOF.
type PairSource interface {
	Next() (fastq.Pair, error)
}

// RecordSink accepts output records.
type RecordSink interface {
	Write(*fastx.Record) error
}

// Run pulls every pair from src through p, one at a time, writing accepted
// pairs to r1 and r2. progress, if set, is called once per pair.
func Run(src PairSource, r1, r2 RecordSink, p *Pipeline, stats *Stats, progress func()) error {
	for {
		pair, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading pair %d: %w", stats.Total+1, err)
		}

		out, ok, err := p.Process(pair, stats)
		if err != nil {
			return fmt.Errorf("pair %d (%s): %w", stats.Total, pair.R1.ID, err)
		}
		if ok {
			if err := r1.Write(out.R1); err != nil {
				return fmt.Errorf("writing R1: %w", err)
			}
			if err := r2.Write(out.R2); err != nil {
				return fmt.Errorf("writing R2: %w", err)
			}
		}
		if progress != nil {
			progress()
		}
	}
}

// Package fastq reads and writes the paired records pipspeak processes.
package fastq

import (
	"errors"
	"fmt"

	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
)

// ErrNotFastq is returned for a record without qualities.
var ErrNotFastq = errors.New("record has no qualities (FASTA input is not supported)")

// Pair is one read pair, R1 carrying the barcode.
type Pair struct {
	R1, R2 *fastx.Record
}

// PairReader reads two FASTQ files in lock-step.
type PairReader struct {
	r1, r2 *fastx.Reader
}

// OpenPair opens both read files. Either may be gzip compressed.
func OpenPair(r1, r2 string) (*PairReader, error) {
	fq1, err := fastx.NewDefaultReader(r1)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", r1, err)
	}
	fq2, err := fastx.NewDefaultReader(r2)
	if err != nil {
		fq1.Close()
		return nil, fmt.Errorf("opening %s: %w", r2, err)
	}
	return &PairReader{r1: fq1, r2: fq2}, nil
}

// Next returns the next pair, or io.EOF once either file is exhausted.
// The records are copies and stay valid after the following call.
func (pr *PairReader) Next() (Pair, error) {
	rec1, err := pr.r1.Read()
	if err != nil {
		return Pair{}, err
	}
	rec2, err := pr.r2.Read()
	if err != nil {
		return Pair{}, err
	}
	for _, rec := range []*fastx.Record{rec1, rec2} {
		if len(rec.Seq.Qual) == 0 && len(rec.Seq.Seq) > 0 {
			return Pair{}, fmt.Errorf("%s: %w", rec.ID, ErrNotFastq)
		}
	}
	return Pair{R1: rec1.Clone(), R2: rec2.Clone()}, nil
}

func (pr *PairReader) Close() {
	pr.r1.Close()
	pr.r2.Close()
}

// NewRecord builds an output record. An empty qual yields a FASTA record.
func NewRecord(id, name, s, qual []byte) *fastx.Record {
	return &fastx.Record{
		ID:   id,
		Name: name,
		Seq: &seq.Seq{
			Alphabet: seq.Unlimit,
			Seq:      s,
			Qual:     qual,
		},
	}
}

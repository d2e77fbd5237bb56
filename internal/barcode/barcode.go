// Package barcode holds the reference sets of a combinatorial barcode design
// and matches read sequences against them, tolerating a single substitution.
package barcode

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/shenwei356/xopen"
	log "github.com/sirupsen/logrus"
)

var (
	ErrLengthVariance  = errors.New("barcodes have different lengths")
	ErrEmptySet        = errors.New("barcode set is empty")
	ErrIndexOutOfRange = errors.New("barcode index out of range")
)

// Spacer is a constant sequence appended to every barcode of a set.
type Spacer []byte

// Set is an ordered collection of canonical barcodes that all share one length.
type Set struct {
	seqs      [][]byte // canonical sequences, spacer included
	spacerLen int
	length    int
	lookup    Lookup
}

// New builds a set from in-memory sequences. The spacer, if any, is appended
// to every sequence before lengths are compared.
func New(seqs [][]byte, spacer Spacer, exact bool) (*Set, error) {
	if len(seqs) == 0 {
		return nil, ErrEmptySet
	}

	s := &Set{
		seqs:      make([][]byte, len(seqs)),
		spacerLen: len(spacer),
	}
	sizes := make(map[int]struct{})
	for i, bc := range seqs {
		full := make([]byte, 0, len(bc)+len(spacer))
		full = append(full, bc...)
		full = append(full, spacer...)
		s.seqs[i] = full
		sizes[len(full)] = struct{}{}
	}
	if len(sizes) != 1 {
		lengths := make([]int, 0, len(sizes))
		for l := range sizes {
			lengths = append(lengths, l)
		}
		sort.Ints(lengths)
		return nil, fmt.Errorf("%w: %v", ErrLengthVariance, lengths)
	}
	s.length = len(s.seqs[0])

	s.lookup = NewLookup(s.seqs, exact)
	log.Debugf("barcode set: %d sequences of length %d, %d lookup keys (exact=%v)",
		len(s.seqs), s.length, len(s.lookup), exact)
	return s, nil
}

// Read builds a set from newline-delimited sequences. Lines are trimmed and
// blank lines are skipped.
func Read(r io.Reader, spacer Spacer, exact bool) (*Set, error) {
	var seqs [][]byte
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		seqs = append(seqs, append([]byte(nil), line...))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return New(seqs, spacer, exact)
}

// Load reads a barcode file, plain or compressed.
func Load(filename string, spacer Spacer, exact bool) (*Set, error) {
	fh, err := xopen.Ropen(filename)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	s, err := Read(fh, spacer, exact)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return s, nil
}

// Index returns the canonical index a sequence resolves to.
func (s *Set) Index(seq []byte) (int, bool) {
	idx, ok := s.lookup[string(seq)]
	return idx, ok
}

// Sequence returns the canonical sequence at idx, with or without its spacer.
func (s *Set) Sequence(idx int, withSpacer bool) ([]byte, error) {
	if idx < 0 || idx >= len(s.seqs) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, idx, len(s.seqs))
	}
	if withSpacer {
		return s.seqs[idx], nil
	}
	return s.seqs[idx][:s.length-s.spacerLen], nil
}

// Len is the length of every sequence in the set, spacer included.
func (s *Set) Len() int { return s.length }

// Size is the number of canonical sequences.
func (s *Set) Size() int { return len(s.seqs) }

// SpacerLen is the length of the spacer appended to each sequence.
func (s *Set) SpacerLen() int { return s.spacerLen }

// LookupSize is the number of sequences the set will match.
func (s *Set) LookupSize() int { return len(s.lookup) }

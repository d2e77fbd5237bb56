// Package pipeline matches the four barcode segments of read 1 in sequence,
// extracts the UMI and rebuilds read 1 from the corrected barcodes.
//
// A read pair moves Start → stage 1 → stage 2 → stage 3 → stage 4 (accepted).
// A miss at any stage drops the pair and is counted against that stage;
// there is no backtracking.
package pipeline

import (
	"github.com/noamteyssier/pipspeak/internal/barcode"
	"github.com/noamteyssier/pipspeak/internal/fastq"
)

// NumStages is the number of barcode segments.
const NumStages = 4

// Options are the run parameters the pipeline consumes.
type Options struct {
	// Offset lets the first barcode start this many bases into read 1.
	Offset int
	UMILen int
	// IncludeSpacer keeps each set's spacer in the rebuilt sequence.
	IncludeSpacer bool
}

// state is what a read pair carries from one stage to the next.
type state struct {
	pair    fastq.Pair
	pos     int
	indices []int
}

// stage searches one barcode set starting where the previous stage ended.
type stage struct {
	set   *barcode.Set
	slack int
}

func (s stage) advance(st *state) bool {
	seq := st.pair.R1.Seq.Seq
	end, idx, ok := s.set.MatchWindow(seq, st.pos, st.pos+s.set.Len()+s.slack)
	if !ok {
		return false
	}
	st.pos += end
	st.indices = append(st.indices, idx)
	return true
}

type Pipeline struct {
	sets   [NumStages]*barcode.Set
	stages []stage
	opts   Options
}

// New chains the sets in order. Only the first stage gets the offset as slack.
func New(sets [NumStages]*barcode.Set, opts Options) *Pipeline {
	p := &Pipeline{sets: sets, opts: opts}
	for i, set := range sets {
		s := stage{set: set}
		if i == 0 {
			s.slack = opts.Offset
		}
		p.stages = append(p.stages, s)
	}
	return p
}

// Process runs one read pair through every stage and updates stats. On
// acceptance it returns the rebuilt pair and true. A stage miss returns
// false and a nil error. The only error is an index out of a set's range,
// which means the lookup and the set disagree.
func (p *Pipeline) Process(pair fastq.Pair, stats *Stats) (fastq.Pair, bool, error) {
	stats.Total++

	st := state{pair: pair, indices: make([]int, 0, len(p.stages))}
	for i, s := range p.stages {
		if !s.advance(&st) {
			stats.Filter(i + 1)
			return fastq.Pair{}, false, nil
		}
	}

	seq := pair.R1.Seq.Seq
	umiEnd := st.pos + p.opts.UMILen
	if umiEnd > len(seq) {
		stats.FilterShortUMI()
		return fastq.Pair{}, false, nil
	}

	construct, err := p.construct(st.indices, seq[st.pos:umiEnd])
	if err != nil {
		return fastq.Pair{}, false, err
	}

	// Quality follows the matched region; corrected bases have none of their own.
	var qual []byte
	if q := pair.R1.Seq.Qual; len(q) >= umiEnd {
		qual = q[umiEnd-len(construct) : umiEnd]
	}

	stats.Pass(construct)
	r1 := fastq.NewRecord(pair.R1.ID, pair.R1.Name, construct, qual)
	return fastq.Pair{R1: r1, R2: pair.R2}, true, nil
}

func (p *Pipeline) construct(indices []int, umi []byte) ([]byte, error) {
	n := len(umi)
	for _, set := range p.sets {
		n += set.Len()
	}
	out := make([]byte, 0, n)
	for i, idx := range indices {
		bc, err := p.sets[i].Sequence(idx, p.opts.IncludeSpacer)
		if err != nil {
			return nil, err
		}
		out = append(out, bc...)
	}
	return append(out, umi...), nil
}

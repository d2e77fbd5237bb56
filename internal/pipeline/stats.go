package pipeline

import (
	"fmt"
	"sort"
)

// Stats accumulates per-read outcomes over a run. It is not safe for
// concurrent use; parallel drivers keep one per worker and Merge them.
type Stats struct {
	Total    int
	Passing  int
	Filtered [NumStages]int
	// ShortUMI counts the reads in Filtered[NumStages-1] that matched every
	// barcode but ended before the UMI did.
	ShortUMI int

	whitelist map[string]struct{}
}

func NewStats() *Stats {
	return &Stats{whitelist: make(map[string]struct{})}
}

// Filter counts a read dropped at stage (1-based).
func (s *Stats) Filter(stage int) {
	if stage < 1 || stage > NumStages {
		panic(fmt.Sprintf("pipeline: no stage %d", stage))
	}
	s.Filtered[stage-1]++
}

// FilterShortUMI counts a read that matched all barcodes but is too short
// to carry the UMI. It is filtered at the last stage.
func (s *Stats) FilterShortUMI() {
	s.Filter(NumStages)
	s.ShortUMI++
}

// Pass counts an accepted read and records its construct in the whitelist.
func (s *Stats) Pass(construct []byte) {
	s.Passing++
	s.whitelist[string(construct)] = struct{}{}
}

// FilteredTotal is the number of reads dropped at any stage.
func (s *Stats) FilteredTotal() int {
	n := 0
	for _, f := range s.Filtered {
		n += f
	}
	return n
}

// FractionPassing is 0 for an empty run.
func (s *Stats) FractionPassing() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Passing) / float64(s.Total)
}

func (s *Stats) WhitelistSize() int { return len(s.whitelist) }

// Whitelist returns the distinct constructs, sorted.
func (s *Stats) Whitelist() []string {
	out := make([]string, 0, len(s.whitelist))
	for c := range s.whitelist {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Merge adds the counters of o into s and unions the whitelists.
func (s *Stats) Merge(o *Stats) {
	s.Total += o.Total
	s.Passing += o.Passing
	for i := range s.Filtered {
		s.Filtered[i] += o.Filtered[i]
	}
	s.ShortUMI += o.ShortUMI
	for c := range o.whitelist {
		s.whitelist[c] = struct{}{}
	}
}

// Summary is the finalized form of Stats.
type Summary struct {
	TotalReads      int     `yaml:"total_reads"`
	PassingReads    int     `yaml:"passing_reads"`
	FractionPassing float64 `yaml:"fraction_passing"`
	NumFiltered1    int     `yaml:"num_filtered_1"`
	NumFiltered2    int     `yaml:"num_filtered_2"`
	NumFiltered3    int     `yaml:"num_filtered_3"`
	NumFiltered4    int     `yaml:"num_filtered_4"`
	NumShortUMI     int     `yaml:"num_short_umi"`
	WhitelistSize   int     `yaml:"whitelist_size"`
}

func (s *Stats) Finalize() Summary {
	return Summary{
		TotalReads:      s.Total,
		PassingReads:    s.Passing,
		FractionPassing: s.FractionPassing(),
		NumFiltered1:    s.Filtered[0],
		NumFiltered2:    s.Filtered[1],
		NumFiltered3:    s.Filtered[2],
		NumFiltered4:    s.Filtered[3],
		NumShortUMI:     s.ShortUMI,
		WhitelistSize:   s.WhitelistSize(),
	}
}

// Filtered returns the per-stage counts of a summary in stage order.
func (s Summary) Filtered() [NumStages]int {
	return [NumStages]int{s.NumFiltered1, s.NumFiltered2, s.NumFiltered3, s.NumFiltered4}
}

package barcode

var nucleotides = []byte{'A', 'C', 'G', 'T'}

// Lookup maps a fixed-length sequence to the index of its canonical barcode.
type Lookup map[string]int

// NewLookup maps every canonical sequence to its index. Unless exact, it
// also maps each single-substitution variant that only one canonical
// sequence can produce. Variants shared by two or more canonicals, and
// variants that are canonical themselves, are left out.
//
// A sequence listed more than once resolves to its first index.
func NewLookup(canonical [][]byte, exact bool) Lookup {
	lookup := make(Lookup, len(canonical))
	for i, bc := range canonical {
		if _, seen := lookup[string(bc)]; !seen {
			lookup[string(bc)] = i
		}
	}
	if exact {
		return lookup
	}

	variants := make(map[string]int)
	var conflicts []string
	for i, bc := range canonical {
		if lookup[string(bc)] != i {
			continue
		}
		for _, v := range Mismatches(string(bc)) {
			if _, conflict := variants[v]; conflict {
				conflicts = append(conflicts, v)
			}
			variants[v] = i
		}
	}
	for _, conflict := range conflicts {
		delete(variants, conflict)
	}
	for v, i := range variants {
		if _, isCanonical := lookup[v]; isCanonical {
			continue
		}
		lookup[v] = i
	}
	return lookup
}

// Mismatches returns every sequence exactly one substitution away from input.
func Mismatches(input string) []string {
	out := make([]string, 0, len(input)*(len(nucleotides)-1))
	buf := []byte(input)
	for i, c := range buf {
		for _, replacement := range nucleotides {
			if replacement == c {
				continue
			}
			buf[i] = replacement
			out = append(out, string(buf))
		}
		buf[i] = c
	}
	return out
}

package barcode

// MatchWindow searches seq[start:end] for the leftmost window of Len() bytes
// present in the lookup. matchEnd is the position just past the match, relative
// to start. Bounds outside seq, or a region shorter than Len(), never match.
func (s *Set) MatchWindow(seq []byte, start, end int) (matchEnd, idx int, ok bool) {
	if start < 0 || start > len(seq) || end > len(seq) || start > end || end-start < s.length {
		return 0, 0, false
	}
	region := seq[start:end]
	for p := 0; p+s.length <= len(region); p++ {
		if idx, found := s.lookup[string(region[p:p+s.length])]; found {
			return p + s.length, idx, true
		}
	}
	return 0, 0, false
}

// Match searches the whole of seq.
func (s *Set) Match(seq []byte) (matchEnd, idx int, ok bool) {
	return s.MatchWindow(seq, 0, len(seq))
}

package alg

// candidateSorter ranks candidates by fitness ascending, breaking ties
// by earliest-discovered index so leader selection is deterministic.
type candidateSorter struct {
	cands []*Candidate
}

func (s *candidateSorter) Len() int {
	return len(s.cands)
}

func (s *candidateSorter) Swap(i, j int) {
	s.cands[i], s.cands[j] = s.cands[j], s.cands[i]
}

func (s *candidateSorter) Less(i, j int) bool {
	if s.cands[i].fitness != s.cands[j].fitness {
		return s.cands[i].fitness < s.cands[j].fitness
	}

	return s.cands[i].index < s.cands[j].index
}

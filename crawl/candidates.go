package crawl

import "github.com/fwojciec/coursegrab"

// candidateSet is a course's direct-download candidates keyed by canonical
// URL, kept in discovery order.
type candidateSet struct {
	index map[string]int
	links []coursegrab.CandidateLink
}

func newCandidateSet() *candidateSet {
	return &candidateSet{index: make(map[string]int)}
}

// add merges link into the set and reports whether it was new. The first
// link seen for a URL wins, except that a name carried from an intermediate
// page replaces a weaker name already stored. The entry keeps its position.
func (s *candidateSet) add(link coursegrab.CandidateLink) bool {
	i, ok := s.index[link.CanonicalURL]
	if !ok {
		s.index[link.CanonicalURL] = len(s.links)
		s.links = append(s.links, link)
		return true
	}

	existing := &s.links[i]
	if link.HintSource == coursegrab.SourceIntermediateHint && existing.HintSource < coursegrab.SourceIntermediateHint {
		existing.FilenameHint = link.FilenameHint
		existing.HintSource = link.HintSource
		if existing.ContentTypeHint == "" {
			existing.ContentTypeHint = link.ContentTypeHint
		}
	}
	return false
}

func (s *candidateSet) len() int {
	return len(s.links)
}

// inheritHint names a file found behind an intermediate page after that
// page's label, unless the file already carries a stronger name.
func inheritHint(direct coursegrab.CandidateLink, parent coursegrab.CandidateLink) coursegrab.CandidateLink {
	if parent.FilenameHint == "" || direct.HintSource >= coursegrab.SourceIntermediateHint {
		return direct
	}
	direct.FilenameHint = coursegrab.ApplyFilenameHint(parent.FilenameHint, direct.FilenameHint)
	direct.HintSource = coursegrab.SourceIntermediateHint
	return direct
}

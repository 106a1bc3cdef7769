package coursegrab

// LinkKind classifies a candidate link.
type LinkKind int

// Candidate link kinds.
const (
	LinkDirect LinkKind = iota
	LinkIntermediate
)

// String returns a short name for logs.
func (k LinkKind) String() string {
	switch k {
	case LinkDirect:
		return "direct"
	case LinkIntermediate:
		return "intermediate"
	default:
		return "unknown"
	}
}

// CandidateLink is a classified hyperlink. For direct links FilenameHint is
// the fully resolved filename; for intermediate links it is an optional
// human-readable label carried forward to the file found behind the page.
type CandidateLink struct {
	RawURL          string
	CanonicalURL    string
	Kind            LinkKind
	FilenameHint    string
	HintSource      FilenameSource
	ContentTypeHint string
	Reason          string
}

// DroppedLink records an anchor the classifier discarded and why.
type DroppedLink struct {
	URL    string
	Reason string
}

// Reasons a link is dropped during classification.
const (
	DropNonHTTP       = "non-http scheme"
	DropNavigation    = "navigation section"
	DropChrome        = "chrome marker"
	DropIrrelevant    = "irrelevant"
	DropCrossOrigin   = "cross-origin intermediate"
	DropDuplicate     = "duplicate intermediate"
	DropMalformedLink = "malformed URL"
)

// Classification partitions a page's anchors into direct downloads,
// intermediate pages and dropped links. Every anchor lands in exactly one list.
type Classification struct {
	Direct       []CandidateLink
	Intermediate []CandidateLink
	Dropped      []DroppedLink
}

// Empty reports whether the page yielded no candidates at all.
func (c *Classification) Empty() bool {
	return len(c.Direct) == 0 && len(c.Intermediate) == 0
}

// Classifier sorts the anchors of a loaded page. Implementations are pure.
type Classifier interface {
	Classify(snapshot *PageSnapshot) Classification
}

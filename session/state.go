package session

import "github.com/raceingest/core/parser"

// Feed re-exports parser.Feed so callers of this package never need a
// second import just to pick which vendor session type to drive.
type Feed = parser.Feed

const (
	Central  = parser.Central
	Regional = parser.Regional
)

// State is one node of the session state machine (SPEC_FULL.md §4.5 /
// spec.md §4.5).
type State int

const (
	Uninitialised State = iota
	Initialised
	Opening
	Downloading
	Reading
	Closed
	Failed
	FailedRetryable
)

func (s State) String() string {
	switch s {
	case Uninitialised:
		return "uninitialised"
	case Initialised:
		return "initialised"
	case Opening:
		return "opening"
	case Downloading:
		return "downloading"
	case Reading:
		return "reading"
	case Closed:
		return "closed"
	case Failed:
		return "failed"
	case FailedRetryable:
		return "failed_retryable"
	default:
		return "unknown"
	}
}

// SkipFiles is the set of filenames already successfully delivered in
// a prior attempt at the same session parameters. It is carried
// forward by value across session re-opens and child-process
// boundaries, per spec.md §5's ownership rule ("mutated only by the
// session manager during read").
type SkipFiles map[string]struct{}

// NewSkipFiles builds a SkipFiles set from zero or more filenames.
func NewSkipFiles(names ...string) SkipFiles {
	s := make(SkipFiles, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Clone returns an independent copy, so a parent can hand a snapshot
// to a child process without aliasing its own set.
func (s SkipFiles) Clone() SkipFiles {
	out := make(SkipFiles, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

func (s SkipFiles) Add(name string)          { s[name] = struct{}{} }
func (s SkipFiles) Contains(name string) bool { _, ok := s[name]; return ok }

// Names returns the set's members as a sorted-free slice, for
// serialising into a ChildResult.
func (s SkipFiles) Names() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	return out
}

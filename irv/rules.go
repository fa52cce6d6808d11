// Package irv implements single-contest Instant-Runoff Voting: the
// round-by-round tabulation engine and the elimination-set selector
// that drives it, under either single-candidate or San Francisco batch
// elimination rules.
package irv

import (
	"sort"

	"github.com/rcvlab/irvmargin/ballot"
)

// Rules selects which elimination policy a round engine uses.
type Rules int

const (
	// BaseIRV eliminates the single candidate with fewest top-choice
	// votes each round, and stops as soon as a candidate has a strict
	// majority or only two candidates remain.
	BaseIRV Rules = iota
	// SFRCV eliminates a batch of candidates per round, following San
	// Francisco's Charter art. XIII s. 13.102(e): the largest set of
	// lowest-polling candidates whose combined total is less than the
	// next-lowest continuing candidate's total.
	SFRCV
	// CompleteIRV behaves like BaseIRV but disables the majority
	// shortcut: it always keeps eliminating down to two candidates.
	// Used to build elimination orderings with no early stop, so every
	// candidate's position in the order is determined.
	CompleteIRV
)

// Candidate re-exports ballot.Candidate so callers of this package
// rarely need to import ballot directly for IDs.
type Candidate = ballot.Candidate

// Set is an elimination set: the candidates removed in a single round.
type Set map[Candidate]struct{}

// NewSet builds a Set from the given candidates.
func NewSet(cs ...Candidate) Set {
	s := make(Set, len(cs))
	for _, c := range cs {
		s[c] = struct{}{}
	}
	return s
}

// Sorted returns the set's members in ascending order, for
// deterministic iteration and display.
func (s Set) Sorted() []Candidate {
	out := make([]Candidate, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Contains reports whether c is a member of s.
func (s Set) Contains(c Candidate) bool {
	_, ok := s[c]
	return ok
}

// DiagnosticKind classifies a Diagnostic event.
type DiagnosticKind int

// TieFallback is emitted when the San Francisco rule finds no prefix of
// lowest-polling candidates whose total is below the next group's (as
// when every continuing candidate is tied) and falls back to
// eliminating the single lowest candidate, the lowest-numbered member
// of the lowest-polling group.
const TieFallback DiagnosticKind = iota

// Diagnostic is a structured event surfaced instead of printing,
// matching spec Open Question 2: whether and how to surface the SF
// tie-fallback warning is left to the caller.
type Diagnostic struct {
	Kind       DiagnosticKind
	Candidates []Candidate
}

// Package election defines the immutable record that bundles a ballot
// profile with the metadata needed to interpret it: candidate names,
// the maximum number of ranks a voter could mark, the number of seats
// (always 1 for this single-winner core), and a free-form description.
package election

import (
	"errors"
	"fmt"

	"github.com/rcvlab/irvmargin/ballot"
)

// Version is bumped whenever a change to Election would break
// serialized caches built against an older layout. Callers that cache
// an Election (see package blt) must discard a cached copy whose
// Version does not match the current Version.
const Version = 1

// ErrCandidateMismatch is returned by New when the candidate names and
// the ballot profile's top-level children do not name the same set of
// candidates.
var ErrCandidateMismatch = errors.New("election: names and profile disagree on the candidate set")

// Election holds everything needed to run IRV or compute a margin for
// one contest. It is immutable after construction: algorithms that
// need to mutate the profile operate on ballot.Node.DeepCopy().
type Election struct {
	// Names maps each candidate 1..K to its display name.
	Names map[ballot.Candidate]string
	// Profile is the root of the ballot trie.
	Profile *ballot.Node
	// Ranks is the maximum number of candidates a voter was allowed to
	// mark on a single ballot.
	Ranks uint32
	// Seats is the number of winners to elect; always 1 in this core.
	Seats uint32
	// Description is a free-form label for the contest.
	Description string
	// SchemaVersion records the Version this Election was built
	// against, checked by package blt's cache against the current
	// Version before trusting a cached copy.
	SchemaVersion int
}

// New validates and constructs an Election. It returns
// ErrCandidateMismatch if the keys of names and the children of
// profile's root are not the same set.
func New(names map[ballot.Candidate]string, profile *ballot.Node, ranks, seats uint32, description string) (*Election, error) {
	children := profile.Children()
	if len(children) != len(names) {
		return nil, fmt.Errorf("election: %d names vs %d profile children: %w", len(names), len(children), ErrCandidateMismatch)
	}
	for _, c := range children {
		if _, ok := names[c]; !ok {
			return nil, fmt.Errorf("election: candidate %d has a profile entry but no name: %w", c, ErrCandidateMismatch)
		}
	}

	return &Election{
		Names:         names,
		Profile:       profile,
		Ranks:         ranks,
		Seats:         seats,
		Description:   description,
		SchemaVersion: Version,
	}, nil
}

// NumCandidates returns K, the number of candidates in the contest.
func (e *Election) NumCandidates() int {
	return len(e.Names)
}

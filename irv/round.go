package irv

import (
	"errors"

	"github.com/rcvlab/irvmargin/ballot"
	"github.com/rcvlab/irvmargin/election"
)

// ErrNoCandidates is returned when Round or Run is asked to tabulate a
// profile with no candidates at all.
var ErrNoCandidates = errors.New("irv: profile has no candidates")

// RoundOptions configures a single Round/Run invocation.
type RoundOptions struct {
	// Diagnostics, if non-nil, receives structured events (currently
	// only TieFallback) instead of them being silently dropped. Sends
	// are best-effort: a full or nil channel simply means the
	// diagnostic is not observed.
	Diagnostics chan<- Diagnostic
	// MaxRounds, if non-zero, overrides the maxRounds argument passed
	// to Round — the lower of the two still bounds the tabulation.
	MaxRounds int
}

// RoundResult is the outcome of tabulating up to some number of rounds.
type RoundResult struct {
	// Winner is the declared winner, valid once a termination
	// condition (majority or two-candidates-remain) has been reached.
	Winner Candidate
	// Counts maps each original candidate to its top-choice vote total
	// in each executed round (truncated to the rounds actually run).
	Counts map[Candidate][]uint64
	// Elimination holds the elimination set used in each round; the
	// final entry is "all remaining candidates except the winner",
	// even when no explicit elimination took place that round.
	Elimination []Set
	// Reduced is the ballot profile after the executed rounds.
	Reduced *ballot.Node
}

// Round performs at most maxRounds rounds of IRV under rules, starting
// from a deep copy of profile. It mutates nothing the caller can see.
func Round(profile *ballot.Node, maxRounds int, rules Rules, opts *RoundOptions) (*RoundResult, error) {
	candidates := profile.Children()
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	root := profile.DeepCopy()
	eliminated := make(map[Candidate]struct{}, len(candidates))
	counts := make(map[Candidate][]uint64, len(candidates))
	for _, c := range candidates {
		counts[c] = make([]uint64, maxRounds)
	}
	var diag chan<- Diagnostic
	if opts != nil {
		diag = opts.Diagnostics
		if opts.MaxRounds != 0 && opts.MaxRounds < maxRounds {
			maxRounds = opts.MaxRounds
		}
	}

	var winner Candidate
	var elimination []Set
	r := 0
	for r < maxRounds {
		r++
		var numVotes uint64
		var highCandidate Candidate
		var highVotes uint64
		for _, c := range root.Children() {
			v, _ := root.ChildValue(c)
			counts[c][r-1] = v
			numVotes += v
			if v > highVotes {
				highCandidate, highVotes = c, v
			}
		}

		if (rules != CompleteIRV && highVotes*2 > numVotes) || root.NumChildren() <= 2 {
			winner = highCandidate
			finalElim := NewSet()
			for _, c := range candidates {
				if _, done := eliminated[c]; !done && c != winner {
					finalElim[c] = struct{}{}
				}
			}
			elimination = append(elimination, finalElim)
			break
		}

		lowest := eliminationSet(root, rules, nil, diag)
		for _, c := range lowest.Sorted() {
			root.Eliminate(c)
			eliminated[c] = struct{}{}
		}
		elimination = append(elimination, lowest)
	}

	for _, c := range candidates {
		counts[c] = counts[c][:r]
	}

	return &RoundResult{Winner: winner, Counts: counts, Elimination: elimination, Reduced: root}, nil
}

// Run performs a full IRV tabulation (up to one round per candidate) on
// e's profile under rules.
func Run(e *election.Election, rules Rules) (*RoundResult, error) {
	return Round(e.Profile, e.Profile.NumChildren(), rules, nil)
}

package irv

import (
	"sort"

	"github.com/rcvlab/irvmargin/ballot"
)

// eliminationSet returns the elimination set for root under rules,
// optionally appending every valid San Francisco batch set (as a copy)
// to allSets when non-nil and rules == SFRCV. diag receives a
// TieFallback Diagnostic if the SF rule cannot eliminate any prefix and
// falls back to a single candidate.
func eliminationSet(root *ballot.Node, rules Rules, allSets *[]Set, diag chan<- Diagnostic) Set {
	switch rules {
	case BaseIRV, CompleteIRV:
		return singleLowest(root)
	case SFRCV:
		return sfBatch(root, allSets, diag)
	default:
		panic("irv: unknown rules value")
	}
}

// singleLowest returns the candidate with the fewest top-choice votes,
// ties broken by the first encountered in ascending-candidate order.
func singleLowest(root *ballot.Node) Set {
	var low ballot.Candidate
	var lowVotes uint64
	first := true
	for _, c := range root.Children() {
		v, _ := root.ChildValue(c)
		if first || v < lowVotes {
			low, lowVotes = c, v
			first = false
		}
	}
	return NewSet(low)
}

// sfBatch implements the San Francisco batch elimination rule: sort
// continuing candidates by top-choice votes, group by tied totals, and
// walk the groups left to right, extending the eliminable prefix while
// its running total stays below the next group's total.
func sfBatch(root *ballot.Node, allSets *[]Set, diag chan<- Diagnostic) Set {
	candidates := root.Children()
	sort.Slice(candidates, func(i, j int) bool {
		vi, _ := root.ChildValue(candidates[i])
		vj, _ := root.ChildValue(candidates[j])
		if vi != vj {
			return vi < vj
		}
		return candidates[i] < candidates[j]
	})

	type group struct {
		votes uint64
		size  int
	}
	var groups []group
	for gi := 0; gi < len(candidates); {
		v, _ := root.ChildValue(candidates[gi])
		size := 1
		for gi+size < len(candidates) {
			v2, _ := root.ChildValue(candidates[gi+size])
			if v2 != v {
				break
			}
			size++
		}
		groups = append(groups, group{votes: v, size: size})
		gi += size
	}

	var n uint64 // running sum of votes for candidates[:j]
	i := 0       // candidates[:i] are definitely eliminable
	j := 0
	for _, g := range groups {
		if n < g.votes {
			i = j
			if i > 0 && allSets != nil {
				*allSets = append(*allSets, NewSet(candidates[:i]...))
			}
		}
		n += g.votes * uint64(g.size)
		j += g.size
	}

	if i == 0 {
		if diag != nil {
			select {
			case diag <- Diagnostic{Kind: TieFallback, Candidates: append([]Candidate(nil), candidates...)}:
			default:
			}
		}
		return NewSet(candidates[0])
	}
	return NewSet(candidates[:i]...)
}

// Select returns the elimination set root's candidates would suffer
// under rules, without collecting every alternative San Francisco
// batch (see AllSFSets for that).
func Select(root *ballot.Node, rules Rules) Set {
	return eliminationSet(root, rules, nil, nil)
}

// AllSFSets returns every valid San Francisco batch elimination set for
// root: the largest prefix (by ascending vote count) whose total is
// strictly less than the next candidate's total, for every group
// boundary where that holds. Used by the best-first lower bound and the
// exact margin search's preprocessing prune, both of which need to
// consider alternatives to the single maximal set that Round would
// pick.
func AllSFSets(root *ballot.Node) []Set {
	var sets []Set
	sfBatch(root, &sets, nil)
	return sets
}

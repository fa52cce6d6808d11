// Package bounds implements the margin lower and upper bound estimators:
// a cheap greedy lower bound, a best-first lower bound that explores
// alternative batch eliminations, and a constructive upper bound that
// exhibits a feasible ballot-alteration witness for each losing
// candidate.
package bounds

import (
	"github.com/rcvlab/irvmargin/ballot"
	"github.com/rcvlab/irvmargin/irv"
)

// continuing returns the members of all that are not in elim.
func continuing(all []irv.Candidate, elim irv.Set) []irv.Candidate {
	out := make([]irv.Candidate, 0, len(all))
	for _, c := range all {
		if !elim.Contains(c) {
			out = append(out, c)
		}
	}
	return out
}

// RoundMargin computes min_{c not in elim} value(c) - sum_{c in elim} value(c)
// over root's direct children, which is the per-round margin a single
// batch elimination would need to overturn.
func RoundMargin(root *ballot.Node, elim irv.Set) uint64 {
	all := root.Children()
	var sum uint64
	for c := range elim {
		v, _ := root.ChildValue(c)
		sum += v
	}
	var min uint64
	first := true
	for _, c := range continuing(all, elim) {
		v, _ := root.ChildValue(c)
		if first || v < min {
			min = v
			first = false
		}
	}
	if min < sum {
		// Should not happen for a validly-constructed elimination set;
		// the margin is defined as a difference of non-negative
		// quantities and callers (simple LB, best-first LB) only ever
		// pass sets for which min >= sum.
		return 0
	}
	return min - sum
}

package bounds

import (
	"math"

	"github.com/rcvlab/irvmargin/ballot"
	"github.com/rcvlab/irvmargin/election"
	"github.com/rcvlab/irvmargin/irv"
)

// UB computes a constructive IRV margin upper bound: for every losing
// candidate j, it builds a feasible ballot-alteration witness that
// makes j win instead, and returns twice the cheapest such witness's
// cost (the factor of two converts the one-sided ballot cost into the
// bidirectional margin accounting this system uses throughout).
//
// winner and elimOrder are the already-known IRV winner and round-by-
// round elimination sequence for e, or (0, nil) to have UB compute them
// itself via irv.Run(e, rules) — mirroring irv_ub's own winner/elim_order
// optional parameters in the reference implementation, which irv_margin
// supplies explicitly to skip irv_ub's internal recomputation.
func UB(e *election.Election, rules irv.Rules, winner irv.Candidate, elimOrder []irv.Set) (uint64, error) {
	if winner == 0 || elimOrder == nil {
		run, err := irv.Run(e, rules)
		if err != nil {
			return 0, err
		}
		winner = run.Winner
		elimOrder = run.Elimination
	}
	candidates := e.Profile.Children()

	var best uint64
	haveBest := false
	for _, j := range candidates {
		if j == winner {
			continue
		}
		errJ, err := costToElect(e.Profile, rules, winner, elimOrder, j)
		if err != nil {
			return 0, err
		}
		if !haveBest || errJ < best {
			best = errJ
			haveBest = true
		}
	}
	return 2 * best, nil
}

// costToElect returns the number of ballots modifyMargin needs to move
// before candidate j, rather than winner, wins the contest.
func costToElect(profile *ballot.Node, rules irv.Rules, winner irv.Candidate, elimOrder []irv.Set, j irv.Candidate) (uint64, error) {
	root := profile.DeepCopy()
	w := winner
	modElim := elimOrder
	var total uint64

	for w == winner {
		l := 0
		for !modElim[l].Contains(j) {
			l++
		}
		if l > 0 {
			rr, err := irv.Round(root, l, rules, nil)
			if err != nil {
				return 0, err
			}
			root = rr.Reduced
		}

		votesJ, _ := root.ChildValue(j)
		rest := continuing(root.Children(), modElim[l])
		var k irv.Candidate
		diff := int64(math.MaxInt64)
		for _, c := range rest {
			v, _ := root.ChildValue(c)
			d := int64(v) - int64(votesJ)
			if d < diff {
				k = c
				diff = d
			}
		}

		var s uint64
		for _, c := range modElim[l].Sorted() {
			v, _ := root.ChildValue(c)
			s += v
		}
		kv, _ := root.ChildValue(k)
		m := int64(kv) - int64(s)
		if s > votesJ {
			m--
		}
		if m < 0 {
			panic("bounds: modifyMargin precondition violated: negative round margin")
		}

		total += modifyMargin(root, m, j, k, modElim[l:], w)

		rr, err := irv.Round(root, root.NumChildren(), rules, nil)
		if err != nil {
			return 0, err
		}
		w = rr.Winner
		modElim = rr.Elimination
		root = rr.Reduced
	}
	return total, nil
}

// modifyMargin shifts strictly more than m net votes toward j from k's
// supporters within root.GetChild(k), returning the number of ballots
// moved. elimOrderSuffix is the tail of the elimination order starting
// at the round in which j was eliminated; w is the current winner.
//
// The walk order mirrors the reference implementation's
// steal_from_order: candidates eliminated in later rounds first, then
// the winner, then this round's other losers, then j itself, with k
// removed. At each node it recurses into children in that order before
// taking ballots from its own terminating count.
func modifyMargin(root *ballot.Node, m int64, j, k irv.Candidate, elimOrderSuffix []irv.Set, w irv.Candidate) uint64 {
	if !elimOrderSuffix[0].Contains(j) {
		panic("bounds: modifyMargin: j is not among this round's losers")
	}
	if m < 0 {
		panic("bounds: modifyMargin: m must be non-negative")
	}

	var order []irv.Candidate
	for _, es := range elimOrderSuffix[1:] {
		order = append(order, es.Sorted()...)
	}
	order = append(order, w)
	for _, c := range elimOrderSuffix[0].Sorted() {
		if c != j {
			order = append(order, c)
		}
	}
	order = append(order, j)
	order = removeFirst(order, k)

	changed, _ := stealVotes(root, root.GetChild(k), j, order, m)
	return changed
}

// stealVotes recurses into node's children (in order), then — if m is
// still non-negative — takes ballots from node's own terminating count
// and reassigns them to root's first-choice j. It returns the number
// of ballots moved and the remaining (possibly negative) margin m.
func stealVotes(root, node *ballot.Node, j irv.Candidate, order []irv.Candidate, m int64) (uint64, int64) {
	var changed uint64
	for _, c := range order {
		if !node.HasChild(c) {
			continue
		}
		child := node.GetChild(c)
		var subtotal uint64
		subtotal, m = stealVotes(root, child, j, order, m)
		changed += subtotal
		node.Value -= subtotal
		if child.Value == 0 {
			_ = node.DeleteChild(c)
		}
		if m < 0 {
			return changed, m
		}
	}

	if node.Value > 0 {
		x := node.Value
		if cap := uint64(m/2) + 1; cap < x {
			x = cap
		}
		node.Value -= x
		root.GetChild(j).Value += x
		m -= 2 * int64(x)
		changed += x
	}
	return changed, m
}

func removeFirst(cs []irv.Candidate, target irv.Candidate) []irv.Candidate {
	for i, c := range cs {
		if c == target {
			return append(cs[:i:i], cs[i+1:]...)
		}
	}
	return cs
}

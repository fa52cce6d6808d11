// Package margin computes the exact IRV margin of victory: the
// smallest number of ballot alterations that would change the winner,
// found by a best-first search over candidate elimination orders, each
// scored by an ILP call (package ilp) that computes the exact cost of
// realizing that order.
package margin

import (
	"container/heap"
	"context"
	"time"

	"github.com/rcvlab/irvmargin/bounds"
	"github.com/rcvlab/irvmargin/election"
	"github.com/rcvlab/irvmargin/ilp"
	"github.com/rcvlab/irvmargin/irv"
)

// MarginOptions configures a Margin search. Every field is optional:
// a zero value is replaced with a computed default, mirroring
// irv_margin's optional parameters in the reference implementation
// this module is modeled on.
type MarginOptions struct {
	// Winner is the known IRV winner, or 0 to compute it.
	Winner irv.Candidate
	// ElimOrder is the known round-by-round elimination sequence (as
	// produced by irv.Run), or nil to compute it. Used only to build
	// the search's tertiary ordering heuristic, not passed to the ILP
	// directly.
	ElimOrder []irv.Set
	// UB is a known upper bound on the margin, or nil to compute one
	// via bounds.UB. Candidates that provably cannot be displaced for
	// fewer than UB ballots are pruned before the search begins.
	UB *uint64
	// Timeout bounds the wall-clock time spent searching. Zero means no
	// deadline.
	Timeout time.Duration
}

// Searcher runs exact margin searches, reusing a single Solver across
// calls the way the reference implementation reuses one process-wide
// solver handle (see package ilp's Solver interface).
type Searcher struct {
	// Solver solves each distance_to call's integer program. A nil
	// Solver defaults to ilp.BranchAndBoundSolver{}.
	Solver ilp.Solver
}

// NewSearcher builds a Searcher around solver. A nil solver defaults to
// ilp.BranchAndBoundSolver{}, the documented entry point for callers
// with no particular solver preference.
func NewSearcher(solver ilp.Solver) *Searcher {
	if solver == nil {
		solver = ilp.BranchAndBoundSolver{}
	}
	return &Searcher{Solver: solver}
}

// searchNode is one entry on the best-first search frontier. elim is
// built backward from the induced winner: elim[len(elim)-1] is the
// candidate the order makes win, and each expansion prepends a
// candidate eliminated before every current member, so elim is passed
// to ilp.DistanceTo as-is (elim[0] eliminated first).
type searchNode struct {
	d    int64
	s    int
	t    int
	elim []irv.Candidate
}

type frontier []*searchNode

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if f[i].d != f[j].d {
		return f[i].d < f[j].d
	}
	if f[i].s != f[j].s {
		return f[i].s < f[j].s
	}
	return f[i].t < f[j].t
}
func (f frontier) Swap(i, j int)        { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x interface{})  { *f = append(*f, x.(*searchNode)) }
func (f *frontier) Pop() interface{} {
	old := *f
	n := len(old)
	item := old[n-1]
	*f = old[:n-1]
	return item
}

// Margin computes the exact IRV margin for e. It returns -1 (not an
// error) if opts.Timeout elapses before the search concludes.
func (s *Searcher) Margin(e *election.Election, opts MarginOptions) (int64, error) {
	solver := s.Solver
	if solver == nil {
		solver = ilp.BranchAndBoundSolver{}
	}

	winner := opts.Winner
	elimOrder := opts.ElimOrder
	if winner == 0 || elimOrder == nil {
		res, err := irv.Run(e, irv.BaseIRV)
		if err != nil {
			return 0, err
		}
		winner = res.Winner
		elimOrder = res.Elimination
	}

	var ub uint64
	if opts.UB != nil {
		ub = *opts.UB
	} else {
		computed, err := bounds.UB(e, irv.SFRCV, winner, elimOrder)
		if err != nil {
			return 0, err
		}
		ub = computed
	}

	var deadline time.Time
	if opts.Timeout > 0 {
		deadline = time.Now().Add(opts.Timeout)
	}

	root := e.Profile.DeepCopy()
	for {
		sets := irv.AllSFSets(root)
		var maxSet irv.Set
		for _, es := range sets {
			if len(maxSet) != 0 && len(es) <= len(maxSet) {
				continue
			}
			if bounds.RoundMargin(root, es) > ub {
				maxSet = es
			}
		}
		if len(maxSet) == 0 {
			break
		}
		for _, c := range maxSet.Sorted() {
			root.Eliminate(c)
		}
	}

	candidates := root.Children()
	k := len(candidates)
	tertiary := buildTertiary(winner, elimOrder, k)

	fr := &frontier{}
	heap.Init(fr)
	for _, c := range candidates {
		if c == winner {
			continue
		}
		heap.Push(fr, &searchNode{d: 0, s: -1, t: 0, elim: []irv.Candidate{c}})
	}

	for {
		if fr.Len() == 0 {
			return 0, nil
		}
		node := heap.Pop(fr).(*searchNode)
		if len(node.elim) == k {
			return node.d, nil
		}

		ctx := context.Background()
		if !deadline.IsZero() {
			if time.Now().After(deadline) {
				return -1, nil
			}
			var cancel context.CancelFunc
			ctx, cancel = context.WithDeadline(ctx, deadline)
			defer cancel()
		}

		elimSet := irv.NewSet(node.elim...)
		prefixes := minus(candidates, elimSet)
		for _, c := range prefixes {
			reduced := root.DeepCopy()
			for _, other := range prefixes {
				if other != c {
					reduced.Eliminate(other)
				}
			}
			newElim := make([]irv.Candidate, 0, len(node.elim)+1)
			newElim = append(newElim, c)
			newElim = append(newElim, node.elim...)

			d, err := ilp.DistanceTo(ctx, solver, reduced, e.Ranks, newElim)
			if err != nil {
				return 0, err
			}
			if d == -1 {
				return -1, nil
			}
			if uint64(d) <= ub {
				heap.Push(fr, &searchNode{
					d:    d,
					s:    -len(newElim),
					t:    len(minus(newElim, tertiary[len(newElim)-1])),
					elim: newElim,
				})
			}
		}
	}
}

func minus(all []irv.Candidate, s irv.Set) []irv.Candidate {
	out := make([]irv.Candidate, 0, len(all))
	for _, c := range all {
		if !s.Contains(c) {
			out = append(out, c)
		}
	}
	return out
}

// buildTertiary grows a set of "known eliminated by this depth"
// candidates from the winner backward through elimOrder's rounds,
// stopping each growth as soon as the set exceeds the current depth —
// tertiary[i] is used to score a length-(i+1) search prefix by how
// much it disagrees with the observed elimination order.
func buildTertiary(winner irv.Candidate, elimOrder []irv.Set, k int) []irv.Set {
	elims := irv.NewSet(winner)
	j := len(elimOrder) - 1
	tertiary := make([]irv.Set, 0, k)
	for i := 1; i <= k; i++ {
		if i >= len(elims) && j >= 0 {
			for c := range elimOrder[j] {
				elims[c] = struct{}{}
			}
			j--
		}
		cp := make(irv.Set, len(elims))
		for c := range elims {
			cp[c] = struct{}{}
		}
		tertiary = append(tertiary, cp)
	}
	return tertiary
}

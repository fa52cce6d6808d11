package bounds

import (
	"container/heap"
	"math"

	"github.com/rcvlab/irvmargin/ballot"
	"github.com/rcvlab/irvmargin/election"
	"github.com/rcvlab/irvmargin/irv"
)

// lbNode is one entry on the best-first search frontier: m is the
// minimum round margin seen along the trace that produced seq, root is
// the profile after applying seq.
type lbNode struct {
	m    uint64
	seq  []irv.Set
	root *ballot.Node
}

// lbFrontier is a max-priority queue on m, in the idiom of the
// teacher's container/heap-driven traversal runners (graph.edgePQ,
// algorithms.nodePQ) — a typed comparator rather than the
// negate-for-a-min-heap idiom the reference implementation used.
type lbFrontier []*lbNode

func (f lbFrontier) Len() int            { return len(f) }
func (f lbFrontier) Less(i, j int) bool  { return f[i].m > f[j].m }
func (f lbFrontier) Swap(i, j int)       { f[i], f[j] = f[j], f[i] }
func (f *lbFrontier) Push(x interface{}) { *f = append(*f, x.(*lbNode)) }
func (f *lbFrontier) Pop() interface{} {
	old := *f
	n := len(old)
	item := old[n-1]
	*f = old[:n-1]
	return item
}

// BestFirstLB computes the best-first IRV margin lower bound: the
// maximum, over every sequence of valid batch eliminations, of the
// minimum per-round margin along that sequence. The second result is
// the sequence of elimination sets that attains the bound. Where a
// profile has no valid batch set (a tie the San Francisco rule cannot
// resolve), the single-candidate fallback set from irv.Select is used.
func BestFirstLB(e *election.Election) (uint64, []irv.Set) {
	frontier := &lbFrontier{{m: math.MaxUint64, seq: nil, root: e.Profile}}
	heap.Init(frontier)

	for {
		item := heap.Pop(frontier).(*lbNode)
		if item.root.NumChildren() == 1 {
			return item.m, item.seq
		}
		sets := irv.AllSFSets(item.root)
		if len(sets) == 0 {
			sets = []irv.Set{irv.Select(item.root, irv.SFRCV)}
		}
		for _, elimSet := range sets {
			newRoot := item.root.DeepCopy()
			m2 := RoundMargin(newRoot, elimSet)
			for _, c := range elimSet.Sorted() {
				newRoot.Eliminate(c)
			}
			seq2 := make([]irv.Set, len(item.seq), len(item.seq)+1)
			copy(seq2, item.seq)
			seq2 = append(seq2, elimSet)
			m := item.m
			if m2 < m {
				m = m2
			}
			heap.Push(frontier, &lbNode{m: m, seq: seq2, root: newRoot})
		}
	}
}

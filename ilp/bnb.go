package ilp

import (
	"context"
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// SolverOptions configures BranchAndBoundSolver's branch exploration.
type SolverOptions struct {
	// Workers caps the number of branches explored concurrently, in the
	// spirit of GoMILP's solve(ctx, workers, ...) parameter. Zero means
	// runtime.GOMAXPROCS(0).
	Workers int
}

// BranchAndBoundSolver is the default Solver: branch-and-bound over a
// linear relaxation solved at each node with gonum's simplex
// implementation, in the problem shape of the GoMILP reference (c, A,
// b, G, h folded into a single equality system via slack variables).
// Sibling branches below the root are explored with opportunistic
// parallelism bounded by Options.Workers (runtime.GOMAXPROCS(0) if
// unset).
type BranchAndBoundSolver struct {
	Options SolverOptions
}

const bnbTolerance = 1e-6

type bnbState struct {
	prob Problem

	mu            sync.Mutex
	haveIncumbent bool
	incumbent     float64
	err           error
}

// bnbNode is one unexplored region of the branch-and-bound tree: the
// variable bounds to relax and re-branch from.
type bnbNode struct {
	lo, hi []float64
}

// bnbQueue is a LIFO work list shared by a fixed worker pool. pending
// counts nodes that exist but have not finished processing — queued or
// currently being branched — so workers can tell "no work right now,
// but more may still arrive" (wait) apart from "no work ever again"
// (exit). This avoids the self-deadlock of spawning one goroutine per
// branch under a concurrency-limited errgroup: a fixed number of
// worker goroutines pull from the queue instead of each branch
// blocking on a free slot to hand off its children.
type bnbQueue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	stack   []bnbNode
	pending int
}

func newBnbQueue(root bnbNode) *bnbQueue {
	q := &bnbQueue{stack: []bnbNode{root}, pending: 1}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// pop blocks until a node is available or the queue is permanently
// drained (pending reaches zero with nothing queued).
func (q *bnbQueue) pop() (bnbNode, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.stack) == 0 {
		if q.pending == 0 {
			return bnbNode{}, false
		}
		q.cond.Wait()
	}
	n := len(q.stack) - 1
	node := q.stack[n]
	q.stack = q.stack[:n]
	return node, true
}

// done reports that the node just popped has finished processing and
// spawned children (zero, one, or two new nodes). pending is adjusted
// so it never transiently reaches zero while children are still being
// added, then every waiting worker is woken to re-check the queue or
// the pending count.
func (q *bnbQueue) done(children ...bnbNode) {
	q.mu.Lock()
	q.pending += len(children) - 1
	q.stack = append(q.stack, children...)
	q.cond.Broadcast()
	q.mu.Unlock()
}

// Solve implements Solver.
func (b BranchAndBoundSolver) Solve(ctx context.Context, p Problem) (float64, bool, error) {
	st := &bnbState{prob: p}

	lo := make([]float64, len(p.Vars))
	hi := make([]float64, len(p.Vars))
	for i, v := range p.Vars {
		lo[i] = v.Lower
		hi[i] = v.Upper
	}

	workers := b.Options.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queue := newBnbQueue(bnbNode{lo: lo, hi: hi})

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			st.worker(ctx, queue)
		}()
	}
	wg.Wait()

	if st.err != nil {
		return 0, false, st.err
	}
	if ctx.Err() != nil {
		return 0, false, nil
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if !st.haveIncumbent {
		return 0, false, nil
	}
	return st.incumbent, true, nil
}

// worker pulls nodes off queue until it is drained or ctx is done,
// relaxing each and either pruning it, recording a feasible incumbent,
// or pushing its two children back onto the queue.
func (st *bnbState) worker(ctx context.Context, queue *bnbQueue) {
	for {
		node, ok := queue.pop()
		if !ok {
			return
		}
		if ctx.Err() != nil {
			// Drain without relaxing: lets the queue empty out and
			// every worker observe pending == 0 instead of leaving
			// others blocked in cond.Wait() forever.
			queue.done()
			continue
		}

		children := st.branch(node)
		queue.done(children...)
	}
}

// branch relaxes node and returns the zero, one, or two child nodes it
// produces: none if infeasible or pruned, none (with the incumbent
// updated) if the relaxation is already integral, or two if a
// fractional variable was split.
func (st *bnbState) branch(node bnbNode) []bnbNode {
	relObj, relX, feasible, err := st.relax(node.lo, node.hi)
	if err != nil {
		st.mu.Lock()
		if st.err == nil {
			st.err = err
		}
		st.mu.Unlock()
		return nil
	}
	if !feasible {
		return nil
	}

	st.mu.Lock()
	prune := st.haveIncumbent && relObj >= st.incumbent-bnbTolerance
	st.mu.Unlock()
	if prune {
		return nil
	}

	branchVar, value, isInteger := mostFractional(st.prob, relX)
	if isInteger {
		st.mu.Lock()
		if !st.haveIncumbent || relObj < st.incumbent {
			st.haveIncumbent = true
			st.incumbent = relObj
		}
		st.mu.Unlock()
		return nil
	}

	loDown := append([]float64(nil), node.lo...)
	hiDown := append([]float64(nil), node.hi...)
	hiDown[branchVar] = math.Floor(value)

	loUp := append([]float64(nil), node.lo...)
	hiUp := append([]float64(nil), node.hi...)
	loUp[branchVar] = math.Ceil(value)

	return []bnbNode{{lo: loDown, hi: hiDown}, {lo: loUp, hi: hiUp}}
}

// mostFractional returns the integer-constrained variable furthest
// from an integer value in x, along with that value. isInteger is true
// when every integer-constrained variable is already integral (within
// tolerance), in which case x itself is a feasible incumbent.
func mostFractional(p Problem, x []float64) (int, float64, bool) {
	best := -1
	var bestDist float64
	for i, v := range p.Vars {
		if !v.Integer {
			continue
		}
		frac := x[i] - math.Floor(x[i])
		dist := math.Min(frac, 1-frac)
		if dist > bnbTolerance && dist > bestDist {
			best, bestDist = i, dist
		}
	}
	if best == -1 {
		return 0, 0, true
	}
	return best, x[best], false
}

// relax solves the linear relaxation of st.prob with variable i bounded
// to [lo[i], hi[i]], converting every inequality (the problem's own,
// plus one per finite upper bound and one per positive lower bound)
// into an equality via a slack variable
// so gonum's lp.Simplex — which solves only Ax=b, x>=0 — can be used
// directly.
func (st *bnbState) relax(lo, hi []float64) (float64, []float64, bool, error) {
	p := st.prob
	n := len(p.Vars)

	ineq := make([]Row, 0, len(p.Inequalities)+2*n)
	ineq = append(ineq, p.Inequalities...)
	for i := range p.Vars {
		if !math.IsInf(hi[i], 1) {
			ineq = append(ineq, Row{Coeffs: map[int]float64{i: 1}, RHS: hi[i]})
		}
		if lo[i] > 0 {
			ineq = append(ineq, Row{Coeffs: map[int]float64{i: -1}, RHS: -lo[i]})
		}
	}

	mEq := len(p.Equalities)
	mLe := len(ineq)
	total := n + mLe

	c := make([]float64, total)
	copy(c, p.Obj)

	A := mat.NewDense(mEq+mLe, total, nil)
	b := make([]float64, mEq+mLe)
	for r, row := range p.Equalities {
		for idx, coef := range row.Coeffs {
			A.Set(r, idx, coef)
		}
		b[r] = row.RHS
	}
	for r, row := range ineq {
		for idx, coef := range row.Coeffs {
			A.Set(mEq+r, idx, coef)
		}
		A.Set(mEq+r, n+r, 1)
		b[mEq+r] = row.RHS
	}

	obj, x, err := lp.Simplex(c, A, b, 0, nil)
	if err != nil {
		if err == lp.ErrInfeasible {
			return 0, nil, false, nil
		}
		return 0, nil, false, err
	}
	return obj, x[:n], true, nil
}

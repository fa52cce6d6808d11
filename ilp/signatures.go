package ilp

import (
	"context"
	"math"

	"github.com/rcvlab/irvmargin/ballot"
	"github.com/rcvlab/irvmargin/irv"
)

// DistanceTo computes the minimum number of ballot alterations needed
// to make elimOrder the exact IRV elimination order over root (where
// elimOrder[len-1] becomes the induced winner), using solver for the
// integer program. It returns -1 (not an error) if solver cannot
// certify an optimum before ctx is done.
func DistanceTo(ctx context.Context, solver Solver, root *ballot.Node, ranks uint32, elimOrder []irv.Candidate) (int64, error) {
	k := len(elimOrder)
	if k < 2 {
		return 0, nil
	}

	reduced := root.DeepCopy()
	reduced.Reduce(elimOrder)

	index := make(map[irv.Candidate]int, k)
	for i, c := range elimOrder {
		index[c] = i
	}
	profile := signatureCounts(reduced, index)

	prob := buildProblem(k, int(ranks), profile)
	obj, ok, err := solver.Solve(ctx, prob)
	if err != nil {
		return 0, err
	}
	if !ok {
		return -1, nil
	}
	return int64(math.Round(obj)), nil
}

// signatureCounts walks the reduced trie and, for every path, records
// the number of ballots terminating there keyed by the bitmask of
// elim_order indices on that path. Reduce has already collapsed the
// trie so every remaining path is monotonically increasing in
// elim_order index, which is what makes the bitmask a faithful
// signature key.
func signatureCounts(root *ballot.Node, index map[irv.Candidate]int) map[uint64]uint64 {
	out := make(map[uint64]uint64)
	var walk func(n *ballot.Node, mask uint64)
	walk = func(n *ballot.Node, mask uint64) {
		var sum uint64
		n.Range(func(c ballot.Candidate, child *ballot.Node) bool {
			sum += child.Value
			walk(child, mask|(1<<uint(index[c])))
			return true
		})
		if n.Value > sum {
			out[mask] += n.Value - sum
		}
	}
	walk(root, 0)
	return out
}

// combinations returns every subset of {0,...,k-1}, as ascending index
// slices, with size 0..maxSize.
func combinations(k, maxSize int) [][]int {
	if maxSize > k {
		maxSize = k
	}
	var out [][]int
	var cur []int
	var rec func(start int)
	rec = func(start int) {
		out = append(out, append([]int(nil), cur...))
		if len(cur) == maxSize {
			return
		}
		for i := start; i < k; i++ {
			cur = append(cur, i)
			rec(i + 1)
			cur = cur[:len(cur)-1]
		}
	}
	rec(0)
	return out
}

func subsetMask(s []int) uint64 {
	var m uint64
	for _, i := range s {
		m |= 1 << uint(i)
	}
	return m
}

// buildProblem constructs the ILP described in the Magrino et al.
// reformulation: one P/M variable pair per eligible signature, a
// ballot-count balance equality, and k(k-1)/2 per-round elimination
// inequalities.
func buildProblem(k, ranks int, profile map[uint64]uint64) Problem {
	var n uint64
	for _, c := range profile {
		n += c
	}

	type sigVar struct {
		mask    uint64
		pIdx    int
		mIdx    int
		hasM    bool
		n       uint64
	}
	var sigs []sigVar

	var p Problem
	addVar := func(name string, integer bool, lower, upper, obj float64) int {
		p.Vars = append(p.Vars, Variable{Name: name, Integer: integer, Lower: lower, Upper: upper})
		p.Obj = append(p.Obj, obj)
		return len(p.Vars) - 1
	}

	// bucket[r][d] collects the signature masks for which elim_order[r+d]
	// is the first surviving candidate when rounds 0..r-1 have already
	// been eliminated, for r in 0..k-2 and d in 0..(k-1-r).
	bucket := make([][][]uint64, k-1)
	for r := range bucket {
		bucket[r] = make([][]uint64, k-r)
	}

	finalTwo := uint64(3) << uint(k-2) // bits k-2 and k-1
	for _, subset := range combinations(k, ranks) {
		mask := subsetMask(subset)
		if mask&finalTwo == finalTwo {
			// Exclude signatures containing both of the final two
			// candidates' indices; only one need appear on a ballot to
			// affect the last round.
			continue
		}

		nSigma, present := profile[mask]

		var pObj, mObj float64
		if len(subset) == 0 {
			pObj, mObj = -1, 1
		} else {
			pObj, mObj = 0, 2
		}

		sv := sigVar{mask: mask, n: nSigma}
		sv.pIdx = addVar("P", true, 0, float64(n-nSigma), pObj)
		if present {
			sv.hasM = true
			sv.mIdx = addVar("M", true, 0, float64(nSigma), mObj)
		}
		sigs = append(sigs, sv)

		r := 0
		for _, i := range subset {
			for rr := r; rr <= i && rr < k-1; rr++ {
				bucket[rr][i-rr] = append(bucket[rr][i-rr], mask)
			}
			r = i + 1
		}
	}

	byMask := make(map[uint64]sigVar, len(sigs))
	for _, sv := range sigs {
		byMask[sv.mask] = sv
	}

	// Balance: sum over all signatures of (P_sigma - M_sigma) == 0.
	balance := Row{Coeffs: make(map[int]float64), RHS: 0}
	for _, sv := range sigs {
		balance.Coeffs[sv.pIdx] += 1
		if sv.hasM {
			balance.Coeffs[sv.mIdx] += -1
		}
	}
	p.Equalities = append(p.Equalities, balance)

	// addBucketCoeffs adds coef*(P_sigma - M_sigma) to row for every
	// signature in masks, and returns the unsigned sum of their observed
	// counts (the n_sigma terms contribute to RHS, not to the row
	// itself, since the balance n_sigma + P_sigma - M_sigma for an
	// absent signature is just P_sigma).
	addBucketCoeffs := func(row *Row, masks []uint64, coef float64) float64 {
		var sum float64
		for _, mask := range masks {
			sv := byMask[mask]
			row.Coeffs[sv.pIdx] += coef
			if sv.hasM {
				row.Coeffs[sv.mIdx] += -coef
				sum += float64(sv.n)
			}
		}
		return sum
	}

	for r := 0; r <= k-2; r++ {
		s0 := bucket[r][0]
		row0 := Row{Coeffs: make(map[int]float64)}
		irhs := addBucketCoeffs(&row0, s0, 1)
		for d := 1; d < len(bucket[r]); d++ {
			t := bucket[r][d]
			if len(t) == 0 {
				continue
			}
			row := Row{Coeffs: make(map[int]float64)}
			for idx, coef := range row0.Coeffs {
				row.Coeffs[idx] += coef
			}
			jrhs := addBucketCoeffs(&row, t, -1)
			row.RHS = jrhs - irhs
			p.Inequalities = append(p.Inequalities, row)
		}
	}

	return p
}

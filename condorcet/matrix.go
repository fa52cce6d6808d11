// Package condorcet derives the pairwise comparison matrix, Condorcet
// winner, and Condorcet margin lower bound from a ballot profile — a
// cheap auxiliary to the IRV margin engine, computed directly from the
// same trie rather than any IRV round simulation.
package condorcet

import (
	"errors"
	"fmt"

	"github.com/rcvlab/irvmargin/ballot"
	"github.com/rcvlab/irvmargin/election"
)

// ErrUnknownCandidate is returned by Matrix.At when asked about a
// candidate the matrix was not built with.
var ErrUnknownCandidate = errors.New("condorcet: unknown candidate")

// Matrix is a square, 0-based pairwise comparison matrix: At(i, j) is
// the number of ballots ranking candidate i above candidate j. Storage
// is a flat row-major slice, in the idiom of the teacher's matrix.Dense.
type Matrix struct {
	candidates []ballot.Candidate
	index      map[ballot.Candidate]int
	k          int
	data       []int64
}

// NewMatrix allocates a zeroed Matrix over candidates.
func NewMatrix(candidates []ballot.Candidate) *Matrix {
	cs := append([]ballot.Candidate(nil), candidates...)
	index := make(map[ballot.Candidate]int, len(cs))
	for i, c := range cs {
		index[c] = i
	}
	return &Matrix{
		candidates: cs,
		index:      index,
		k:          len(cs),
		data:       make([]int64, len(cs)*len(cs)),
	}
}

// Candidates returns the candidates the matrix was built over, in the
// fixed row/column order used by At.
func (m *Matrix) Candidates() []ballot.Candidate {
	return append([]ballot.Candidate(nil), m.candidates...)
}

// At returns the number of ballots ranking i above j.
func (m *Matrix) At(i, j ballot.Candidate) (int64, error) {
	ri, ok := m.index[i]
	if !ok {
		return 0, fmt.Errorf("condorcet: At(%d,_): %w", i, ErrUnknownCandidate)
	}
	ci, ok := m.index[j]
	if !ok {
		return 0, fmt.Errorf("condorcet: At(_,%d): %w", j, ErrUnknownCandidate)
	}
	return m.data[ri*m.k+ci], nil
}

func (m *Matrix) add(i, j ballot.Candidate, delta int64) {
	m.data[m.index[i]*m.k+m.index[j]] += delta
}

// Build constructs the Condorcet matrix for e's ballot profile by
// walking each top-level subtree with the set of candidates not yet
// ranked on the current path: a node for candidate who at value v
// credits who over every still-unranked candidate by v, then recurses.
func Build(e *election.Election) *Matrix {
	candidates := e.Profile.Children()
	m := NewMatrix(candidates)

	cs := make(map[ballot.Candidate]struct{}, len(candidates))
	for _, c := range candidates {
		cs[c] = struct{}{}
	}

	e.Profile.Range(func(c ballot.Candidate, child *ballot.Node) bool {
		addSubtree(child, c, cs, m)
		return true
	})
	return m
}

func addSubtree(n *ballot.Node, who ballot.Candidate, cs map[ballot.Candidate]struct{}, m *Matrix) {
	if _, ok := cs[who]; ok {
		reduced := make(map[ballot.Candidate]struct{}, len(cs)-1)
		for c := range cs {
			if c != who {
				reduced[c] = struct{}{}
			}
		}
		cs = reduced
	}

	for c := range cs {
		m.add(who, c, int64(n.Value))
	}

	n.Range(func(c ballot.Candidate, child *ballot.Node) bool {
		if _, ok := cs[c]; ok {
			addSubtree(child, c, cs, m)
		}
		return true
	})
}

// Winner returns the Condorcet winner — the candidate who beats every
// other candidate head-to-head — and whether one exists.
func Winner(m *Matrix) (ballot.Candidate, bool) {
	for _, c := range m.candidates {
		beatsAll := true
		for _, other := range m.candidates {
			if other == c {
				continue
			}
			forC, _ := m.At(c, other)
			forOther, _ := m.At(other, c)
			if forC <= forOther {
				beatsAll = false
				break
			}
		}
		if beatsAll {
			return c, true
		}
	}
	return 0, false
}

// LowerBound returns the minimum pairwise margin between winner and
// every other candidate, or 0 if winner is the zero value (no
// Condorcet winner).
func LowerBound(m *Matrix, winner ballot.Candidate) int64 {
	if winner == 0 {
		return 0
	}
	var lb int64
	first := true
	for _, c := range m.candidates {
		if c == winner {
			continue
		}
		forWinner, _ := m.At(winner, c)
		forC, _ := m.At(c, winner)
		d := forWinner - forC
		if first || d < lb {
			lb = d
			first = false
		}
	}
	if first {
		return 0
	}
	return lb
}

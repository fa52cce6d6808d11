package irv

import (
	"reflect"
	"testing"

	"github.com/rcvlab/irvmargin/ballot"
)

func TestAllSFSetsS2(t *testing.T) {
	root := s2Profile()
	sets := AllSFSets(root)
	if len(sets) != 1 {
		t.Fatalf("AllSFSets = %v, want exactly one valid prefix", sets)
	}
	if !reflect.DeepEqual(sets[0], NewSet(1, 2, 3)) {
		t.Fatalf("AllSFSets[0] = %v, want {1,2,3}", sets[0])
	}
}

func TestSFTieFallbackDiagnostic(t *testing.T) {
	// Three candidates, all perfectly tied: no prefix total can stay
	// below the next group's total, so the selector must fall back to
	// eliminating a single candidate and report TieFallback.
	root := ballot.NewNode()
	addBallot(root, 10, 1)
	addBallot(root, 10, 2)
	addBallot(root, 10, 3)
	root.Value = 30

	diag := make(chan Diagnostic, 1)
	set := eliminationSet(root, SFRCV, nil, diag)
	if len(set) != 1 {
		t.Fatalf("fallback set should have exactly one member, got %v", set)
	}
	select {
	case d := <-diag:
		if d.Kind != TieFallback {
			t.Fatalf("diagnostic kind = %v, want TieFallback", d.Kind)
		}
	default:
		t.Fatalf("expected a TieFallback diagnostic")
	}
}

func TestExactHalfIsNotMajority(t *testing.T) {
	// Open Question 1: high*2 > total is strict, so an exact half does
	// not terminate the round. Candidate 1 holds 50 of 100 votes with
	// three candidates left, so round 1 must eliminate 3 and only round
	// 2 (two candidates remain) declares the winner.
	root := ballot.NewNode()
	addBallot(root, 50, 1)
	addBallot(root, 40, 2)
	addBallot(root, 10, 3)
	root.Value = 100
	res, err := Round(root, 3, BaseIRV, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Elimination) != 2 {
		t.Fatalf("elimination = %v, want two rounds (50 of 100 is not a majority)", res.Elimination)
	}
	if !reflect.DeepEqual(res.Elimination[0], NewSet(3)) {
		t.Fatalf("elimination[0] = %v, want {3}", res.Elimination[0])
	}
	if res.Winner != 1 {
		t.Fatalf("winner = %d, want 1", res.Winner)
	}
}

package condorcet

import (
	"testing"

	"github.com/rcvlab/irvmargin/ballot"
	"github.com/rcvlab/irvmargin/election"
)

func addBallot(root *ballot.Node, weight uint64, path ...ballot.Candidate) {
	cur := root
	for _, c := range path {
		cur = cur.GetChild(c)
		cur.Value += weight
	}
}

// TestS3_CycleHasNoWinner builds the classic three-candidate cycle:
// 35x[1,2,3], 33x[2,3,1], 32x[3,1,2]. Candidate 1 beats 2 (67-33) but
// loses to 3 (35-65), so no Condorcet winner exists.
func TestS3_CycleHasNoWinner(t *testing.T) {
	root := ballot.NewNode()
	addBallot(root, 35, 1, 2, 3)
	addBallot(root, 33, 2, 3, 1)
	addBallot(root, 32, 3, 1, 2)
	root.Value = 100

	names := map[ballot.Candidate]string{1: "A", 2: "B", 3: "C"}
	e, err := election.New(names, root, 3, 1, "S3")
	if err != nil {
		t.Fatalf("election.New: %v", err)
	}

	m := Build(e)

	oneBeatsTwo, _ := m.At(1, 2)
	twoBeatsOne, _ := m.At(2, 1)
	if oneBeatsTwo != 67 || twoBeatsOne != 33 {
		t.Fatalf("1 vs 2 = %d-%d, want 67-33", oneBeatsTwo, twoBeatsOne)
	}
	threeBeatsOne, _ := m.At(3, 1)
	oneBeatsThree, _ := m.At(1, 3)
	if threeBeatsOne != 65 || oneBeatsThree != 35 {
		t.Fatalf("3 vs 1 = %d-%d, want 65-35", threeBeatsOne, oneBeatsThree)
	}

	winner, ok := Winner(m)
	if ok {
		t.Fatalf("Winner = %d, want no Condorcet winner", winner)
	}
	if lb := LowerBound(m, winner); lb != 0 {
		t.Fatalf("LowerBound = %d, want 0", lb)
	}
}

func TestCondorcetWinnerExists(t *testing.T) {
	// 60x[1,2,3], 40x[2,3,1]: candidate 1 beats 2 (60-40) and beats 3
	// (60-40); candidate 2 beats 3 (100-0). 1 is the Condorcet winner.
	root := ballot.NewNode()
	addBallot(root, 60, 1, 2, 3)
	addBallot(root, 40, 2, 3, 1)
	// Candidate 3 has no first-choice votes but still needs its
	// zero-valued top-level child for election.New to accept the profile.
	root.GetChild(3)
	root.Value = 100

	names := map[ballot.Candidate]string{1: "A", 2: "B", 3: "C"}
	e, err := election.New(names, root, 3, 1, "winner")
	if err != nil {
		t.Fatalf("election.New: %v", err)
	}

	m := Build(e)
	winner, ok := Winner(m)
	if !ok || winner != 1 {
		t.Fatalf("Winner = (%d, %v), want (1, true)", winner, ok)
	}
	if lb := LowerBound(m, winner); lb != 20 {
		t.Fatalf("LowerBound = %d, want 20", lb)
	}
}

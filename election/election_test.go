package election

import (
	"errors"
	"testing"

	"github.com/rcvlab/irvmargin/ballot"
)

func threeCandidateProfile() *ballot.Node {
	root := ballot.NewNode()
	add := func(weight uint64, path ...ballot.Candidate) {
		cur := root
		for _, c := range path {
			cur = cur.GetChild(c)
			cur.Value += weight
		}
	}
	add(60, 1, 2, 3)
	add(30, 2, 1, 3)
	add(10, 3, 2, 1)
	root.Value = 100
	return root
}

func TestNewValidates(t *testing.T) {
	profile := threeCandidateProfile()
	names := map[ballot.Candidate]string{1: "Alice", 2: "Bob", 3: "Carol"}
	e, err := New(names, profile, 3, 1, "S1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.NumCandidates() != 3 {
		t.Fatalf("NumCandidates = %d, want 3", e.NumCandidates())
	}
	if e.SchemaVersion != Version {
		t.Fatalf("SchemaVersion = %d, want %d", e.SchemaVersion, Version)
	}
}

func TestNewRejectsMismatch(t *testing.T) {
	profile := threeCandidateProfile()
	names := map[ballot.Candidate]string{1: "Alice", 2: "Bob"}
	_, err := New(names, profile, 3, 1, "broken")
	if !errors.Is(err, ErrCandidateMismatch) {
		t.Fatalf("expected ErrCandidateMismatch, got %v", err)
	}
}

package ballot

import "testing"

func buildS1() *Node {
	// 60x[1,2,3], 30x[2,1,3], 10x[3,2,1]
	root := NewNode()
	addBallot(root, 60, 1, 2, 3)
	addBallot(root, 30, 2, 1, 3)
	addBallot(root, 10, 3, 2, 1)
	root.Value = 100
	return root
}

func addBallot(root *Node, weight uint64, path ...Candidate) {
	cur := root
	for _, c := range path {
		cur = cur.GetChild(c)
		cur.Value += weight
	}
}

func TestGetChildInsertsZeroValued(t *testing.T) {
	n := NewNode()
	if n.HasChild(1) {
		t.Fatalf("fresh node should have no children")
	}
	c := n.GetChild(1)
	if c.Value != 0 {
		t.Fatalf("new child should be zero-valued, got %d", c.Value)
	}
	if !n.HasChild(1) {
		t.Fatalf("GetChild should insert the child")
	}
	if n.NumChildren() != 1 {
		t.Fatalf("NumChildren = %d, want 1", n.NumChildren())
	}
}

func TestDeleteChildMissing(t *testing.T) {
	n := NewNode()
	if err := n.DeleteChild(5); err == nil {
		t.Fatalf("expected error deleting missing child")
	}
}

func TestEliminateMergesSubtree(t *testing.T) {
	root := buildS1()
	total := root.Value
	root.Eliminate(3)

	if root.HasChild(3) {
		t.Fatalf("candidate 3 should be gone from the root")
	}
	for _, c := range root.Children() {
		if c == 3 {
			t.Fatalf("candidate 3 should not appear anywhere")
		}
	}
	// total ballots preserved
	var sum uint64
	root.Range(func(_ Candidate, child *Node) bool {
		sum += child.Value
		return true
	})
	if sum != total {
		t.Fatalf("value not preserved: got %d want %d", sum, total)
	}
	// 60 [1,2] + 30 [2,1] + 10 [2,1] (3 dropped from [3,2,1] -> [2,1])
	v, _ := root.ChildValue(2)
	if v != 40 {
		t.Fatalf("child 2 value = %d, want 40", v)
	}
	v1, _ := root.ChildValue(1)
	if v1 != 60 {
		t.Fatalf("child 1 value = %d, want 60", v1)
	}
	c2 := root.GetChild(2)
	v21, _ := c2.ChildValue(1)
	if v21 != 40 {
		t.Fatalf("child 2->1 value = %d, want 40", v21)
	}
}

func TestDeepCopyIsIndependent(t *testing.T) {
	root := buildS1()
	cp := root.DeepCopy()
	if !root.Equal(cp) {
		t.Fatalf("deep copy should be structurally equal")
	}
	cp.Eliminate(3)
	if !root.HasChild(3) {
		t.Fatalf("mutating the copy should not affect the original")
	}
	if root.Equal(cp) {
		t.Fatalf("original and mutated copy should now differ")
	}
}

func TestReduceIdempotent(t *testing.T) {
	root := buildS1()
	order := []Candidate{3, 2, 1}
	a := root.DeepCopy()
	a.Reduce(order)
	b := a.DeepCopy()
	b.Reduce(order)
	if !a.Equal(b) {
		t.Fatalf("Reduce should be idempotent under the same order")
	}
}

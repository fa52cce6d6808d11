package margin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcvlab/irvmargin/ballot"
	"github.com/rcvlab/irvmargin/bounds"
	"github.com/rcvlab/irvmargin/election"
	"github.com/rcvlab/irvmargin/irv"
)

func addBallot(root *ballot.Node, weight uint64, path ...ballot.Candidate) {
	cur := root
	for _, c := range path {
		cur = cur.GetChild(c)
		cur.Value += weight
	}
}

// s1Election builds Scenario S1: 60x[1,2,3], 30x[2,1,3], 10x[3,2,1].
func s1Election(t *testing.T) *election.Election {
	t.Helper()
	root := ballot.NewNode()
	addBallot(root, 60, 1, 2, 3)
	addBallot(root, 30, 2, 1, 3)
	addBallot(root, 10, 3, 2, 1)
	root.Value = 100
	names := map[ballot.Candidate]string{1: "Alice", 2: "Bob", 3: "Carol"}
	e, err := election.New(names, root, 3, 1, "S1")
	require.NoError(t, err)
	return e
}

func TestMargin_S1_WithinBounds(t *testing.T) {
	e := s1Election(t)
	ub, err := bounds.UB(e, irv.SFRCV, 0, nil)
	require.NoError(t, err)
	lb := bounds.SimpleLB(e)

	searcher := &Searcher{}
	m, err := searcher.Margin(e, MarginOptions{})
	require.NoError(t, err)
	require.NotEqual(t, int64(-1), m, "Margin timed out unexpectedly")
	assert.GreaterOrEqual(t, m, int64(0))
	assert.LessOrEqual(t, uint64(m), ub)
	assert.GreaterOrEqual(t, uint64(m), lb)
	// The cheapest winner-flipping order eliminates 3 first (costing
	// nothing — it's already lowest), then needs candidate 1's vote to
	// drop to no more than candidate 2's post-transfer total (40):
	// moving 10 ballots from 1 to 2 ties the decisive round at 50-50.
	// Under the doubled M/P accounting that is a cost of 2*10 = 20.
	assert.Equal(t, int64(20), m)
}

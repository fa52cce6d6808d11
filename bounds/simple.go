package bounds

import (
	"math"

	"github.com/rcvlab/irvmargin/election"
	"github.com/rcvlab/irvmargin/irv"
)

// SimpleLB computes a cheap IRV margin lower bound by walking the
// election's actual San Francisco elimination trajectory and
// recording, at each round, how far the round's batch elimination is
// from being reversed. The minimum over all rounds is a valid
// per-round margin lower bound.
func SimpleLB(e *election.Election) uint64 {
	root := e.Profile
	lb := uint64(math.MaxUint64)
	for {
		elimSet := irv.Select(root, irv.SFRCV)
		m := RoundMargin(root, elimSet)
		if m < lb {
			lb = m
		}
		res, err := irv.Round(root, 1, irv.SFRCV, nil)
		if err != nil {
			// A single candidate remaining with no children is the
			// only way Round can fail here, and the loop already
			// exits via the winner check below in that case.
			return lb
		}
		root = res.Reduced
		if res.Winner != 0 {
			return lb
		}
	}
}

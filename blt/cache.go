package blt

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rcvlab/irvmargin/ballot"
	"github.com/rcvlab/irvmargin/election"
)

// cachedElection is the gob-serializable shape of an election.Election:
// ballot.Node's internal children map is not itself exported, so the
// cache walks it into a flat list of (path, value) entries, one per
// trie node below the root, and rebuilds the trie with ballot.GetChild
// on load.
type cachedElection struct {
	Names         map[ballot.Candidate]string
	Ranks         uint32
	Seats         uint32
	Description   string
	SchemaVersion int
	RootValue     uint64
	Ballots       []cachedBallot
}

type cachedBallot struct {
	Path   []ballot.Candidate
	Weight uint64
}

// ReadCached parses path or, if a sibling cache file at least as new as
// path exists and was built against the current election.Version,
// loads that instead.
// If the .blt is newer than the cache, or the cache schema version is
// stale, it reparses and rewrites the cache.
//
// For 'foo/bar.blt' the cache lives at 'foo/bar.cache'.
func ReadCached(path string) (*election.Election, error) {
	cachePath := cachePathFor(path)

	srcInfo, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("blt: stat %s: %w", path, err)
	}

	if cacheInfo, err := os.Stat(cachePath); err == nil && !cacheInfo.ModTime().Before(srcInfo.ModTime()) {
		if e, err := loadCache(cachePath); err == nil && e.SchemaVersion == election.Version {
			return e, nil
		}
	}

	e, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := storeCache(cachePath, e); err != nil {
		return nil, fmt.Errorf("blt: writing cache %s: %w", cachePath, err)
	}
	return e, nil
}

func cachePathFor(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".cache"
}

func loadCache(cachePath string) (*election.Election, error) {
	data, err := os.ReadFile(cachePath)
	if err != nil {
		return nil, err
	}
	var ce cachedElection
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&ce); err != nil {
		return nil, err
	}
	return ce.toElection(), nil
}

func storeCache(cachePath string, e *election.Election) error {
	ce := fromElection(e)
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(ce); err != nil {
		return err
	}
	return os.WriteFile(cachePath, buf.Bytes(), 0o644)
}

func fromElection(e *election.Election) cachedElection {
	ce := cachedElection{
		Names:         e.Names,
		Ranks:         e.Ranks,
		Seats:         e.Seats,
		Description:   e.Description,
		SchemaVersion: e.SchemaVersion,
		RootValue:     e.Profile.Value,
	}
	var walk func(n *ballot.Node, path []ballot.Candidate)
	walk = func(n *ballot.Node, path []ballot.Candidate) {
		n.Range(func(c ballot.Candidate, child *ballot.Node) bool {
			childPath := append(append([]ballot.Candidate(nil), path...), c)
			ce.Ballots = append(ce.Ballots, cachedBallot{Path: childPath, Weight: child.Value})
			walk(child, childPath)
			return true
		})
	}
	walk(e.Profile, nil)
	return ce
}

func (ce cachedElection) toElection() *election.Election {
	root := ballot.NewNode()
	for c := range ce.Names {
		root.GetChild(c)
	}
	for _, b := range ce.Ballots {
		cur := root
		for _, c := range b.Path {
			cur = cur.GetChild(c)
		}
		cur.Value = b.Weight
	}
	root.Value = ce.RootValue

	return &election.Election{
		Names:         ce.Names,
		Profile:       root,
		Ranks:         ce.Ranks,
		Seats:         ce.Seats,
		Description:   ce.Description,
		SchemaVersion: ce.SchemaVersion,
	}
}

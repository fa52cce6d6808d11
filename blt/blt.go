// Package blt reads and writes the .blt ballot file format used by
// San Francisco's RCV tabulation system: a header line of candidate
// and seat counts, one line per distinct ballot giving its ranked
// candidates terminated by 0, a trailing 0, then quoted candidate
// names and a description.
package blt

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/rcvlab/irvmargin/ballot"
	"github.com/rcvlab/irvmargin/election"
)

// ErrInvalidFormat is returned by Read when the file does not parse as
// a .blt file.
var ErrInvalidFormat = errors.New("blt: invalid format")

var ballotLine = regexp.MustCompile(`^(\(.*?\) )?1 ([-=0-9 ]*)0`)

// Read parses the .blt file at path into an Election.
func Read(path string) (*election.Election, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("blt: open %s: %w", path, err)
	}
	defer f.Close()
	return parse(f)
}

func parse(f *os.File) (*election.Election, error) {
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var header string
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if line[0] != '#' {
			header = line
			break
		}
	}
	if header == "" {
		return nil, fmt.Errorf("blt: no header line: %w", ErrInvalidFormat)
	}

	fields := strings.Fields(header)
	if len(fields) != 2 {
		return nil, fmt.Errorf("blt: header %q: %w", header, ErrInvalidFormat)
	}
	numCandidates, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, fmt.Errorf("blt: header candidate count %q: %w", fields[0], ErrInvalidFormat)
	}
	seats, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, fmt.Errorf("blt: header seat count %q: %w", fields[1], ErrInvalidFormat)
	}

	root := ballot.NewNode()
	for c := 1; c <= numCandidates; c++ {
		root.GetChild(ballot.Candidate(c))
	}

	var ranks int
	var numBallots uint64
	var trailer string
	for scanner.Scan() {
		line := scanner.Text()
		m := ballotLine.FindStringSubmatch(line)
		if m == nil {
			trailer = line
			break
		}
		numBallots++
		choices := strings.Fields(m[2])
		if len(choices) > ranks {
			ranks = len(choices)
		}

		seen := make(map[ballot.Candidate]bool)
		cur := root
		for _, tok := range choices {
			if tok == "-" {
				continue
			}
			if strings.Contains(tok, "=") {
				break
			}
			n, err := strconv.Atoi(tok)
			if err != nil {
				return nil, fmt.Errorf("blt: ballot choice %q: %w", tok, ErrInvalidFormat)
			}
			c := ballot.Candidate(n)
			if seen[c] {
				continue
			}
			seen[c] = true
			cur = cur.GetChild(c)
			cur.Value++
		}
	}
	if trailer != "0" {
		return nil, fmt.Errorf("blt: expected trailing 0 after ballots, got %q: %w", trailer, ErrInvalidFormat)
	}
	root.Value = numBallots

	names := make(map[ballot.Candidate]string, numCandidates)
	for c := 1; c <= numCandidates; c++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("blt: missing name for candidate %d: %w", c, ErrInvalidFormat)
		}
		names[ballot.Candidate(c)] = unquote(scanner.Text())
	}

	description := ""
	if scanner.Scan() {
		description = unquote(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("blt: reading %w", err)
	}

	e, err := election.New(names, root, uint32(ranks), uint32(seats), description)
	if err != nil {
		return nil, fmt.Errorf("blt: %w", err)
	}
	return e, nil
}

func unquote(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, `"`)
	line = strings.TrimSuffix(line, `"`)
	return line
}

// Write emits a simplified .blt file for e: one line per ballot (a
// path on which n ballots terminate is written n times), in ascending
// candidate order along the trie, each padded with "-" up to e.Ranks.
func Write(path string, e *election.Election) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("blt: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "%d %d\n", len(e.Names), e.Seats)

	if err := writeSubtree(w, e.Profile, e.Ranks, nil); err != nil {
		return fmt.Errorf("blt: write %s: %w", path, err)
	}
	fmt.Fprint(w, "0\n")

	for c := 1; c <= len(e.Names); c++ {
		fmt.Fprintf(w, "%q\n", e.Names[ballot.Candidate(c)])
	}
	fmt.Fprintf(w, "%q\n", e.Description)

	return w.Flush()
}

func writeSubtree(w *bufio.Writer, root *ballot.Node, ranks uint32, path []ballot.Candidate) error {
	var num uint64
	var werr error
	root.Range(func(c ballot.Candidate, child *ballot.Node) bool {
		num += child.Value
		if werr = writeSubtree(w, child, ranks, append(path, c)); werr != nil {
			return false
		}
		return true
	})
	if werr != nil {
		return werr
	}

	if root.Value > num {
		var b strings.Builder
		b.WriteString("1")
		for _, c := range path {
			fmt.Fprintf(&b, " %d", c)
		}
		for i := len(path); i < int(ranks); i++ {
			b.WriteString(" -")
		}
		b.WriteString(" 0\n")
		line := b.String()
		for i := uint64(0); i < root.Value-num; i++ {
			if _, err := w.WriteString(line); err != nil {
				return err
			}
		}
	}
	return nil
}

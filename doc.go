// Package irvmargin is your toolkit for computing Instant-Runoff Voting
// outcomes and rigorous bounds on their margin of victory.
//
// # What is irvmargin?
//
//	A single-contest IRV tabulator paired with three margin estimators:
//
//	  • ballot  — a compressed trie over ranked ballots (the "profile")
//	  • irv     — round-by-round tabulation under base or San Francisco
//	              batch-elimination rules
//	  • bounds  — a cheap lower bound and a constructive upper bound
//	  • ilp     — an integer-program formulation of "closest elimination
//	              order", solved by a pluggable Solver
//	  • margin  — a best-first search over elimination orders, calling
//	              into ilp and pruned by bounds, for the exact margin
//	  • condorcet — pairwise tallies, independent of IRV
//	  • blt     — the .blt ballot file format, read/write/cache
//
// # Why a margin, not just a winner?
//
//   - Recounts care about how many ballots would have to change to flip
//     the outcome, not just who won.
//   - The exact margin is NP-hard in general; this module gives you a
//     cheap lower bound, a constructive upper bound, and (budget
//     permitting) the exact value via branch-and-bound ILP.
//
// Dive into SPEC_FULL.md and DESIGN.md for the full package map and the
// provenance of every algorithm.
package irvmargin

// Package ilp formulates and solves the integer linear program that
// computes the exact cost of realizing a target IRV elimination order
// over a ballot profile (the Magrino et al. reformulation: variables
// per ballot "signature" rather than per individual ballot).
package ilp

import "context"

// Variable is one decision variable of a Problem: a count of ballots
// added (P) or removed (M) with a particular signature.
type Variable struct {
	// Name documents the variable for diagnostics; it plays no role in
	// solving.
	Name    string
	Integer bool
	Lower   float64
	Upper   float64
}

// Row is one linear constraint: the weighted sum of the named
// variables compared against RHS. Equalities and inequalities are kept
// in separate Problem slices rather than carrying a sense string
// alongside each row, so a mismatched row/sense pair can't arise by
// construction.
type Row struct {
	// Coeffs maps a variable index (into Problem.Vars) to its
	// coefficient in this row. Omitted indices have coefficient 0.
	Coeffs map[int]float64
	RHS    float64
}

// Problem is a minimization integer program: minimize the dot product
// of Obj and the variable vector, subject to every row in Equalities
// holding with equality and every row in Inequalities holding as <=,
// with each variable bounded by its own Lower and Upper.
type Problem struct {
	Vars         []Variable
	Obj          []float64
	Equalities   []Row
	Inequalities []Row
}

// Solver solves a Problem and reports whether the returned objective
// value is a certified optimum (false covers both proven infeasibility
// and a caller-imposed timeout).
type Solver interface {
	Solve(ctx context.Context, p Problem) (objective float64, ok bool, err error)
}

package optimization

import "math"

// BudgetTolerance is the tolerance on the sum-to-one equality constraint.
const BudgetTolerance = 1e-6

// ConstraintSet encodes the feasible region: per-element bounds plus the
// budget equality sum(w) = 1. The set is identical for both algorithm
// variants; only initialization and solver family differ between them.
type ConstraintSet struct {
	Lower []float64
	Upper []float64
}

// NewUnitConstraints returns the standard long-only constraint set for n
// assets: 0 ≤ w_i ≤ 1 with sum(w) = 1.
func NewUnitConstraints(n int) ConstraintSet {
	lower := make([]float64, n)
	upper := make([]float64, n)
	for i := range upper {
		upper[i] = 1.0
	}
	return ConstraintSet{Lower: lower, Upper: upper}
}

// Project clamps x to the bound constraints, returning a new slice. This
// stands in for hard solver bounds: objective and gradient are always
// evaluated at the projected point, so the returned solution satisfies the
// bounds exactly.
func (c ConstraintSet) Project(x []float64) []float64 {
	proj := make([]float64, len(x))
	for i := range x {
		proj[i] = math.Max(c.Lower[i], math.Min(c.Upper[i], x[i]))
	}
	return proj
}

// BudgetViolation returns sum(x) − 1, the signed violation of the budget
// equality constraint.
func (c ConstraintSet) BudgetViolation(x []float64) float64 {
	sum := 0.0
	for _, v := range x {
		sum += v
	}
	return sum - 1.0
}

// BudgetSatisfied reports whether the budget constraint holds within
// BudgetTolerance.
func (c ConstraintSet) BudgetSatisfied(x []float64) bool {
	return math.Abs(c.BudgetViolation(x)) <= BudgetTolerance
}

// Package optimization provides mean-variance portfolio optimization under
// the two quantum-labeled algorithm variants (QAOA, VQE).
package optimization

import (
	"fmt"
	"strings"
	"time"
)

// Variant selects the initial-guess rule and solver family for a solve.
// Both variants optimize the same objective over the same feasible region.
type Variant int

const (
	// VariantQAOA uses a uniform 1/N initial guess and a solver run that
	// enforces the budget constraint via a quadratic penalty.
	VariantQAOA Variant = iota
	// VariantVQE uses a seeded pseudorandom initial guess and a
	// bound-constrained quasi-Newton solver. The budget constraint is handed
	// to the solve but not enforced by it; allocation post-processing
	// restores a sum-to-one presentation downstream.
	VariantVQE
)

// String returns the algorithm label used in results and logs.
func (v Variant) String() string {
	switch v {
	case VariantQAOA:
		return "QAOA"
	case VariantVQE:
		return "VQE"
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// ParseVariant maps an algorithm identifier to a Variant, case-insensitively.
// Unknown identifiers return ok=false; callers surface that as an absent
// result, never as a solve failure.
func ParseVariant(s string) (Variant, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "QAOA":
		return VariantQAOA, true
	case "VQE":
		return VariantVQE, true
	}
	return 0, false
}

// Problem is one optimization request: an asset universe with its expected
// returns and covariance matrix, plus the risk trade-off factor.
type Problem struct {
	Assets     []string
	Returns    []float64
	Covariance [][]float64
	RiskFactor float64
}

// Validate checks problem dimensions. Violations are programmer-error class
// and fail fast; they are never folded into a Failed result.
func (p Problem) Validate() error {
	n := len(p.Assets)
	if n == 0 {
		return fmt.Errorf("no assets provided")
	}
	if len(p.Returns) != n {
		return fmt.Errorf("returns length %d doesn't match assets count %d", len(p.Returns), n)
	}
	if len(p.Covariance) != n {
		return fmt.Errorf("covariance matrix size %d doesn't match assets count %d", len(p.Covariance), n)
	}
	for i := range p.Covariance {
		if len(p.Covariance[i]) != n {
			return fmt.Errorf("covariance matrix row %d has size %d, expected %d", i, len(p.Covariance[i]), n)
		}
	}
	if p.RiskFactor < 0 {
		return fmt.Errorf("risk factor must be non-negative, got %v", p.RiskFactor)
	}
	return nil
}

// Status indicates the outcome of a solve.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// OptimizationResult is the immutable record of one solve. Weights and
// ObjectiveValue are set only on success; Error only on failure.
type OptimizationResult struct {
	ID             string    `json:"id"`
	Algorithm      string    `json:"algorithm"`
	Weights        []float64 `json:"weights,omitempty"`
	ObjectiveValue *float64  `json:"objective_value,omitempty"`
	Status         Status    `json:"status"`
	Error          string    `json:"error,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// AllocationEntry is one asset's share of the final allocation.
type AllocationEntry struct {
	Asset      string  `json:"asset"`
	Percentage float64 `json:"percentage"`
}

// Allocation is an ordered allocation list, descending by percentage.
type Allocation []AllocationEntry

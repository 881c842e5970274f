package optimization

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// DefaultVQESeed seeds the VQE-labeled pseudorandom initial guess. The value
// is a fixed constant (not caller-supplied in the public API) so repeated
// solves over identical inputs are bit-identical for regression testing.
const DefaultVQESeed uint64 = 123

// penaltyWeight scales the quadratic penalty terms that encode constraints
// into the unconstrained solver objective.
const penaltyWeight = 1000.0

// successStatuses are the solver termination statuses accepted as converged.
var successStatuses = map[optimize.Status]bool{
	optimize.Success:             true,
	optimize.GradientThreshold:   true,
	optimize.FunctionConvergence: true,
}

// Optimizer runs constrained mean-variance solves. Each variant pairs an
// initial-guess rule with a solver family; objective and feasible region are
// shared. The zero-value is not usable; construct with NewOptimizer.
type Optimizer struct {
	vqeSeed uint64
	log     zerolog.Logger
}

// NewOptimizer creates an optimizer with the default VQE seed.
func NewOptimizer(log zerolog.Logger) *Optimizer {
	return NewOptimizerWithSeed(DefaultVQESeed, log)
}

// NewOptimizerWithSeed creates an optimizer with an explicit VQE seed.
// Injectable so tests can control determinism without hidden RNG state.
func NewOptimizerWithSeed(seed uint64, log zerolog.Logger) *Optimizer {
	return &Optimizer{
		vqeSeed: seed,
		log:     log.With().Str("component", "optimizer").Logger(),
	}
}

// Solve runs one constrained solve of the given problem under the given
// variant. Numerical faults (non-convergence, invalid objective values) are
// converted into a Failed result and never escape as errors; the returned
// error is reserved for precondition violations such as mismatched
// dimensions.
func (o *Optimizer) Solve(p Problem, variant Variant) (OptimizationResult, error) {
	if err := p.Validate(); err != nil {
		return OptimizationResult{}, err
	}

	n := len(p.Assets)
	sigma := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			sigma.Set(i, j, p.Covariance[i][j])
		}
	}

	result := OptimizationResult{
		ID:        uuid.New().String(),
		Algorithm: variant.String(),
		Status:    StatusFailed,
		CreatedAt: time.Now().UTC(),
	}

	constraints := NewUnitConstraints(n)

	var weights []float64
	var err error
	switch variant {
	case VariantQAOA:
		weights, err = o.solveQAOA(p, sigma, constraints)
	case VariantVQE:
		weights, err = o.solveVQE(p, sigma, constraints)
	default:
		return OptimizationResult{}, fmt.Errorf("unhandled variant: %v", variant)
	}
	if err != nil {
		o.log.Warn().Err(err).Str("algorithm", variant.String()).Msg("Optimization failed")
		result.Error = err.Error()
		return result, nil
	}

	value := Score(weights, p.Returns, sigma, p.RiskFactor)
	if math.IsNaN(value) || math.IsInf(value, 0) {
		result.Error = fmt.Sprintf("objective evaluated to %v", value)
		return result, nil
	}

	result.Weights = weights
	result.ObjectiveValue = &value
	result.Status = StatusSuccess

	o.log.Debug().
		Str("algorithm", variant.String()).
		Int("num_assets", n).
		Float64("objective_value", value).
		Msg("Optimization completed")

	return result, nil
}

// solveQAOA is the QAOA-labeled variant: uniform 1/N initial guess and a
// solve that encodes the budget equality as a quadratic penalty, so both the
// bounds and the sum-to-one constraint are honored on success.
func (o *Optimizer) solveQAOA(p Problem, sigma *mat.Dense, cons ConstraintSet) ([]float64, error) {
	n := len(p.Assets)
	problem := o.buildProblem(p, sigma, cons, true)

	initial := make([]float64, n)
	for i := range initial {
		initial[i] = 1.0 / float64(n)
	}

	x, err := o.minimize(problem, initial, &optimize.NelderMead{}, &optimize.BFGS{})
	if err != nil {
		return nil, err
	}

	// Project the solution to bounds and renormalize so the budget
	// constraint holds exactly, matching the penalty solve's intent.
	xFinal := cons.Project(x)
	sum := 0.0
	for _, w := range xFinal {
		sum += w
	}
	weights := make([]float64, n)
	for i := range xFinal {
		weights[i] = math.Max(0.0, xFinal[i]/math.Max(sum, varianceFloor))
	}
	sum = 0.0
	for _, w := range weights {
		sum += w
	}
	if sum > 0 {
		for i := range weights {
			weights[i] /= sum
		}
	}
	return weights, nil
}

// solveVQE is the VQE-labeled variant: seeded pseudorandom initial guess
// normalized to sum one, solved with L-BFGS under bound constraints only.
// The budget equality in cons is received but not encoded into the solve —
// this solver family does not support it, and the behavior is preserved
// deliberately; allocation post-processing restores a sum-to-one
// presentation.
func (o *Optimizer) solveVQE(p Problem, sigma *mat.Dense, cons ConstraintSet) ([]float64, error) {
	n := len(p.Assets)
	problem := o.buildProblem(p, sigma, cons, false)

	rng := rand.New(rand.NewPCG(o.vqeSeed, o.vqeSeed))
	initial := make([]float64, n)
	sum := 0.0
	for i := range initial {
		initial[i] = rng.Float64()
		sum += initial[i]
	}
	for i := range initial {
		initial[i] /= sum
	}

	x, err := o.minimize(problem, initial, &optimize.LBFGS{}, &optimize.NelderMead{})
	if err != nil {
		return nil, err
	}

	// Bounds are enforced hard; the weight sum is whatever the solve
	// produced.
	return cons.Project(x), nil
}

// buildProblem assembles the unconstrained solver objective. The score is
// always evaluated at the bound-projected point, with a quadratic wall on the
// distance to the bound box. The budget equality penalty is included only
// when requested.
//
// Grad must be the exact gradient of Func: the projection freezes clamped
// coordinates, so their score and budget contributions are zero and only the
// wall term remains. Reporting a gradient inconsistent with the projected
// evaluation stalls quasi-Newton line searches at the bounds.
func (o *Optimizer) buildProblem(p Problem, sigma *mat.Dense, cons ConstraintSet, withBudget bool) optimize.Problem {
	return optimize.Problem{
		Func: func(x []float64) float64 {
			xProj := cons.Project(x)
			obj := -Score(xProj, p.Returns, sigma, p.RiskFactor)
			for i := range x {
				d := x[i] - xProj[i]
				obj += penaltyWeight * d * d
			}
			if withBudget {
				v := cons.BudgetViolation(xProj)
				obj += penaltyWeight * v * v
			}
			return obj
		},
		Grad: func(grad, x []float64) {
			xProj := cons.Project(x)
			scoreGradient(grad, xProj, p.Returns, sigma, p.RiskFactor)
			for i := range x {
				if x[i] != xProj[i] {
					grad[i] = 0
				}
				grad[i] += 2 * penaltyWeight * (x[i] - xProj[i])
			}
			if withBudget {
				v := cons.BudgetViolation(xProj)
				for i := range grad {
					if x[i] == xProj[i] {
						grad[i] += 2 * penaltyWeight * v
					}
				}
			}
		},
	}
}

// minimize runs the solver, retrying once with the fallback method when the
// primary run errors or terminates without convergence.
func (o *Optimizer) minimize(problem optimize.Problem, initial []float64, method, fallback optimize.Method) ([]float64, error) {
	result, err := optimize.Minimize(problem, initial, &optimize.Settings{}, method)
	if err == nil && successStatuses[result.Status] {
		return result.X, nil
	}

	if fallback == nil {
		if err != nil {
			return nil, fmt.Errorf("optimization failed: %w", err)
		}
		return nil, fmt.Errorf("optimization did not converge: status=%v", result.Status)
	}

	result, err = optimize.Minimize(problem, initial, &optimize.Settings{}, fallback)
	if err != nil {
		return nil, fmt.Errorf("optimization failed: %w", err)
	}
	if !successStatuses[result.Status] {
		return nil, fmt.Errorf("optimization did not converge: status=%v", result.Status)
	}
	return result.X, nil
}

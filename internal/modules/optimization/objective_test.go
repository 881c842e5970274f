package optimization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestScore_KnownValue(t *testing.T) {
	// w = [0.5, 0.5], r = [0.10, 0.02], Σ = I:
	// score = 0.06 − 0.5·sqrt(0.5) ≈ −0.29355
	sigma := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	score := Score([]float64{0.5, 0.5}, []float64{0.10, 0.02}, sigma, 0.5)

	assert.InDelta(t, 0.06-0.5*0.7071067811865476, score, 1e-12)
}

func TestScore_ZeroRiskFactorIgnoresCovariance(t *testing.T) {
	sigma := mat.NewDense(2, 2, []float64{5, 3, 3, 5})
	score := Score([]float64{0.3, 0.7}, []float64{0.10, 0.02}, sigma, 0.0)

	assert.InDelta(t, 0.3*0.10+0.7*0.02, score, 1e-12)
}

func TestScore_NegativeRadicandClampsToZero(t *testing.T) {
	// An indefinite matrix can drive wᵀΣw negative; the clamp must keep the
	// score finite and equal to the pure return term.
	sigma := mat.NewDense(2, 2, []float64{-1, 0, 0, -1})
	score := Score([]float64{0.5, 0.5}, []float64{0.08, 0.04}, sigma, 0.5)

	assert.InDelta(t, 0.06, score, 1e-12)
}

func TestScoreGradient_MatchesFiniteDifference(t *testing.T) {
	sigma := mat.NewDense(3, 3, []float64{
		1.0, 0.2, 0.1,
		0.2, 1.0, 0.3,
		0.1, 0.3, 1.0,
	})
	returns := []float64{0.08, 0.05, 0.11}
	w := []float64{0.2, 0.3, 0.5}
	riskFactor := 0.5

	grad := make([]float64, 3)
	scoreGradient(grad, w, returns, sigma, riskFactor)

	const h = 1e-7
	for i := range w {
		bumped := append([]float64{}, w...)
		bumped[i] += h
		numeric := (-Score(bumped, returns, sigma, riskFactor) - -Score(w, returns, sigma, riskFactor)) / h
		assert.InDelta(t, numeric, grad[i], 1e-4, "component %d", i)
	}
}

func TestConstraintSet_Project(t *testing.T) {
	cons := NewUnitConstraints(3)

	proj := cons.Project([]float64{-0.5, 0.4, 1.7})
	assert.Equal(t, []float64{0.0, 0.4, 1.0}, proj)
}

func TestConstraintSet_Budget(t *testing.T) {
	cons := NewUnitConstraints(2)

	assert.InDelta(t, 0.0, cons.BudgetViolation([]float64{0.4, 0.6}), 1e-12)
	assert.True(t, cons.BudgetSatisfied([]float64{0.4, 0.6}))
	assert.False(t, cons.BudgetSatisfied([]float64{0.4, 0.7}))
	assert.InDelta(t, 0.1, cons.BudgetViolation([]float64{0.4, 0.7}), 1e-12)
}

func TestProblem_Validate(t *testing.T) {
	valid := Problem{
		Assets:     []string{"A", "B"},
		Returns:    []float64{0.1, 0.2},
		Covariance: [][]float64{{1, 0}, {0, 1}},
		RiskFactor: 0.5,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		mutate  func(p *Problem)
		wantErr string
	}{
		{"no assets", func(p *Problem) { p.Assets = nil }, "no assets"},
		{"returns mismatch", func(p *Problem) { p.Returns = []float64{0.1} }, "returns length"},
		{"covariance rows", func(p *Problem) { p.Covariance = [][]float64{{1, 0}} }, "covariance matrix size"},
		{"covariance columns", func(p *Problem) { p.Covariance = [][]float64{{1}, {0, 1}} }, "row 0"},
		{"negative risk factor", func(p *Problem) { p.RiskFactor = -0.1 }, "risk factor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseVariant(t *testing.T) {
	for _, s := range []string{"QAOA", "qaoa", " QaOa "} {
		v, ok := ParseVariant(s)
		require.True(t, ok, s)
		assert.Equal(t, VariantQAOA, v)
	}

	v, ok := ParseVariant("vqe")
	require.True(t, ok)
	assert.Equal(t, VariantVQE, v)

	_, ok = ParseVariant("grover")
	assert.False(t, ok)
}

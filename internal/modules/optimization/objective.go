package optimization

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// varianceFloor guards divisions by the portfolio standard deviation when the
// variance collapses to zero (e.g. an all-zero weight vector).
const varianceFloor = 1e-10

// Score computes the risk-adjusted portfolio score w·r − λ·sqrt(wᵀΣw).
// The radicand is clamped at zero before the square root: numerical noise in
// a near-singular covariance can drive wᵀΣw slightly negative, and a NaN here
// would poison the whole solve.
func Score(w, returns []float64, sigma *mat.Dense, riskFactor float64) float64 {
	wv := mat.NewVecDense(len(w), w)
	rv := mat.NewVecDense(len(returns), returns)

	portfolioReturn := mat.Dot(wv, rv)

	var sw mat.VecDense
	sw.MulVec(sigma, wv)
	variance := math.Max(mat.Dot(wv, &sw), 0)

	return portfolioReturn - riskFactor*math.Sqrt(variance)
}

// scoreGradient writes the gradient of −Score into grad:
//
//	∂/∂w_i [−(w·r − λ·sqrt(wᵀΣw))] = −r_i + λ·(Σw)_i / sqrt(wᵀΣw)
//
// The standard deviation in the denominator is floored to keep the gradient
// finite at degenerate points.
func scoreGradient(grad, w, returns []float64, sigma *mat.Dense, riskFactor float64) {
	wv := mat.NewVecDense(len(w), w)

	var sw mat.VecDense
	sw.MulVec(sigma, wv)
	variance := math.Max(mat.Dot(wv, &sw), 0)
	stdDev := math.Sqrt(math.Max(variance, varianceFloor))

	for i := range w {
		grad[i] = -returns[i] + riskFactor*sw.AtVec(i)/stdDev
	}
}

// Package market supplies mock market data for a fixed asset universe:
// expected returns and a covariance matrix, generated from an explicit seed.
package market

import (
	"math/rand/v2"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultSeed is the standard seed for the mock market. A named constant so
// callers opt into it explicitly instead of relying on hidden process-wide
// RNG state.
const DefaultSeed uint64 = 42

// Return distribution parameters for the mock generator.
const (
	ReturnMean   = 0.08
	ReturnStdDev = 0.15
)

// DefaultUniverse is the 8-symbol asset universe used as the standard
// fixture by the CLI and service layers.
var DefaultUniverse = []string{"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA", "NVDA", "JPM", "JNJ"}

// Snapshot holds one generated market view for an asset universe.
type Snapshot struct {
	Assets     []string
	Returns    []float64
	Covariance [][]float64
}

// Generator produces reproducible market snapshots. Every call to Snapshot
// reseeds, so a generator with a given seed always produces the same data.
type Generator struct {
	seed uint64
	log  zerolog.Logger
}

// NewGenerator creates a market data generator with an explicit seed.
func NewGenerator(seed uint64, log zerolog.Logger) *Generator {
	return &Generator{
		seed: seed,
		log:  log.With().Str("component", "market").Logger(),
	}
}

// Snapshot generates expected returns and a covariance matrix for the given
// asset universe. Returns are drawn from Normal(ReturnMean, ReturnStdDev);
// the covariance matrix is symmetric with diagonal entries fixed at 1.0.
func (g *Generator) Snapshot(assets []string) Snapshot {
	n := len(assets)
	rng := rand.New(rand.NewPCG(g.seed, g.seed))

	normal := distuv.Normal{
		Mu:    ReturnMean,
		Sigma: ReturnStdDev,
		Src:   rng,
	}

	returns := make([]float64, n)
	for i := range returns {
		returns[i] = normal.Rand()
	}

	covariance := g.riskModel(n, rng)

	g.log.Debug().
		Int("num_assets", n).
		Uint64("seed", g.seed).
		Msg("Generated market snapshot")

	return Snapshot{
		Assets:     assets,
		Returns:    returns,
		Covariance: covariance,
	}
}

// riskModel builds a symmetric pseudo-correlation matrix with unit diagonal
// from uniform draws: C = (M + Mᵀ)/2 with C[i][i] = 1.
func (g *Generator) riskModel(n int, rng *rand.Rand) [][]float64 {
	raw := make([][]float64, n)
	for i := range raw {
		raw[i] = make([]float64, n)
		for j := range raw[i] {
			raw[i][j] = rng.Float64()
		}
	}

	cov := make([][]float64, n)
	for i := range cov {
		cov[i] = make([]float64, n)
		for j := range cov[i] {
			cov[i][j] = (raw[i][j] + raw[j][i]) / 2
		}
		cov[i][i] = 1.0
	}
	return cov
}

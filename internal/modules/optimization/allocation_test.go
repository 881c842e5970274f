package optimization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessAllocation_PercentagesSumToHundred(t *testing.T) {
	weights := []float64{0.4, 0.3, 0.2, 0.1}
	assets := []string{"A", "B", "C", "D"}

	allocation := ProcessAllocation(weights, assets)
	require.Len(t, allocation, 4)

	sum := 0.0
	for _, entry := range allocation {
		sum += entry.Percentage
	}
	assert.InDelta(t, 100.0, sum, 1e-9)
}

func TestProcessAllocation_SortedDescending(t *testing.T) {
	weights := []float64{0.1, 0.5, 0.2, 0.2}
	assets := []string{"A", "B", "C", "D"}

	allocation := ProcessAllocation(weights, assets)
	require.Len(t, allocation, 4)

	assert.Equal(t, "B", allocation[0].Asset)
	for i := 1; i < len(allocation); i++ {
		assert.GreaterOrEqual(t, allocation[i-1].Percentage, allocation[i].Percentage)
	}
	// Ties keep original asset order.
	assert.Equal(t, "C", allocation[1].Asset)
	assert.Equal(t, "D", allocation[2].Asset)
}

func TestProcessAllocation_DropsImmaterialWeights(t *testing.T) {
	weights := []float64{0.99, 0.01, 0.005}
	assets := []string{"BIG", "EDGE", "DUST"}

	allocation := ProcessAllocation(weights, assets)

	// Weights at or below the threshold are dropped, including the exact
	// boundary value.
	require.Len(t, allocation, 1)
	assert.Equal(t, "BIG", allocation[0].Asset)
	// Percentages are shares of the full weight total, dropped entries
	// included, so the remaining entries do not re-sum to 100.
	assert.InDelta(t, 0.99/1.005*100, allocation[0].Percentage, 1e-9)
}

func TestProcessAllocation_ZeroTotalYieldsEmpty(t *testing.T) {
	allocation := ProcessAllocation([]float64{0, 0, 0}, []string{"A", "B", "C"})
	assert.Empty(t, allocation)
}

func TestProcessAllocation_NegativeTotalYieldsEmpty(t *testing.T) {
	allocation := ProcessAllocation([]float64{-0.5, 0.2}, []string{"A", "B"})
	assert.Empty(t, allocation)
}

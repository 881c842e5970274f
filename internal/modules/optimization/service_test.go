package optimization

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureRecorder collects recorded results for assertions.
type captureRecorder struct {
	results     []OptimizationResult
	allocations []Allocation
}

func (c *captureRecorder) Record(result OptimizationResult, allocation Allocation) error {
	c.results = append(c.results, result)
	c.allocations = append(c.allocations, allocation)
	return nil
}

func newTestService() *Service {
	return NewService(NewOptimizer(zerolog.Nop()), zerolog.Nop())
}

func TestPredict_UnknownAlgorithmReturnsNil(t *testing.T) {
	service := newTestService()
	p := testProblem(4)

	result, err := service.Predict(p.Assets, p.Returns, p.Covariance, p.RiskFactor, "grover")

	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestPredict_SuccessfulRun(t *testing.T) {
	service := newTestService()
	p := testProblem(4)

	result, err := service.Predict(p.Assets, p.Returns, p.Covariance, p.RiskFactor, "qaoa")

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, "QAOA", result.Algorithm)
	assert.Len(t, result.Weights, 4)
}

func TestPredict_RecordsResult(t *testing.T) {
	service := newTestService()
	recorder := &captureRecorder{}
	service.SetRecorder(recorder)
	p := testProblem(4)

	result, err := service.Predict(p.Assets, p.Returns, p.Covariance, p.RiskFactor, "VQE")

	require.NoError(t, err)
	require.NotNil(t, result)
	require.Len(t, recorder.results, 1)
	assert.Equal(t, result.ID, recorder.results[0].ID)
	assert.NotEmpty(t, recorder.allocations[0])
}

func TestPredict_DimensionMismatchReturnsError(t *testing.T) {
	service := newTestService()

	_, err := service.Predict([]string{"A", "B"}, []float64{0.1}, identityCovariance(2), 0.5, "QAOA")

	require.Error(t, err)
}

func TestToAllocation_FailedResultYieldsEmpty(t *testing.T) {
	service := newTestService()

	failed := &OptimizationResult{Status: StatusFailed, Error: "did not converge"}
	assert.Empty(t, service.ToAllocation(failed, []string{"A"}))
	assert.Empty(t, service.ToAllocation(nil, []string{"A"}))
}

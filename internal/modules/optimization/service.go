package optimization

import (
	"github.com/rs/zerolog"
)

// Recorder persists completed optimization results for later inspection.
// Used to avoid a direct dependency on the predictions module.
type Recorder interface {
	Record(result OptimizationResult, allocation Allocation) error
}

// Service is the core-facing entry point exposed to the CLI and HTTP layers.
// It dispatches string algorithm identifiers onto the closed Variant enum and
// post-processes solutions into allocations.
type Service struct {
	optimizer *Optimizer
	recorder  Recorder
	log       zerolog.Logger
}

// NewService creates a new optimization service.
func NewService(optimizer *Optimizer, log zerolog.Logger) *Service {
	return &Service{
		optimizer: optimizer,
		log:       log.With().Str("component", "optimization").Logger(),
	}
}

// SetRecorder sets the prediction history recorder. Optional - when unset,
// results are not persisted.
func (s *Service) SetRecorder(r Recorder) {
	s.recorder = r
}

// Predict runs the algorithm identified by name over the supplied market
// data. Unknown algorithm identifiers return a nil result and no error - an
// absent value that callers must treat as a usage error, distinct from a
// Failed solve.
func (s *Service) Predict(assets []string, returns []float64, covariance [][]float64, riskFactor float64, algorithm string) (*OptimizationResult, error) {
	variant, ok := ParseVariant(algorithm)
	if !ok {
		s.log.Error().Str("algorithm", algorithm).Msg("Unknown algorithm")
		return nil, nil
	}

	problem := Problem{
		Assets:     assets,
		Returns:    returns,
		Covariance: covariance,
		RiskFactor: riskFactor,
	}

	result, err := s.optimizer.Solve(problem, variant)
	if err != nil {
		return nil, err
	}

	if s.recorder != nil {
		allocation := s.ToAllocation(&result, assets)
		if err := s.recorder.Record(result, allocation); err != nil {
			s.log.Warn().Err(err).Str("id", result.ID).Msg("Failed to record prediction")
		}
	}

	return &result, nil
}

// ToAllocation converts a result into an allocation list. Failed or absent
// results yield an empty allocation.
func (s *Service) ToAllocation(result *OptimizationResult, assets []string) Allocation {
	if result == nil || result.Status != StatusSuccess {
		return Allocation{}
	}
	return ProcessAllocation(result.Weights, assets)
}

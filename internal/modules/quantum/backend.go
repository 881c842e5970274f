// Package quantum provides the simulated quantum backend connection used by
// the prediction pipeline. No circuit computation happens here: the backend
// exists to surface the connection and progress logging the product shows
// while the classical solve runs.
package quantum

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// BackendName is the name of the simulated backend.
const BackendName = "qasm_simulator"

// stageCounts maps algorithm labels to the number of progress stages the
// backend reports while a solve is in flight.
var stageCounts = map[string]int{
	"QAOA": 3,
	"VQE":  5,
}

// Backend is a simulated quantum backend connection. The latency controls
// the pacing of the connection and stage logs; it is zero by default so
// tests and the HTTP service are not slowed down.
type Backend struct {
	name    string
	latency time.Duration
	log     zerolog.Logger
}

// NewBackend creates a backend with zero latency.
func NewBackend(log zerolog.Logger) *Backend {
	return &Backend{
		name: BackendName,
		log:  log.With().Str("component", "quantum").Logger(),
	}
}

// WithLatency returns a copy of the backend that pauses for d between
// progress stages. Used by the CLI to pace its output.
func (b *Backend) WithLatency(d time.Duration) *Backend {
	clone := *b
	clone.latency = d
	return &clone
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return b.name
}

// Connect simulates establishing the backend connection.
func (b *Backend) Connect(ctx context.Context) error {
	b.log.Info().Msg("Connecting to quantum servers...")
	if err := b.pause(ctx); err != nil {
		return err
	}
	b.log.Info().Str("backend", b.name).Msg("Connected to quantum backend")
	return nil
}

// PrepareCircuit logs the circuit setup for the given algorithm.
func (b *Backend) PrepareCircuit(algorithm string, numQubits int) {
	b.log.Info().
		Str("algorithm", algorithm).
		Int("qubits", numQubits).
		Msg("Preparing quantum circuit")
	b.log.Info().Msg("Encoding portfolio constraints into quantum gates...")
}

// RunStages reports the per-stage progress for the given algorithm while the
// classical solve runs. Unknown labels report a single stage.
func (b *Backend) RunStages(ctx context.Context, algorithm string) error {
	stages := stageCounts[algorithm]
	if stages == 0 {
		stages = 1
	}
	for i := 1; i <= stages; i++ {
		b.log.Info().
			Str("algorithm", algorithm).
			Int("stage", i).
			Int("total", stages).
			Msg("Measuring quantum states")
		if err := b.pause(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (b *Backend) pause(ctx context.Context) error {
	if b.latency <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(b.latency):
		return nil
	}
}

// Package predictions persists the history of optimization results.
package predictions

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/quantumfolio/quantumfolio/internal/modules/optimization"
)

// Prediction is one stored optimization run with its processed allocation.
type Prediction struct {
	ID             string                  `json:"id"`
	Algorithm      string                  `json:"algorithm"`
	Status         string                  `json:"status"`
	ObjectiveValue *float64                `json:"objective_value,omitempty"`
	Error          string                  `json:"error,omitempty"`
	Allocation     optimization.Allocation `json:"allocation"`
	CreatedAt      time.Time               `json:"created_at"`
}

// predictionsColumns is the list of columns for the predictions table.
// Used to avoid SELECT * which can break when schema changes.
// Column order must match the scan helpers below.
const predictionsColumns = `id, algorithm, status, objective_value, error, allocation, created_at`

const schema = `
CREATE TABLE IF NOT EXISTS predictions (
	id              TEXT PRIMARY KEY,
	algorithm       TEXT NOT NULL,
	status          TEXT NOT NULL,
	objective_value REAL,
	error           TEXT,
	allocation      BLOB,
	created_at      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at DESC);
`

// Repository handles prediction database operations. It satisfies
// optimization.Recorder so the service can persist results without importing
// this package.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a prediction repository and ensures its schema.
func NewRepository(db *sql.DB, log zerolog.Logger) (*Repository, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create predictions schema: %w", err)
	}
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "predictions").Logger(),
	}, nil
}

// Record stores a finished optimization result. Implements
// optimization.Recorder.
func (r *Repository) Record(result optimization.OptimizationResult, allocation optimization.Allocation) error {
	return r.Create(Prediction{
		ID:             result.ID,
		Algorithm:      result.Algorithm,
		Status:         string(result.Status),
		ObjectiveValue: result.ObjectiveValue,
		Error:          result.Error,
		Allocation:     allocation,
		CreatedAt:      result.CreatedAt,
	})
}

// Create inserts a new prediction record.
func (r *Repository) Create(p Prediction) error {
	blob, err := msgpack.Marshal(p.Allocation)
	if err != nil {
		return fmt.Errorf("failed to encode allocation: %w", err)
	}

	query := `
		INSERT INTO predictions
		(id, algorithm, status, objective_value, error, allocation, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query,
		p.ID,
		p.Algorithm,
		p.Status,
		nullFloat64Ptr(p.ObjectiveValue),
		nullString(p.Error),
		blob,
		p.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to create prediction: %w", err)
	}

	r.log.Debug().
		Str("id", p.ID).
		Str("algorithm", p.Algorithm).
		Str("status", p.Status).
		Msg("Prediction recorded")

	return nil
}

// GetByID retrieves a prediction by ID. Returns nil when not found.
func (r *Repository) GetByID(id string) (*Prediction, error) {
	query := "SELECT " + predictionsColumns + " FROM predictions WHERE id = ?"
	p, err := scanPrediction(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}
	return p, nil
}

// List returns the most recent predictions, newest first.
func (r *Repository) List(limit int) ([]Prediction, error) {
	if limit <= 0 {
		limit = 50
	}

	query := "SELECT " + predictionsColumns + " FROM predictions ORDER BY created_at DESC, id LIMIT ?"
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	defer rows.Close()

	predictions := make([]Prediction, 0, limit)
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		predictions = append(predictions, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating predictions: %w", err)
	}
	return predictions, nil
}

// scanner matches both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPrediction(s scanner) (*Prediction, error) {
	var p Prediction
	var objective sql.NullFloat64
	var errMsg sql.NullString
	var blob []byte
	var createdAt int64

	if err := s.Scan(&p.ID, &p.Algorithm, &p.Status, &objective, &errMsg, &blob, &createdAt); err != nil {
		return nil, err
	}

	if objective.Valid {
		p.ObjectiveValue = &objective.Float64
	}
	if errMsg.Valid {
		p.Error = errMsg.String
	}
	if len(blob) > 0 {
		if err := msgpack.Unmarshal(blob, &p.Allocation); err != nil {
			return nil, fmt.Errorf("failed to decode allocation: %w", err)
		}
	}
	p.CreatedAt = time.Unix(createdAt, 0).UTC()

	return &p, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat64Ptr(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

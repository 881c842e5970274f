package predictions

import (
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/quantumfolio/quantumfolio/internal/modules/optimization"
)

func setupTestRepo(t *testing.T) *Repository {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := NewRepository(db, zerolog.Nop())
	require.NoError(t, err)
	return repo
}

func testPrediction(id string, createdAt time.Time) Prediction {
	objective := 0.042
	return Prediction{
		ID:             id,
		Algorithm:      "QAOA",
		Status:         "success",
		ObjectiveValue: &objective,
		Allocation: optimization.Allocation{
			{Asset: "AAPL", Percentage: 60.5},
			{Asset: "MSFT", Percentage: 39.5},
		},
		CreatedAt: createdAt,
	}
}

func TestRepository_CreateAndGetByID(t *testing.T) {
	repo := setupTestRepo(t)
	createdAt := time.Date(2026, time.August, 25, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(testPrediction("pred-1", createdAt)))

	got, err := repo.GetByID("pred-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "pred-1", got.ID)
	assert.Equal(t, "QAOA", got.Algorithm)
	assert.Equal(t, "success", got.Status)
	require.NotNil(t, got.ObjectiveValue)
	assert.InDelta(t, 0.042, *got.ObjectiveValue, 1e-12)
	assert.Empty(t, got.Error)
	require.Len(t, got.Allocation, 2)
	assert.Equal(t, "AAPL", got.Allocation[0].Asset)
	assert.InDelta(t, 60.5, got.Allocation[0].Percentage, 1e-12)
	assert.True(t, got.CreatedAt.Equal(createdAt))
}

func TestRepository_GetByIDMissingReturnsNil(t *testing.T) {
	repo := setupTestRepo(t)

	got, err := repo.GetByID("nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRepository_FailedRunStoredWithoutAllocation(t *testing.T) {
	repo := setupTestRepo(t)

	p := Prediction{
		ID:        "pred-failed",
		Algorithm: "VQE",
		Status:    "failed",
		Error:     "optimization did not converge",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(p))

	got, err := repo.GetByID("pred-failed")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Nil(t, got.ObjectiveValue)
	assert.Equal(t, "optimization did not converge", got.Error)
	assert.Empty(t, got.Allocation)
}

func TestRepository_ListNewestFirst(t *testing.T) {
	repo := setupTestRepo(t)
	base := time.Date(2026, time.August, 25, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, repo.Create(testPrediction(id, base.Add(time.Duration(i)*time.Hour))))
	}

	list, err := repo.List(10)
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "mid", list[1].ID)
	assert.Equal(t, "old", list[2].ID)
}

func TestRepository_ListHonorsLimit(t *testing.T) {
	repo := setupTestRepo(t)
	base := time.Date(2026, time.August, 25, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(testPrediction(
			string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute))))
	}

	list, err := repo.List(2)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	// Non-positive limits fall back to the default.
	list, err = repo.List(0)
	require.NoError(t, err)
	assert.Len(t, list, 5)
}

func TestRepository_RecordImplementsRecorder(t *testing.T) {
	repo := setupTestRepo(t)
	var _ optimization.Recorder = repo

	objective := 0.1
	result := optimization.OptimizationResult{
		ID:             "rec-1",
		Algorithm:      "VQE",
		ObjectiveValue: &objective,
		Status:         optimization.StatusSuccess,
		CreatedAt:      time.Now().UTC(),
	}
	allocation := optimization.Allocation{{Asset: "NVDA", Percentage: 100}}

	require.NoError(t, repo.Record(result, allocation))

	got, err := repo.GetByID("rec-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "VQE", got.Algorithm)
	assert.Equal(t, string(optimization.StatusSuccess), got.Status)
	require.Len(t, got.Allocation, 1)
	assert.Equal(t, "NVDA", got.Allocation[0].Asset)
}

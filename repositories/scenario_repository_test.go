package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/checkmarble/datalab/models"

	"github.com/cockroachdb/errors"
	"github.com/guregu/null/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scenarioColumns = []string{
	"id", "comparison_id", "name", "description", "scenario_type",
	"source_type", "source_id", "data_snapshot", "created_at", "updated_at",
}

func TestScenarioRepository_GetScenario(t *testing.T) {
	createdAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	snapshot := []byte(`{"config":{"columns":["amount"]},"data":[{"amount":12.5}],"taken_at":"2024-03-02T10:00:00Z"}`)

	t.Run("with snapshot", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, comparison_id, name, description, scenario_type, source_type, " +
			"source_id, data_snapshot, created_at, updated_at FROM scenarios WHERE id = $1")).
			WithArgs("scenario-1").
			WillReturnRows(pgxmock.NewRows(scenarioColumns).
				AddRow("scenario-1", "comparison-1", "Q1", nil, "base", "table", "sales", snapshot, createdAt, createdAt))

		repo := ScenarioRepositoryPostgresql{}
		scenario, err := repo.GetScenario(context.Background(), mock, "scenario-1")
		require.NoError(t, err)

		assert.Equal(t, models.ScenarioTypeBase, scenario.Type)
		assert.Equal(t, models.SourceTypeTable, scenario.Source.SourceType())
		assert.Equal(t, "sales", scenario.Source.SourceId())
		assert.False(t, scenario.Description.Valid)
		require.True(t, scenario.HasSnapshot())
		assert.Equal(t, []models.Row{{"amount": 12.5}}, scenario.Snapshot.Data)
		assert.Equal(t, time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC), scenario.Snapshot.TakenAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("without snapshot", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(regexp.QuoteMeta("FROM scenarios WHERE id = $1")).
			WithArgs("scenario-2").
			WillReturnRows(pgxmock.NewRows(scenarioColumns).
				AddRow("scenario-2", "comparison-1", "file", "from upload", "base", "csv", "q2.csv", nil, createdAt, createdAt))

		repo := ScenarioRepositoryPostgresql{}
		scenario, err := repo.GetScenario(context.Background(), mock, "scenario-2")
		require.NoError(t, err)
		assert.False(t, scenario.HasSnapshot())
		assert.Equal(t, models.CsvSource{Path: "q2.csv"}, scenario.Source)
		assert.Equal(t, null.StringFrom("from upload"), scenario.Description)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(regexp.QuoteMeta("FROM scenarios WHERE id = $1")).
			WithArgs("missing").
			WillReturnRows(pgxmock.NewRows(scenarioColumns))

		repo := ScenarioRepositoryPostgresql{}
		_, err = repo.GetScenario(context.Background(), mock, "missing")
		assert.True(t, errors.Is(err, models.NotFoundError))
	})
}

func TestScenarioRepository_CreateScenario(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO scenarios (id,comparison_id,name,description,scenario_type," +
		"source_type,source_id,data_snapshot) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)")).
		WithArgs("scenario-1", "comparison-1", "Q1", pgxmock.AnyArg(), "base", "table", "sales", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := ScenarioRepositoryPostgresql{}
	err = repo.CreateScenario(context.Background(), mock, "scenario-1", models.CreateScenarioInput{
		ComparisonId: "comparison-1",
		Name:         "Q1",
		Type:         models.ScenarioTypeBase,
		Source:       models.TableSource{Dataset: mustDatasetName(t, "sales")},
	}, nil)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScenarioRepository_UpdateScenarioSnapshot(t *testing.T) {
	snapshot := models.ScenarioSnapshot{
		Config:  map[string]any{"columns": []string{"amount"}},
		Data:    []models.Row{{"amount": 1.0}},
		TakenAt: time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC),
	}

	t.Run("nominal", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(regexp.QuoteMeta("UPDATE scenarios SET data_snapshot = $1, updated_at = NOW() WHERE id = $2")).
			WithArgs(
				[]byte(`{"config":{"columns":["amount"]},"data":[{"amount":1}],"taken_at":"2024-03-02T10:00:00Z"}`),
				"scenario-1",
			).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := ScenarioRepositoryPostgresql{}
		assert.NoError(t, repo.UpdateScenarioSnapshot(context.Background(), mock, "scenario-1", snapshot))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown scenario", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(regexp.QuoteMeta("UPDATE scenarios")).
			WithArgs(pgxmock.AnyArg(), "missing").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := ScenarioRepositoryPostgresql{}
		err = repo.UpdateScenarioSnapshot(context.Background(), mock, "missing", snapshot)
		assert.True(t, errors.Is(err, models.NotFoundError))
	})
}

func TestScenarioRepository_DeleteScenarioComparison(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM scenario_comparisons WHERE id = $1")).
		WithArgs("comparison-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	repo := ScenarioRepositoryPostgresql{}
	assert.NoError(t, repo.DeleteScenarioComparison(context.Background(), mock, "comparison-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

package repositories

import (
	"context"
	"encoding/json"

	"github.com/checkmarble/datalab/models"
	"github.com/checkmarble/datalab/repositories/dbmodels"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
)

type ScenarioRepository interface {
	CreateScenarioComparison(ctx context.Context, exec Executor, id string, input models.CreateScenarioComparisonInput) error
	GetScenarioComparison(ctx context.Context, exec Executor, id string) (models.ScenarioComparison, error)
	ListScenarioComparisons(ctx context.Context, exec Executor, ownerId string) ([]models.ScenarioComparison, error)
	DeleteScenarioComparison(ctx context.Context, exec Executor, id string) error

	CreateScenario(ctx context.Context, exec Executor, id string, input models.CreateScenarioInput, snapshot *models.ScenarioSnapshot) error
	GetScenario(ctx context.Context, exec Executor, id string) (models.Scenario, error)
	ListScenariosOfComparison(ctx context.Context, exec Executor, comparisonId string) ([]models.Scenario, error)
	UpdateScenarioSnapshot(ctx context.Context, exec Executor, id string, snapshot models.ScenarioSnapshot) error
}

type ScenarioRepositoryPostgresql struct{}

func marshalJsonb(value any) ([]byte, error) {
	if value == nil {
		return nil, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, errors.Wrap(err, "can't marshal jsonb value")
	}
	return raw, nil
}

func (repo *ScenarioRepositoryPostgresql) CreateScenarioComparison(
	ctx context.Context,
	exec Executor,
	id string,
	input models.CreateScenarioComparisonInput,
) error {
	config := input.Config
	if config == nil {
		config = map[string]any{}
	}
	rawConfig, err := marshalJsonb(config)
	if err != nil {
		return err
	}

	_, err = ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Insert(dbmodels.TABLE_SCENARIO_COMPARISONS).
			Columns("id", "owner_id", "name", "config").
			Values(id, input.OwnerId, input.Name, rawConfig),
	)
	return err
}

func (repo *ScenarioRepositoryPostgresql) GetScenarioComparison(
	ctx context.Context,
	exec Executor,
	id string,
) (models.ScenarioComparison, error) {
	return SqlToModel(
		ctx,
		exec,
		NewQueryBuilder().
			Select(dbmodels.SelectScenarioComparisonColumns...).
			From(dbmodels.TABLE_SCENARIO_COMPARISONS).
			Where(squirrel.Eq{"id": id}),
		dbmodels.AdaptScenarioComparison,
	)
}

func (repo *ScenarioRepositoryPostgresql) ListScenarioComparisons(
	ctx context.Context,
	exec Executor,
	ownerId string,
) ([]models.ScenarioComparison, error) {
	query := NewQueryBuilder().
		Select(dbmodels.SelectScenarioComparisonColumns...).
		From(dbmodels.TABLE_SCENARIO_COMPARISONS).
		OrderBy("created_at DESC")
	if ownerId != "" {
		query = query.Where(squirrel.Eq{"owner_id": ownerId})
	}

	return SqlToListOfModels(ctx, exec, query, dbmodels.AdaptScenarioComparison)
}

// DeleteScenarioComparison also removes the scenarios of the comparison (ON DELETE CASCADE).
func (repo *ScenarioRepositoryPostgresql) DeleteScenarioComparison(ctx context.Context, exec Executor, id string) error {
	deleted, err := ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Delete(dbmodels.TABLE_SCENARIO_COMPARISONS).
			Where(squirrel.Eq{"id": id}),
	)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return errors.Wrapf(models.NotFoundError, "scenario comparison %s", id)
	}
	return nil
}

func (repo *ScenarioRepositoryPostgresql) CreateScenario(
	ctx context.Context,
	exec Executor,
	id string,
	input models.CreateScenarioInput,
	snapshot *models.ScenarioSnapshot,
) error {
	var rawSnapshot []byte
	if snapshot != nil {
		var err error
		if rawSnapshot, err = marshalJsonb(snapshot); err != nil {
			return err
		}
	}

	_, err := ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Insert(dbmodels.TABLE_SCENARIOS).
			Columns(
				"id",
				"comparison_id",
				"name",
				"description",
				"scenario_type",
				"source_type",
				"source_id",
				"data_snapshot",
			).
			Values(
				id,
				input.ComparisonId,
				input.Name,
				input.Description,
				string(input.Type),
				string(input.Source.SourceType()),
				input.Source.SourceId(),
				rawSnapshot,
			),
	)
	return err
}

func (repo *ScenarioRepositoryPostgresql) GetScenario(ctx context.Context, exec Executor, id string) (models.Scenario, error) {
	return SqlToModel(
		ctx,
		exec,
		NewQueryBuilder().
			Select(dbmodels.SelectScenarioColumns...).
			From(dbmodels.TABLE_SCENARIOS).
			Where(squirrel.Eq{"id": id}),
		dbmodels.AdaptScenario,
	)
}

func (repo *ScenarioRepositoryPostgresql) ListScenariosOfComparison(
	ctx context.Context,
	exec Executor,
	comparisonId string,
) ([]models.Scenario, error) {
	return SqlToListOfModels(
		ctx,
		exec,
		NewQueryBuilder().
			Select(dbmodels.SelectScenarioColumns...).
			From(dbmodels.TABLE_SCENARIOS).
			Where(squirrel.Eq{"comparison_id": comparisonId}).
			OrderBy("created_at", "id"),
		dbmodels.AdaptScenario,
	)
}

// UpdateScenarioSnapshot replaces the whole snapshot in a single statement. Two concurrent updates of
// the same scenario are resolved as last writer wins.
func (repo *ScenarioRepositoryPostgresql) UpdateScenarioSnapshot(
	ctx context.Context,
	exec Executor,
	id string,
	snapshot models.ScenarioSnapshot,
) error {
	rawSnapshot, err := marshalJsonb(snapshot)
	if err != nil {
		return err
	}

	updated, err := ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Update(dbmodels.TABLE_SCENARIOS).
			Set("data_snapshot", rawSnapshot).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": id}),
	)
	if err != nil {
		return err
	}
	if updated == 0 {
		return errors.Wrapf(models.NotFoundError, "scenario %s", id)
	}
	return nil
}

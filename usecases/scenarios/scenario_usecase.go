package scenarios

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/checkmarble/datalab/models"
	"github.com/checkmarble/datalab/repositories"
	"github.com/checkmarble/datalab/usecases/comparison"
	"github.com/checkmarble/datalab/usecases/executor_factory"
	"github.com/checkmarble/datalab/utils"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type ScenarioRepository interface {
	CreateScenarioComparison(ctx context.Context, exec repositories.Executor, id string, input models.CreateScenarioComparisonInput) error
	GetScenarioComparison(ctx context.Context, exec repositories.Executor, id string) (models.ScenarioComparison, error)
	ListScenarioComparisons(ctx context.Context, exec repositories.Executor, ownerId string) ([]models.ScenarioComparison, error)
	DeleteScenarioComparison(ctx context.Context, exec repositories.Executor, id string) error

	CreateScenario(ctx context.Context, exec repositories.Executor, id string,
		input models.CreateScenarioInput, snapshot *models.ScenarioSnapshot) error
	GetScenario(ctx context.Context, exec repositories.Executor, id string) (models.Scenario, error)
	ListScenariosOfComparison(ctx context.Context, exec repositories.Executor, comparisonId string) ([]models.Scenario, error)
	UpdateScenarioSnapshot(ctx context.Context, exec repositories.Executor, id string, snapshot models.ScenarioSnapshot) error
}

type projector interface {
	Project(ctx context.Context, rows []models.Row, params models.ProjectionParams) (models.ProjectionResult, error)
}

type ScenarioUsecase struct {
	executorFactory    executor_factory.ExecutorFactory
	scenarioRepository ScenarioRepository
	snapshotManager    SnapshotManager
	projectionEngine   projector
}

func NewScenarioUsecase(
	executorFactory executor_factory.ExecutorFactory,
	scenarioRepository ScenarioRepository,
	snapshotManager SnapshotManager,
	projectionEngine projector,
) ScenarioUsecase {
	return ScenarioUsecase{
		executorFactory:    executorFactory,
		scenarioRepository: scenarioRepository,
		snapshotManager:    snapshotManager,
		projectionEngine:   projectionEngine,
	}
}

func (usecase ScenarioUsecase) CreateComparison(
	ctx context.Context,
	input models.CreateScenarioComparisonInput,
) (models.ScenarioComparison, error) {
	if strings.TrimSpace(input.Name) == "" {
		return models.ScenarioComparison{}, errors.Wrap(models.BadParameterError, "comparison name is required")
	}

	exec := usecase.executorFactory.NewExecutor()
	id := uuid.NewString()
	if err := usecase.scenarioRepository.CreateScenarioComparison(ctx, exec, id, input); err != nil {
		return models.ScenarioComparison{}, repositories.AsStorageFailure(err, "could not create comparison")
	}
	comparison, err := usecase.scenarioRepository.GetScenarioComparison(ctx, exec, id)
	if err != nil {
		return models.ScenarioComparison{}, repositories.AsStorageFailure(err, "could not read created comparison")
	}
	comparison.Scenarios = []models.Scenario{}
	return comparison, nil
}

func (usecase ScenarioUsecase) ListComparisons(ctx context.Context, ownerId string) ([]models.ScenarioComparison, error) {
	comparisons, err := usecase.scenarioRepository.ListScenarioComparisons(ctx, usecase.executorFactory.NewExecutor(), ownerId)
	if err != nil {
		return nil, repositories.AsStorageFailure(err, "could not list comparisons")
	}
	return comparisons, nil
}

// GetComparison returns the comparison with its scenarios, oldest first.
func (usecase ScenarioUsecase) GetComparison(ctx context.Context, id string) (models.ScenarioComparison, error) {
	exec := usecase.executorFactory.NewExecutor()
	comparison, err := usecase.scenarioRepository.GetScenarioComparison(ctx, exec, id)
	if err != nil {
		return models.ScenarioComparison{}, repositories.AsStorageFailure(err, fmt.Sprintf("could not read comparison %s", id))
	}
	comparison.Scenarios, err = usecase.scenarioRepository.ListScenariosOfComparison(ctx, exec, id)
	if err != nil {
		return models.ScenarioComparison{}, repositories.AsStorageFailure(err,
			fmt.Sprintf("could not list scenarios of comparison %s", id))
	}
	return comparison, nil
}

// DeleteComparison removes the comparison and all of its scenarios.
func (usecase ScenarioUsecase) DeleteComparison(ctx context.Context, id string) error {
	err := usecase.scenarioRepository.DeleteScenarioComparison(ctx, usecase.executorFactory.NewExecutor(), id)
	if err != nil {
		return repositories.AsStorageFailure(err, fmt.Sprintf("could not delete comparison %s", id))
	}
	utils.LoggerFromContext(ctx).InfoContext(ctx, fmt.Sprintf("deleted comparison %s", id))
	return nil
}

// AddScenario attaches a scenario to a comparison. A manual scenario stores its inline rows as its
// snapshot. Any other scenario is snapshotted at creation when TakeSnapshot is set, with the
// resolve options recorded in the snapshot config.
func (usecase ScenarioUsecase) AddScenario(ctx context.Context, input models.CreateScenarioInput) (models.Scenario, error) {
	tracer := utils.OpenTelemetryTracerFromContext(ctx)
	ctx, span := tracer.Start(
		ctx,
		"scenarios.ScenarioUsecase.AddScenario",
		trace.WithAttributes(attribute.String("comparison_id", input.ComparisonId)),
		trace.WithAttributes(attribute.Bool("take_snapshot", input.TakeSnapshot)),
	)
	defer span.End()

	if strings.TrimSpace(input.Name) == "" {
		return models.Scenario{}, errors.Wrap(models.BadParameterError, "scenario name is required")
	}
	if input.Source == nil {
		return models.Scenario{}, errors.Wrap(models.BadParameterError, "scenario source is required")
	}
	if input.Type == "" {
		input.Type = models.ScenarioTypeBase
	}

	exec := usecase.executorFactory.NewExecutor()
	if _, err := usecase.scenarioRepository.GetScenarioComparison(ctx, exec, input.ComparisonId); err != nil {
		return models.Scenario{}, repositories.AsStorageFailure(err,
			fmt.Sprintf("could not read comparison %s", input.ComparisonId))
	}

	var snapshot *models.ScenarioSnapshot
	switch {
	case input.ManualData != nil:
		if input.Source.SourceType() == models.SourceTypeTable || input.Source.SourceType() == models.SourceTypeCsv {
			return models.Scenario{}, errors.Wrapf(models.BadParameterError,
				"inline data is only accepted for manual scenarios, not %s", input.Source.SourceType())
		}
		s := newSnapshot(input.ManualData, map[string]any{"manual": true})
		snapshot = &s
	case input.TakeSnapshot:
		rows, err := usecase.snapshotManager.ResolveLive(ctx, input.Source, input.Resolve)
		if err != nil {
			return models.Scenario{}, err
		}
		s := newSnapshot(rows, input.Resolve.AsSnapshotConfig())
		snapshot = &s
	}

	id := uuid.NewString()
	if err := usecase.scenarioRepository.CreateScenario(ctx, exec, id, input, snapshot); err != nil {
		return models.Scenario{}, repositories.AsStorageFailure(err, "could not create scenario")
	}
	return usecase.GetScenario(ctx, id)
}

func (usecase ScenarioUsecase) GetScenario(ctx context.Context, id string) (models.Scenario, error) {
	scenario, err := usecase.scenarioRepository.GetScenario(ctx, usecase.executorFactory.NewExecutor(), id)
	if err != nil {
		return models.Scenario{}, repositories.AsStorageFailure(err, fmt.Sprintf("could not read scenario %s", id))
	}
	return scenario, nil
}

// ScenarioData returns the rows a comparison would use for the scenario.
func (usecase ScenarioUsecase) ScenarioData(
	ctx context.Context,
	id string,
	options models.ResolveOptions,
) ([]models.Row, error) {
	scenario, err := usecase.GetScenario(ctx, id)
	if err != nil {
		return nil, err
	}
	return usecase.snapshotManager.Resolve(ctx, scenario, options)
}

// TakeSnapshot reads the scenario's live source and stores the result as its snapshot, replacing
// any previous one. Scenarios without a live source keep their snapshot.
func (usecase ScenarioUsecase) TakeSnapshot(
	ctx context.Context,
	id string,
	options models.ResolveOptions,
) (models.Scenario, error) {
	scenario, err := usecase.GetScenario(ctx, id)
	if err != nil {
		return models.Scenario{}, err
	}
	switch scenario.Source.SourceType() {
	case models.SourceTypeTable, models.SourceTypeCsv:
	default:
		return models.Scenario{}, errors.Wrapf(models.BadParameterError,
			"scenario %s has no live source to snapshot", id)
	}

	rows, err := usecase.snapshotManager.ResolveLive(ctx, scenario.Source, options)
	if err != nil {
		return models.Scenario{}, err
	}
	snapshot, err := usecase.snapshotManager.Persist(ctx, id, rows, options.AsSnapshotConfig())
	if err != nil {
		return models.Scenario{}, err
	}
	scenario.Snapshot = &snapshot
	return scenario, nil
}

// RunComparison compares two scenarios of a comparison. With no scenario ids, the comparison must
// hold exactly two scenarios, compared in creation order. Snapshots are used when present.
func (usecase ScenarioUsecase) RunComparison(
	ctx context.Context,
	comparisonId string,
	scenarioAId, scenarioBId string,
) (models.ScenarioComparisonReport, error) {
	logger := utils.LoggerFromContext(ctx)
	tracer := utils.OpenTelemetryTracerFromContext(ctx)
	ctx, span := tracer.Start(
		ctx,
		"scenarios.ScenarioUsecase.RunComparison",
		trace.WithAttributes(attribute.String("comparison_id", comparisonId)),
	)
	defer span.End()
	start := time.Now()

	scenarioComparison, err := usecase.GetComparison(ctx, comparisonId)
	if err != nil {
		return models.ScenarioComparisonReport{}, err
	}

	a, b, err := pickScenarios(scenarioComparison, scenarioAId, scenarioBId)
	if err != nil {
		return models.ScenarioComparisonReport{}, err
	}

	rowsA, err := usecase.snapshotManager.Resolve(ctx, a, models.ResolveOptions{})
	if err != nil {
		return models.ScenarioComparisonReport{}, err
	}
	rowsB, err := usecase.snapshotManager.Resolve(ctx, b, models.ResolveOptions{})
	if err != nil {
		return models.ScenarioComparisonReport{}, err
	}

	result := comparison.Compare(rowsA, rowsB)
	report := models.ScenarioComparisonReport{
		ScenarioA:     a,
		ScenarioB:     b,
		Comparison:    result,
		Suggestions:   comparison.Suggest(result),
		Visualization: comparison.Visualize(rowsA, rowsB),
	}

	utils.MetricComparisonLatency.Observe(time.Since(start).Seconds())
	logger.InfoContext(ctx, fmt.Sprintf("compared scenarios %s and %s", a.Id, b.Id),
		"rows_a", len(rowsA),
		"rows_b", len(rowsB),
		"suggestions", len(report.Suggestions))
	return report, nil
}

func pickScenarios(
	scenarioComparison models.ScenarioComparison,
	scenarioAId, scenarioBId string,
) (models.Scenario, models.Scenario, error) {
	if scenarioAId == "" && scenarioBId == "" {
		if len(scenarioComparison.Scenarios) != 2 {
			return models.Scenario{}, models.Scenario{}, errors.Wrapf(models.ErrComparisonRequiresTwoScenarios,
				"comparison %s has %d", scenarioComparison.Id, len(scenarioComparison.Scenarios))
		}
		return scenarioComparison.Scenarios[0], scenarioComparison.Scenarios[1], nil
	}

	find := func(id string) (models.Scenario, error) {
		for _, s := range scenarioComparison.Scenarios {
			if s.Id == id {
				return s, nil
			}
		}
		return models.Scenario{}, errors.Wrapf(models.NotFoundError,
			"scenario '%s' is not part of comparison %s", id, scenarioComparison.Id)
	}
	if scenarioAId == "" || scenarioBId == "" || scenarioAId == scenarioBId {
		return models.Scenario{}, models.Scenario{}, errors.Wrap(models.ErrComparisonRequiresTwoScenarios,
			"two distinct scenario ids are required")
	}
	a, err := find(scenarioAId)
	if err != nil {
		return models.Scenario{}, models.Scenario{}, err
	}
	b, err := find(scenarioBId)
	if err != nil {
		return models.Scenario{}, models.Scenario{}, err
	}
	return a, b, nil
}

// ProjectScenario forecasts the scenario's data and stores the forecast as a new projection
// scenario of the same comparison. The new scenario keeps the source of the projected one.
func (usecase ScenarioUsecase) ProjectScenario(
	ctx context.Context,
	input models.ProjectScenarioInput,
) (models.Scenario, models.ProjectionResult, error) {
	source, err := usecase.GetScenario(ctx, input.ScenarioId)
	if err != nil {
		return models.Scenario{}, models.ProjectionResult{}, err
	}

	rows, err := usecase.snapshotManager.Resolve(ctx, source, models.ResolveOptions{})
	if err != nil {
		return models.Scenario{}, models.ProjectionResult{}, err
	}

	result, err := usecase.projectionEngine.Project(ctx, rows, input.Params)
	if err != nil {
		return models.Scenario{}, models.ProjectionResult{}, err
	}

	name := input.Name
	if strings.TrimSpace(name) == "" {
		name = fmt.Sprintf("%s (projection)", source.Name)
	}
	skipped := make([]map[string]any, len(result.Skipped))
	for i, s := range result.Skipped {
		skipped[i] = map[string]any{"column": s.Column, "reason": s.Reason}
	}
	snapshot := newSnapshot(result.Rows, map[string]any{
		"projected_from": source.Id,
		"date_column":    result.DateColumn,
		"value_columns":  input.Params.ValueColumns,
		"periods":        input.Params.Periods,
		"step":           result.Step.String(),
		"columns":        result.Columns,
		"skipped":        skipped,
	})

	id := uuid.NewString()
	err = usecase.scenarioRepository.CreateScenario(ctx, usecase.executorFactory.NewExecutor(), id,
		models.CreateScenarioInput{
			ComparisonId: source.ComparisonId,
			Name:         name,
			Description:  source.Description,
			Type:         models.ScenarioTypeProjection,
			Source:       source.Source,
		}, &snapshot)
	if err != nil {
		return models.Scenario{}, models.ProjectionResult{}, repositories.AsStorageFailure(err,
			"could not create projection scenario")
	}

	projected, err := usecase.GetScenario(ctx, id)
	if err != nil {
		return models.Scenario{}, models.ProjectionResult{}, err
	}
	return projected, result, nil
}

package scenarios

import (
	"context"
	"fmt"
	"time"

	"github.com/checkmarble/datalab/models"
	"github.com/checkmarble/datalab/repositories"
	"github.com/checkmarble/datalab/usecases/datasets"
	"github.com/checkmarble/datalab/usecases/executor_factory"
	"github.com/checkmarble/datalab/utils"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type snapshotRepository interface {
	UpdateScenarioSnapshot(ctx context.Context, exec repositories.Executor, id string, snapshot models.ScenarioSnapshot) error
}

type datasetReader interface {
	QueryDataset(ctx context.Context, query models.DatasetQuery) (models.DatasetPage, error)
}

// SnapshotManager turns a scenario into rows, and stores rows as a scenario's snapshot.
type SnapshotManager struct {
	executorFactory    executor_factory.ExecutorFactory
	scenarioRepository snapshotRepository
	datasetReader      datasetReader
	csvReader          datasets.CsvReader
}

func NewSnapshotManager(
	executorFactory executor_factory.ExecutorFactory,
	scenarioRepository snapshotRepository,
	datasetReader datasetReader,
	csvReader datasets.CsvReader,
) SnapshotManager {
	return SnapshotManager{
		executorFactory:    executorFactory,
		scenarioRepository: scenarioRepository,
		datasetReader:      datasetReader,
		csvReader:          csvReader,
	}
}

// Resolve returns the scenario's snapshot when it has one, without any I/O. Otherwise it reads the
// live source.
func (manager SnapshotManager) Resolve(
	ctx context.Context,
	scenario models.Scenario,
	options models.ResolveOptions,
) ([]models.Row, error) {
	if scenario.HasSnapshot() {
		return scenario.Snapshot.Data, nil
	}
	return manager.ResolveLive(ctx, scenario.Source, options)
}

// ResolveLive reads rows from a scenario source, ignoring any snapshot. Missing data is not an
// error: a csv file that does not exist and a manual source both yield no rows. Options only apply
// in full to tables: csv files honour the limit alone.
func (manager SnapshotManager) ResolveLive(
	ctx context.Context,
	source models.ScenarioSource,
	options models.ResolveOptions,
) ([]models.Row, error) {
	logger := utils.LoggerFromContext(ctx)
	tracer := utils.OpenTelemetryTracerFromContext(ctx)
	ctx, span := tracer.Start(
		ctx,
		"scenarios.SnapshotManager.ResolveLive",
		trace.WithAttributes(attribute.String("source_type", string(source.SourceType()))),
		trace.WithAttributes(attribute.String("source_id", source.SourceId())),
	)
	defer span.End()

	switch s := source.(type) {
	case models.TableSource:
		query := models.DatasetQuery{
			Name:    s.Dataset,
			Columns: options.Columns,
			Filters: options.Filters,
		}
		if options.Limit.Valid {
			query.Limit = int(options.Limit.Int64)
		}
		page, err := manager.datasetReader.QueryDataset(ctx, query)
		if err != nil {
			return nil, err
		}
		return NormalizeRows(page.Rows), nil

	case models.CsvSource:
		page, err := manager.csvReader.ReadCsv(ctx, s.Path)
		if errors.Is(err, models.NotFoundError) {
			logger.InfoContext(ctx, fmt.Sprintf("csv file %s not found, resolving to no rows", s.Path))
			return []models.Row{}, nil
		}
		if err != nil {
			return nil, err
		}
		rows := page.Rows
		if options.Limit.Valid && options.Limit.Int64 >= 0 && int(options.Limit.Int64) < len(rows) {
			rows = rows[:options.Limit.Int64]
		}
		return NormalizeRows(rows), nil

	default:
		return []models.Row{}, nil
	}
}

// Persist replaces the scenario's snapshot with the normalized rows. Two concurrent persists on the
// same scenario are not merged: the last one to commit wins.
func (manager SnapshotManager) Persist(
	ctx context.Context,
	scenarioId string,
	rows []models.Row,
	config map[string]any,
) (models.ScenarioSnapshot, error) {
	snapshot := newSnapshot(rows, config)
	err := manager.scenarioRepository.UpdateScenarioSnapshot(ctx, manager.executorFactory.NewExecutor(), scenarioId, snapshot)
	if err != nil {
		return models.ScenarioSnapshot{}, repositories.AsStorageFailure(err,
			fmt.Sprintf("could not persist snapshot of scenario %s", scenarioId))
	}

	utils.LoggerFromContext(ctx).InfoContext(ctx, fmt.Sprintf("persisted snapshot of scenario %s", scenarioId),
		"rows", len(snapshot.Data))
	return snapshot, nil
}

func newSnapshot(rows []models.Row, config map[string]any) models.ScenarioSnapshot {
	if config == nil {
		config = map[string]any{}
	}
	return models.ScenarioSnapshot{
		Config:  NormalizeRow(config),
		Data:    NormalizeRows(rows),
		TakenAt: time.Now().UTC(),
	}
}

package datasets

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/checkmarble/datalab/models"
	"github.com/checkmarble/datalab/repositories"
	"github.com/checkmarble/datalab/usecases/charts"
	"github.com/checkmarble/datalab/usecases/executor_factory"
	"github.com/checkmarble/datalab/utils"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const uploadsFolder = "uploads"

type DatasetRepository interface {
	DatasetExists(ctx context.Context, exec repositories.Executor, name models.DatasetName) (bool, error)
	CreateDatasetTable(ctx context.Context, tx repositories.Transaction, name models.DatasetName, schema models.DatasetSchema) error
	ListDatasetColumns(ctx context.Context, exec repositories.Executor, name models.DatasetName) (models.DatasetSchema, error)
	InsertDatasetRows(ctx context.Context, tx repositories.Transaction, name models.DatasetName,
		columns []string, rows []models.Row) (int64, error)
	QueryDatasetRows(ctx context.Context, exec repositories.Executor, query models.DatasetQuery) (models.DatasetPage, error)
	DropDatasetTable(ctx context.Context, tx repositories.Transaction, name models.DatasetName) error

	CreateDatasetMetadata(ctx context.Context, exec repositories.Executor, name models.DatasetName, ownerId string) (models.Dataset, error)
	GetDatasetMetadata(ctx context.Context, exec repositories.Executor, name models.DatasetName) (models.Dataset, error)
	ListDatasetMetadata(ctx context.Context, exec repositories.Executor, ownerId string) ([]models.Dataset, error)
	DeleteDatasetMetadata(ctx context.Context, exec repositories.Executor, name models.DatasetName) error
}

type DatasetUsecase struct {
	executorFactory    executor_factory.ExecutorFactory
	transactionFactory executor_factory.TransactionFactory
	datasetRepository  DatasetRepository
	blobRepository     repositories.BlobRepository
	csvReader          CsvReader
	uploadsBucketUrl   string
}

func NewDatasetUsecase(
	executorFactory executor_factory.ExecutorFactory,
	transactionFactory executor_factory.TransactionFactory,
	datasetRepository DatasetRepository,
	blobRepository repositories.BlobRepository,
	csvReader CsvReader,
	uploadsBucketUrl string,
) DatasetUsecase {
	return DatasetUsecase{
		executorFactory:    executorFactory,
		transactionFactory: transactionFactory,
		datasetRepository:  datasetRepository,
		blobRepository:     blobRepository,
		csvReader:          csvReader,
		uploadsBucketUrl:   uploadsBucketUrl,
	}
}

// CreateDataset registers the dataset, creates its table and inserts the initial rows in one transaction.
// It fails closed: if the name is already registered or a table with that name exists, nothing is
// created or altered and an ErrDatasetAlreadyExists is returned.
func (usecase DatasetUsecase) CreateDataset(ctx context.Context, input models.CreateDatasetInput) (models.CreatedDataset, error) {
	logger := utils.LoggerFromContext(ctx)
	tracer := utils.OpenTelemetryTracerFromContext(ctx)
	ctx, span := tracer.Start(
		ctx,
		"datasets.DatasetUsecase.CreateDataset",
		trace.WithAttributes(attribute.String("dataset", input.Name.String())),
		trace.WithAttributes(attribute.Int("rows", len(input.Rows))),
	)
	defer span.End()

	if input.Name.IsZero() {
		return models.CreatedDataset{}, errors.Wrap(models.ErrInvalidDatasetName, "empty name")
	}

	var schema models.DatasetSchema
	var err error
	if len(input.DeclaredColumns) > 0 {
		schema, err = InferFromDeclared(input.DeclaredColumns, input.ColumnOrder)
	} else {
		schema, err = InferFromColumns(input.ColumnOrder, input.Rows)
	}
	if err != nil {
		return models.CreatedDataset{}, err
	}

	rows, err := coerceRows(schema, input.Rows)
	if err != nil {
		return models.CreatedDataset{}, err
	}

	created, err := executor_factory.TransactionReturnValue(ctx, usecase.transactionFactory,
		func(tx repositories.Transaction) (models.CreatedDataset, error) {
			dataset, err := usecase.datasetRepository.CreateDatasetMetadata(ctx, tx, input.Name, input.OwnerId)
			if err != nil {
				return models.CreatedDataset{}, err
			}

			exists, err := usecase.datasetRepository.DatasetExists(ctx, tx, input.Name)
			if err != nil {
				return models.CreatedDataset{}, err
			}
			if exists {
				return models.CreatedDataset{}, errors.Wrapf(models.ErrDatasetAlreadyExists, "table %s", input.Name)
			}

			if err := usecase.datasetRepository.CreateDatasetTable(ctx, tx, input.Name, schema); err != nil {
				return models.CreatedDataset{}, err
			}

			inserted, err := usecase.datasetRepository.InsertDatasetRows(ctx, tx, input.Name, schema.Names(), rows)
			if err != nil {
				return models.CreatedDataset{}, err
			}

			return models.CreatedDataset{
				DatasetDetail: models.DatasetDetail{Dataset: dataset, Schema: schema},
				InsertedRows:  inserted,
			}, nil
		})
	if err != nil {
		return models.CreatedDataset{}, repositories.AsStorageFailure(err,
			fmt.Sprintf("could not create dataset %s", input.Name))
	}

	utils.MetricDatasetRowsInserted.
		With(prometheus.Labels{"origin": input.Origin()}).
		Add(float64(created.InsertedRows))

	logger.InfoContext(ctx, fmt.Sprintf("created dataset %s", input.Name),
		"dataset", input.Name.String(),
		"columns", len(schema),
		"rows", created.InsertedRows)
	return created, nil
}

// InsertRows appends rows to an existing dataset, all or nothing. Values are checked against the
// recorded column types before the transaction starts.
func (usecase DatasetUsecase) InsertRows(ctx context.Context, name models.DatasetName, rows []models.Row) (int64, error) {
	schema, err := usecase.datasetSchema(ctx, name)
	if err != nil {
		return 0, err
	}

	coerced, err := coerceRows(schema, rows)
	if err != nil {
		return 0, err
	}
	if len(coerced) == 0 {
		return 0, nil
	}

	inserted, err := executor_factory.TransactionReturnValue(ctx, usecase.transactionFactory,
		func(tx repositories.Transaction) (int64, error) {
			return usecase.datasetRepository.InsertDatasetRows(ctx, tx, name, schema.Names(), coerced)
		})
	if err != nil {
		return 0, repositories.AsStorageFailure(err, fmt.Sprintf("could not insert rows into dataset %s", name))
	}

	utils.MetricDatasetRowsInserted.
		With(prometheus.Labels{"origin": models.RowsOriginAppend}).
		Add(float64(inserted))
	return inserted, nil
}

// AppendRow inserts a single row, with the same checks as InsertRows.
func (usecase DatasetUsecase) AppendRow(ctx context.Context, name models.DatasetName, row models.Row) error {
	_, err := usecase.InsertRows(ctx, name, []models.Row{row})
	return err
}

// QueryDataset returns rows ordered by row id. Requested columns and filters are matched against
// the dataset columns after normalization: unknown filter columns are ignored, unknown projected
// columns are rejected. A limit of zero or less returns every row.
func (usecase DatasetUsecase) QueryDataset(ctx context.Context, query models.DatasetQuery) (models.DatasetPage, error) {
	schema, err := usecase.datasetSchema(ctx, query.Name)
	if err != nil {
		return models.DatasetPage{}, err
	}

	resolved, err := usecase.resolveQuery(ctx, schema, query)
	if err != nil {
		return models.DatasetPage{}, err
	}

	page, err := usecase.datasetRepository.QueryDatasetRows(ctx, usecase.executorFactory.NewExecutor(), resolved)
	if err != nil {
		return models.DatasetPage{}, repositories.AsStorageFailure(err, fmt.Sprintf("could not query dataset %s", query.Name))
	}
	return page, nil
}

// Chart aggregates the rows of a dataset for the requested chart type. Only the axis columns are
// read, except for heatmaps which correlate every numeric column.
func (usecase DatasetUsecase) Chart(ctx context.Context, query models.ChartQuery) (models.Chart, error) {
	tracer := utils.OpenTelemetryTracerFromContext(ctx)
	ctx, span := tracer.Start(
		ctx,
		"datasets.DatasetUsecase.Chart",
		trace.WithAttributes(attribute.String("dataset", query.Dataset.String())),
		trace.WithAttributes(attribute.String("type", string(query.Type))),
	)
	defer span.End()

	if err := query.Validate(); err != nil {
		return models.Chart{}, err
	}

	axes := models.ChartQuery{Dataset: query.Dataset, Type: query.Type}
	columns := make([]string, 0, 2)
	if query.X != "" {
		axes.X = NormalizeColumnName(query.X)
		columns = append(columns, query.X)
	}
	if query.Y != "" {
		axes.Y = NormalizeColumnName(query.Y)
		if axes.Y != axes.X {
			columns = append(columns, query.Y)
		}
	}
	if query.Type == models.ChartTypeHeatmap {
		columns = nil
	}

	page, err := usecase.QueryDataset(ctx, models.DatasetQuery{Name: query.Dataset, Columns: columns})
	if err != nil {
		return models.Chart{}, err
	}
	return charts.Build(axes, page)
}

func (usecase DatasetUsecase) resolveQuery(
	ctx context.Context,
	schema models.DatasetSchema,
	query models.DatasetQuery,
) (models.DatasetQuery, error) {
	logger := utils.LoggerFromContext(ctx)

	columnType := func(raw string) (string, models.StorageType, bool) {
		name := NormalizeColumnName(raw)
		if name == models.DATASET_ROW_ID_COLUMN {
			return name, models.StorageTypeBigint, true
		}
		column, ok := schema.Column(name)
		return column.Name, column.Type, ok
	}

	resolved := models.DatasetQuery{
		Name:   query.Name,
		Limit:  query.Limit,
		Offset: query.Offset,
	}

	for _, raw := range query.Columns {
		name, _, ok := columnType(raw)
		if !ok {
			return models.DatasetQuery{}, errors.Wrapf(models.BadParameterError,
				"dataset %s has no column '%s'", query.Name, raw)
		}
		resolved.Columns = append(resolved.Columns, name)
	}

	for _, filter := range query.Filters {
		if err := filter.Validate(); err != nil {
			return models.DatasetQuery{}, err
		}
		name, storageType, ok := columnType(filter.Column)
		if !ok {
			logger.DebugContext(ctx, fmt.Sprintf("ignoring filter on unknown column %s of dataset %s", filter.Column, query.Name))
			continue
		}
		value, err := coerceValue(storageType, filter.Value)
		if err != nil {
			return models.DatasetQuery{}, errors.Wrapf(err, "filter on column '%s'", name)
		}
		if value == nil {
			return models.DatasetQuery{}, errors.Wrapf(models.BadParameterError, "filter on column '%s' has no value", name)
		}
		resolved.Filters = append(resolved.Filters, models.Filter{Column: name, Operator: filter.Operator, Value: value})
	}

	return resolved, nil
}

// DropDataset removes the table and its registry entry. Dropping an unknown dataset is not an error.
func (usecase DatasetUsecase) DropDataset(ctx context.Context, name models.DatasetName) error {
	logger := utils.LoggerFromContext(ctx)

	err := usecase.transactionFactory.Transaction(ctx, func(tx repositories.Transaction) error {
		if err := usecase.datasetRepository.DropDatasetTable(ctx, tx, name); err != nil {
			return err
		}
		return usecase.datasetRepository.DeleteDatasetMetadata(ctx, tx, name)
	})
	if err != nil {
		return repositories.AsStorageFailure(err, fmt.Sprintf("could not drop dataset %s", name))
	}

	logger.InfoContext(ctx, fmt.Sprintf("dropped dataset %s", name), "dataset", name.String())
	return nil
}

func (usecase DatasetUsecase) ListDatasets(ctx context.Context, ownerId string) ([]models.Dataset, error) {
	datasets, err := usecase.datasetRepository.ListDatasetMetadata(ctx, usecase.executorFactory.NewExecutor(), ownerId)
	if err != nil {
		return nil, repositories.AsStorageFailure(err, "could not list datasets")
	}
	return datasets, nil
}

func (usecase DatasetUsecase) GetDataset(ctx context.Context, name models.DatasetName) (models.DatasetDetail, error) {
	dataset, err := usecase.datasetRepository.GetDatasetMetadata(ctx, usecase.executorFactory.NewExecutor(), name)
	if err != nil {
		return models.DatasetDetail{}, repositories.AsStorageFailure(err, fmt.Sprintf("could not read dataset %s", name))
	}

	schema, err := usecase.datasetSchema(ctx, name)
	if err != nil {
		return models.DatasetDetail{}, err
	}
	return models.DatasetDetail{Dataset: dataset, Schema: schema}, nil
}

// UploadDataset stores the csv file in the uploads bucket, then creates a dataset from its content
// with an inferred schema. The stored file is removed if the dataset could not be created.
func (usecase DatasetUsecase) UploadDataset(
	ctx context.Context,
	ownerId string,
	name models.DatasetName,
	fileName string,
	content io.Reader,
) (models.CreatedDataset, error) {
	logger := utils.LoggerFromContext(ctx)
	tracer := utils.OpenTelemetryTracerFromContext(ctx)
	ctx, span := tracer.Start(
		ctx,
		"datasets.DatasetUsecase.UploadDataset",
		trace.WithAttributes(attribute.String("dataset", name.String())),
		trace.WithAttributes(attribute.String("fileName", fileName)),
	)
	defer span.End()

	filePath := path.Join(uploadsFolder, uuid.NewString(), path.Base(fileName))
	if err := usecase.storeFile(ctx, filePath, content); err != nil {
		return models.CreatedDataset{}, err
	}

	created, err := usecase.createFromFile(ctx, ownerId, name, filePath)
	if err != nil {
		if deleteErr := usecase.blobRepository.DeleteFile(ctx, usecase.uploadsBucketUrl, filePath); deleteErr != nil {
			logger.WarnContext(ctx, fmt.Sprintf("could not delete uploaded file %s: %v", filePath, deleteErr))
		}
		return models.CreatedDataset{}, err
	}
	created.FilePath = filePath
	return created, nil
}

func (usecase DatasetUsecase) storeFile(ctx context.Context, filePath string, content io.Reader) error {
	writer, err := usecase.blobRepository.OpenStream(ctx, usecase.uploadsBucketUrl, filePath)
	if err != nil {
		return errors.Wrap(err, "could not open upload stream")
	}
	if _, err := io.Copy(writer, content); err != nil {
		_ = writer.Close()
		return errors.Wrap(err, "could not write uploaded file")
	}
	return errors.Wrap(writer.Close(), "could not close uploaded file")
}

func (usecase DatasetUsecase) createFromFile(
	ctx context.Context,
	ownerId string,
	name models.DatasetName,
	filePath string,
) (models.CreatedDataset, error) {
	page, err := usecase.csvReader.ReadCsv(ctx, filePath)
	if err != nil {
		return models.CreatedDataset{}, err
	}
	if len(page.Columns) == 0 {
		return models.CreatedDataset{}, errors.Wrap(models.ErrEmptyDatasetSchema, "uploaded file has no header")
	}

	return usecase.CreateDataset(ctx, models.CreateDatasetInput{
		Name:        name,
		OwnerId:     ownerId,
		ColumnOrder: page.Columns,
		Rows:        page.Rows,
		SourceFile:  filePath,
	})
}

// datasetSchema reads the columns from the catalog. A dataset without any column does not exist.
func (usecase DatasetUsecase) datasetSchema(ctx context.Context, name models.DatasetName) (models.DatasetSchema, error) {
	schema, err := usecase.datasetRepository.ListDatasetColumns(ctx, usecase.executorFactory.NewExecutor(), name)
	if err != nil {
		return nil, repositories.AsStorageFailure(err, fmt.Sprintf("could not read columns of dataset %s", name))
	}
	if len(schema) == 0 {
		return nil, errors.Wrapf(models.NotFoundError, "dataset %s does not exist", name)
	}
	return schema, nil
}

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/checkmarble/datalab/models"
	"github.com/checkmarble/datalab/repositories"
)

type DatasetRepository struct {
	mock.Mock
}

func (r *DatasetRepository) DatasetExists(ctx context.Context, exec repositories.Executor, name models.DatasetName) (bool, error) {
	args := r.Called(exec, name)
	return args.Bool(0), args.Error(1)
}

func (r *DatasetRepository) CreateDatasetTable(ctx context.Context, tx repositories.Transaction,
	name models.DatasetName, schema models.DatasetSchema,
) error {
	args := r.Called(tx, name, schema)
	return args.Error(0)
}

func (r *DatasetRepository) ListDatasetColumns(ctx context.Context, exec repositories.Executor,
	name models.DatasetName,
) (models.DatasetSchema, error) {
	args := r.Called(exec, name)
	return args.Get(0).(models.DatasetSchema), args.Error(1)
}

func (r *DatasetRepository) InsertDatasetRows(ctx context.Context, tx repositories.Transaction,
	name models.DatasetName, columns []string, rows []models.Row,
) (int64, error) {
	args := r.Called(tx, name, columns, rows)
	return args.Get(0).(int64), args.Error(1)
}

func (r *DatasetRepository) QueryDatasetRows(ctx context.Context, exec repositories.Executor,
	query models.DatasetQuery,
) (models.DatasetPage, error) {
	args := r.Called(exec, query)
	return args.Get(0).(models.DatasetPage), args.Error(1)
}

func (r *DatasetRepository) DropDatasetTable(ctx context.Context, tx repositories.Transaction, name models.DatasetName) error {
	args := r.Called(tx, name)
	return args.Error(0)
}

func (r *DatasetRepository) CreateDatasetMetadata(ctx context.Context, exec repositories.Executor,
	name models.DatasetName, ownerId string,
) (models.Dataset, error) {
	args := r.Called(exec, name, ownerId)
	return args.Get(0).(models.Dataset), args.Error(1)
}

func (r *DatasetRepository) GetDatasetMetadata(ctx context.Context, exec repositories.Executor,
	name models.DatasetName,
) (models.Dataset, error) {
	args := r.Called(exec, name)
	return args.Get(0).(models.Dataset), args.Error(1)
}

func (r *DatasetRepository) ListDatasetMetadata(ctx context.Context, exec repositories.Executor,
	ownerId string,
) ([]models.Dataset, error) {
	args := r.Called(exec, ownerId)
	return args.Get(0).([]models.Dataset), args.Error(1)
}

func (r *DatasetRepository) DeleteDatasetMetadata(ctx context.Context, exec repositories.Executor, name models.DatasetName) error {
	args := r.Called(exec, name)
	return args.Error(0)
}

package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/checkmarble/datalab/models"
	"github.com/checkmarble/datalab/repositories/dbmodels"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Postgres rejects statements with more bind parameters than this
const maxStatementParameters = 65535

type DatasetRepository interface {
	DatasetExists(ctx context.Context, exec Executor, name models.DatasetName) (bool, error)
	CreateDatasetTable(ctx context.Context, tx Transaction, name models.DatasetName, schema models.DatasetSchema) error
	ListDatasetColumns(ctx context.Context, exec Executor, name models.DatasetName) (models.DatasetSchema, error)
	InsertDatasetRows(ctx context.Context, tx Transaction, name models.DatasetName, columns []string, rows []models.Row) (int64, error)
	QueryDatasetRows(ctx context.Context, exec Executor, query models.DatasetQuery) (models.DatasetPage, error)
	DropDatasetTable(ctx context.Context, tx Transaction, name models.DatasetName) error

	CreateDatasetMetadata(ctx context.Context, exec Executor, name models.DatasetName, ownerId string) (models.Dataset, error)
	GetDatasetMetadata(ctx context.Context, exec Executor, name models.DatasetName) (models.Dataset, error)
	ListDatasetMetadata(ctx context.Context, exec Executor, ownerId string) ([]models.Dataset, error)
	DeleteDatasetMetadata(ctx context.Context, exec Executor, name models.DatasetName) error
}

type DatasetRepositoryPostgresql struct{}

func datasetTable(name models.DatasetName) string {
	return pgx.Identifier{dbmodels.DATASETS_SCHEMA, name.String()}.Sanitize()
}

func quoteColumn(column string) string {
	return pgx.Identifier{column}.Sanitize()
}

func (repo *DatasetRepositoryPostgresql) DatasetExists(ctx context.Context, exec Executor, name models.DatasetName) (bool, error) {
	query := NewQueryBuilder().
		Select("1").
		From("information_schema.tables").
		Where(squirrel.Eq{"table_schema": dbmodels.DATASETS_SCHEMA}).
		Where(squirrel.Eq{"table_name": name.String()}).
		Where(squirrel.NotEq{"table_schema": []string{"pg_catalog", "information_schema"}}).
		Prefix("SELECT EXISTS (").
		Suffix(")")

	sql, args, err := query.ToSql()
	if err != nil {
		return false, errors.Wrap(err, "can't build sql query")
	}

	var exists bool
	if err := exec.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, errors.Wrapf(err, "error checking if dataset %s exists", name)
	}
	return exists, nil
}

func (repo *DatasetRepositoryPostgresql) CreateDatasetTable(
	ctx context.Context,
	tx Transaction,
	name models.DatasetName,
	schema models.DatasetSchema,
) error {
	if len(schema) == 0 {
		return models.ErrEmptyDatasetSchema
	}

	columns := make([]string, 0, len(schema)+1)
	columns = append(columns, fmt.Sprintf("%s BIGSERIAL PRIMARY KEY", quoteColumn(models.DATASET_ROW_ID_COLUMN)))
	for _, column := range schema {
		columns = append(columns, fmt.Sprintf("%s %s", quoteColumn(column.Name), column.Type))
	}

	// no IF NOT EXISTS: a concurrent create must fail rather than silently reuse the table
	sql := fmt.Sprintf("CREATE TABLE %s (\n\t%s\n)", datasetTable(name), strings.Join(columns, ",\n\t"))

	_, err := tx.Exec(ctx, sql)
	if IsDuplicateTableError(err) {
		return errors.Wrapf(models.ErrDatasetAlreadyExists, "table %s", name)
	}
	return errors.Wrapf(err, "error creating table for dataset %s", name)
}

func (repo *DatasetRepositoryPostgresql) ListDatasetColumns(
	ctx context.Context,
	exec Executor,
	name models.DatasetName,
) (models.DatasetSchema, error) {
	query := NewQueryBuilder().
		Select("column_name", "data_type").
		From("information_schema.columns").
		Where(squirrel.Eq{"table_schema": dbmodels.DATASETS_SCHEMA}).
		Where(squirrel.Eq{"table_name": name.String()}).
		Where(squirrel.NotEq{"column_name": models.DATASET_ROW_ID_COLUMN}).
		OrderBy("ordinal_position")

	columns, err := SqlToListOfRow(ctx, exec, query, func(row pgx.CollectableRow) (models.DatasetColumn, error) {
		var columnName, dataType string
		if err := row.Scan(&columnName, &dataType); err != nil {
			return models.DatasetColumn{}, err
		}
		return models.DatasetColumn{Name: columnName, Type: models.StorageTypeFrom(dataType)}, nil
	})
	if err != nil {
		return nil, err
	}
	return models.DatasetSchema(columns), nil
}

// InsertDatasetRows writes the rows with as few multi-row INSERT statements as the parameter limit allows.
// Values missing from a row are inserted as NULL. All statements share the caller's transaction.
func (repo *DatasetRepositoryPostgresql) InsertDatasetRows(
	ctx context.Context,
	tx Transaction,
	name models.DatasetName,
	columns []string,
	rows []models.Row,
) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if len(columns) == 0 {
		return 0, models.ErrEmptyDatasetSchema
	}

	quotedColumns := make([]string, len(columns))
	for i, column := range columns {
		quotedColumns[i] = quoteColumn(column)
	}

	rowsPerStatement := maxStatementParameters / len(columns)
	var inserted int64
	for start := 0; start < len(rows); start += rowsPerStatement {
		end := min(start+rowsPerStatement, len(rows))

		query := NewQueryBuilder().
			Insert(datasetTable(name)).
			Columns(quotedColumns...)
		for _, row := range rows[start:end] {
			values := make([]any, len(columns))
			for i, column := range columns {
				values[i] = row[column]
			}
			query = query.Values(values...)
		}

		count, err := ExecBuilder(ctx, tx, query)
		if err != nil {
			return inserted, errors.Wrapf(err, "error inserting rows into dataset %s", name)
		}
		inserted += count
	}

	return inserted, nil
}

func (repo *DatasetRepositoryPostgresql) QueryDatasetRows(
	ctx context.Context,
	exec Executor,
	datasetQuery models.DatasetQuery,
) (models.DatasetPage, error) {
	query := NewQueryBuilder().
		Select().
		From(datasetTable(datasetQuery.Name)).
		OrderBy(quoteColumn(models.DATASET_ROW_ID_COLUMN) + " ASC")

	if len(datasetQuery.Columns) == 0 {
		query = query.Columns("*")
	}
	for _, column := range datasetQuery.Columns {
		query = query.Columns(quoteColumn(column))
	}

	for _, filter := range datasetQuery.Filters {
		predicate, err := filterPredicate(filter)
		if err != nil {
			return models.DatasetPage{}, err
		}
		query = query.Where(predicate)
	}

	if datasetQuery.Limit > 0 {
		query = query.Limit(uint64(datasetQuery.Limit))
	}
	if datasetQuery.Offset > 0 {
		query = query.Offset(uint64(datasetQuery.Offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return models.DatasetPage{}, errors.Wrap(err, "can't build sql query")
	}

	rows, err := exec.Query(ctx, sql, args...)
	if err != nil {
		return models.DatasetPage{}, errors.Wrapf(err, "error querying dataset %s", datasetQuery.Name)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	page := models.DatasetPage{
		Columns: make([]string, len(fields)),
		Rows:    make([]models.Row, 0),
	}
	for i, field := range fields {
		page.Columns[i] = field.Name
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return models.DatasetPage{}, errors.Wrapf(err, "error reading row of dataset %s", datasetQuery.Name)
		}
		row := make(models.Row, len(values))
		for i, value := range values {
			row[page.Columns[i]] = value
		}
		page.Rows = append(page.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return models.DatasetPage{}, errors.Wrapf(err, "error iterating over rows of dataset %s", datasetQuery.Name)
	}

	return page, nil
}

func filterPredicate(filter models.Filter) (squirrel.Sqlizer, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	column := quoteColumn(filter.Column)
	switch filter.Operator {
	case models.FilterEqual:
		return squirrel.Eq{column: filter.Value}, nil
	case models.FilterNotEqual:
		return squirrel.NotEq{column: filter.Value}, nil
	case models.FilterLessThan:
		return squirrel.Lt{column: filter.Value}, nil
	case models.FilterLessThanOrEqual:
		return squirrel.LtOrEq{column: filter.Value}, nil
	case models.FilterGreaterThan:
		return squirrel.Gt{column: filter.Value}, nil
	case models.FilterGreaterThanOrEqual:
		return squirrel.GtOrEq{column: filter.Value}, nil
	}
	return nil, errors.Wrapf(models.ErrInvalidFilterOperator, "'%s'", filter.Operator)
}

func (repo *DatasetRepositoryPostgresql) DropDatasetTable(ctx context.Context, tx Transaction, name models.DatasetName) error {
	_, err := tx.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", datasetTable(name)))
	return errors.Wrapf(err, "error dropping table of dataset %s", name)
}

func (repo *DatasetRepositoryPostgresql) CreateDatasetMetadata(
	ctx context.Context,
	exec Executor,
	name models.DatasetName,
	ownerId string,
) (models.Dataset, error) {
	query := NewQueryBuilder().
		Insert(dbmodels.TABLE_DATASET_METADATA).
		Columns("id", "name", "owner_id").
		Values(uuid.NewString(), name.String(), ownerId).
		Suffix("RETURNING " + strings.Join(dbmodels.SelectDatasetMetadataColumns, ","))

	dataset, err := SqlToModel(ctx, exec, query, dbmodels.AdaptDataset)
	if IsUniqueViolationError(err) {
		return models.Dataset{}, errors.Wrapf(models.ErrDatasetAlreadyExists, "dataset %s", name)
	}
	return dataset, err
}

func (repo *DatasetRepositoryPostgresql) GetDatasetMetadata(
	ctx context.Context,
	exec Executor,
	name models.DatasetName,
) (models.Dataset, error) {
	return SqlToModel(
		ctx,
		exec,
		NewQueryBuilder().
			Select(dbmodels.SelectDatasetMetadataColumns...).
			From(dbmodels.TABLE_DATASET_METADATA).
			Where(squirrel.Eq{"name": name.String()}),
		dbmodels.AdaptDataset,
	)
}

func (repo *DatasetRepositoryPostgresql) ListDatasetMetadata(
	ctx context.Context,
	exec Executor,
	ownerId string,
) ([]models.Dataset, error) {
	query := NewQueryBuilder().
		Select(dbmodels.SelectDatasetMetadataColumns...).
		From(dbmodels.TABLE_DATASET_METADATA).
		OrderBy("created_at DESC", "name")
	if ownerId != "" {
		query = query.Where(squirrel.Eq{"owner_id": ownerId})
	}

	return SqlToListOfModels(ctx, exec, query, dbmodels.AdaptDataset)
}

func (repo *DatasetRepositoryPostgresql) DeleteDatasetMetadata(ctx context.Context, exec Executor, name models.DatasetName) error {
	_, err := ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Delete(dbmodels.TABLE_DATASET_METADATA).
			Where(squirrel.Eq{"name": name.String()}),
	)
	return err
}

package datasets

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/checkmarble/datalab/models"
	"github.com/checkmarble/datalab/pure_utils"
	"github.com/checkmarble/datalab/repositories"
	"github.com/checkmarble/datalab/utils"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CsvReader reads a csv or xlsx file into typed rows keyed by the raw header names, in header
// order. A missing file is reported with a NotFoundError.
type CsvReader interface {
	ReadCsv(ctx context.Context, path string) (models.DatasetPage, error)
}

// ParseCsv reads a comma separated file with a header line. Cells are typed with InferValue, and
// short lines are completed with nulls.
func ParseCsv(r io.Reader) (models.DatasetPage, error) {
	reader := csv.NewReader(pure_utils.NewReaderWithoutBom(r))
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return models.DatasetPage{Columns: []string{}, Rows: []models.Row{}}, nil
	}
	if err != nil {
		return models.DatasetPage{}, errors.Wrap(models.BadParameterError, fmt.Sprintf("invalid csv header: %s", err))
	}
	columns := make([]string, len(header))
	copy(columns, header)

	rows := make([]models.Row, 0)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.DatasetPage{}, errors.Wrap(models.BadParameterError, fmt.Sprintf("invalid csv line: %s", err))
		}
		if len(record) > len(columns) {
			return models.DatasetPage{}, errors.Wrapf(models.BadParameterError,
				"csv line %d has %d fields, header has %d", len(rows)+2, len(record), len(columns))
		}

		row := make(models.Row, len(columns))
		for i, column := range columns {
			if i < len(record) {
				row[column] = InferValue(record[i])
			} else {
				row[column] = nil
			}
		}
		rows = append(rows, row)
	}

	return models.DatasetPage{Columns: columns, Rows: rows}, nil
}

// BlobCsvReader reads csv and xlsx files from the uploads bucket.
type BlobCsvReader struct {
	blobRepository repositories.BlobRepository
	bucketUrl      string
}

func NewBlobCsvReader(blobRepository repositories.BlobRepository, bucketUrl string) BlobCsvReader {
	return BlobCsvReader{blobRepository: blobRepository, bucketUrl: bucketUrl}
}

func (r BlobCsvReader) ReadCsv(ctx context.Context, path string) (models.DatasetPage, error) {
	tracer := utils.OpenTelemetryTracerFromContext(ctx)
	ctx, span := tracer.Start(
		ctx,
		"datasets.BlobCsvReader.ReadCsv",
		trace.WithAttributes(attribute.String("path", path)),
	)
	defer span.End()

	blob, err := r.blobRepository.GetBlob(ctx, r.bucketUrl, path)
	if err != nil {
		return models.DatasetPage{}, err
	}
	defer blob.ReadCloser.Close()

	return parseTabular(path, blob.ReadCloser)
}

type csvExecutorFactory interface {
	GetExecutor(ctx context.Context) (*sql.DB, error)
	BuildCsvSource(path string) string
}

// DuckDbCsvReader reads csv files from a local directory with duckdb, which detects the delimiter
// and types the columns natively. Xlsx files are parsed directly.
type DuckDbCsvReader struct {
	executorFactory csvExecutorFactory
	directory       string
}

func NewDuckDbCsvReader(executorFactory csvExecutorFactory, directory string) DuckDbCsvReader {
	return DuckDbCsvReader{executorFactory: executorFactory, directory: directory}
}

// localPath roots any path, absolute or with parent references, inside the reader's directory.
func (r DuckDbCsvReader) localPath(path string) string {
	return filepath.Join(r.directory, filepath.Clean("/"+path))
}

func (r DuckDbCsvReader) ReadCsv(ctx context.Context, path string) (models.DatasetPage, error) {
	tracer := utils.OpenTelemetryTracerFromContext(ctx)
	ctx, span := tracer.Start(
		ctx,
		"datasets.DuckDbCsvReader.ReadCsv",
		trace.WithAttributes(attribute.String("path", path)),
	)
	defer span.End()

	fullPath := r.localPath(path)
	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return models.DatasetPage{}, errors.Wrapf(models.NotFoundError, "file %s does not exist", path)
		}
		return models.DatasetPage{}, errors.Wrapf(err, "could not stat file %s", path)
	}
	if isXlsx(fullPath) {
		file, err := os.Open(fullPath)
		if err != nil {
			return models.DatasetPage{}, errors.Wrapf(err, "could not open file %s", path)
		}
		defer file.Close()
		return ParseXlsx(file)
	}

	db, err := r.executorFactory.GetExecutor(ctx)
	if err != nil {
		return models.DatasetPage{}, err
	}

	rows, err := db.QueryContext(ctx, "SELECT * FROM "+r.executorFactory.BuildCsvSource(fullPath))
	if err != nil {
		return models.DatasetPage{}, errors.Wrap(
			errors.Mark(err, models.BadParameterError),
			fmt.Sprintf("could not read csv file %s", path),
		)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return models.DatasetPage{}, errors.Wrap(err, "could not read csv columns")
	}

	page := models.DatasetPage{Columns: columns, Rows: make([]models.Row, 0)}
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return models.DatasetPage{}, errors.Wrap(err, "could not scan csv row")
		}

		row := make(models.Row, len(columns))
		for i, column := range columns {
			row[column] = values[i]
		}
		page.Rows = append(page.Rows, row)
	}

	return page, errors.Wrap(rows.Err(), "error iterating over csv rows")
}

package models

import (
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

const (
	// Postgres identifiers are truncated beyond this length
	MAX_DATASET_NAME_LENGTH = 63

	// Surrogate primary key added to every dataset table
	DATASET_ROW_ID_COLUMN = "id"
)

var datasetNameRegexp = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// DatasetName is a dataset identifier that passed validation. It is the only form in which a dataset
// name may be interpolated into a generated SQL statement.
type DatasetName struct {
	name string
}

func NewDatasetName(raw string) (DatasetName, error) {
	if raw == "" {
		return DatasetName{}, errors.Wrap(ErrInvalidDatasetName, "empty name")
	}
	if len(raw) > MAX_DATASET_NAME_LENGTH {
		return DatasetName{}, errors.Wrapf(ErrInvalidDatasetName,
			"'%s' is longer than %d characters", raw, MAX_DATASET_NAME_LENGTH)
	}
	if !datasetNameRegexp.MatchString(raw) {
		return DatasetName{}, errors.Wrapf(ErrInvalidDatasetName,
			"'%s' may only contain letters, digits and underscores", raw)
	}
	return DatasetName{name: strings.ToLower(raw)}, nil
}

func (n DatasetName) String() string {
	return n.name
}

func (n DatasetName) IsZero() bool {
	return n.name == ""
}

type StorageType string

const (
	StorageTypeText      StorageType = "TEXT"
	StorageTypeBigint    StorageType = "BIGINT"
	StorageTypeDouble    StorageType = "DOUBLE PRECISION"
	StorageTypeBoolean   StorageType = "BOOLEAN"
	StorageTypeTimestamp StorageType = "TIMESTAMP"
)

// StorageTypeFrom maps a declared column type (as sent by a client or read back from the catalog)
// to a storage type. Unknown declarations fall back to TEXT.
func StorageTypeFrom(declared string) StorageType {
	t := strings.ToUpper(strings.TrimSpace(declared))
	if i := strings.Index(t, "("); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	switch t {
	case "INTEGER", "INT", "INT4", "INT8", "BIGINT", "SMALLINT", "INT64":
		return StorageTypeBigint
	case "FLOAT", "FLOAT8", "FLOAT64", "DOUBLE", "DOUBLE PRECISION", "REAL", "NUMERIC", "DECIMAL":
		return StorageTypeDouble
	case "BOOL", "BOOLEAN":
		return StorageTypeBoolean
	case "TIMESTAMP", "TIMESTAMPTZ", "TIMESTAMP WITHOUT TIME ZONE", "TIMESTAMP WITH TIME ZONE",
		"DATE", "DATETIME", "DATETIME64[NS]":
		return StorageTypeTimestamp
	default:
		return StorageTypeText
	}
}

type DatasetColumn struct {
	Name string
	Type StorageType
}

// DatasetSchema is the ordered list of columns of a dataset, excluding the surrogate row id.
type DatasetSchema []DatasetColumn

func (s DatasetSchema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

func (s DatasetSchema) Column(name string) (DatasetColumn, bool) {
	for _, c := range s {
		if c.Name == name {
			return c, true
		}
	}
	return DatasetColumn{}, false
}

// Row is one record of a dataset or of a scenario snapshot, keyed by column name.
type Row map[string]any

// ColumnsOfRows lists columns by the first row they appear in. Keys of a single row have no order
// and are sorted by name.
func ColumnsOfRows(rows []Row) []string {
	seen := make(map[string]struct{})
	columns := make([]string, 0)
	for _, row := range rows {
		keys := make([]string, 0, len(row))
		for column := range row {
			if _, ok := seen[column]; !ok {
				seen[column] = struct{}{}
				keys = append(keys, column)
			}
		}
		slices.Sort(keys)
		columns = append(columns, keys...)
	}
	return columns
}

type Dataset struct {
	Id        string
	Name      DatasetName
	OwnerId   string
	CreatedAt time.Time
}

type CreateDatasetInput struct {
	Name    DatasetName
	OwnerId string
	// Explicit mode: column name -> declared type. When empty, the schema is inferred from Rows.
	DeclaredColumns map[string]string
	// Column order for the explicit mode, and for the inferred mode when rows come from a file
	ColumnOrder []string
	Rows        []Row
	// Set when the rows were read from an uploaded file
	SourceFile string
}

const (
	RowsOriginJson   = "json"
	RowsOriginUpload = "upload"
	RowsOriginAppend = "append"
)

func (input CreateDatasetInput) Origin() string {
	if input.SourceFile != "" {
		return RowsOriginUpload
	}
	return RowsOriginJson
}

type DatasetQuery struct {
	Name    DatasetName
	Columns []string
	Filters []Filter
	Limit   int
	Offset  int
}

type DatasetPage struct {
	Columns []string
	Rows    []Row
}

type DatasetDetail struct {
	Dataset
	Schema DatasetSchema
}

type CreatedDataset struct {
	DatasetDetail
	InsertedRows int64
	// Set when the dataset was created from an uploaded file
	FilePath string
}

package datasets

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/checkmarble/datalab/models"

	"github.com/cockroachdb/errors"
)

// Accepted layouts for timestamp cells, tried in order
var timestampLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"02/01/2006",
}

// InferFromDeclared builds the schema of a dataset whose column types were given explicitly.
// Columns follow order when it is set, alphabetical order otherwise.
func InferFromDeclared(declared map[string]string, order []string) (models.DatasetSchema, error) {
	if len(declared) == 0 {
		return nil, models.ErrEmptyDatasetSchema
	}

	names := order
	if len(names) == 0 {
		names = make([]string, 0, len(declared))
		for name := range declared {
			names = append(names, name)
		}
		slices.Sort(names)
	}

	schema := make(models.DatasetSchema, 0, len(names))
	seen := make(map[string]string, len(names))
	for _, raw := range names {
		declaredType, ok := declared[raw]
		if !ok {
			return nil, errors.Wrapf(models.BadParameterError, "column '%s' has no declared type", raw)
		}
		name := storageColumnName(raw)
		if previous, ok := seen[name]; ok {
			return nil, errors.Wrapf(models.BadParameterError,
				"columns '%s' and '%s' both normalize to '%s'", previous, raw, name)
		}
		seen[name] = raw
		schema = append(schema, models.DatasetColumn{Name: name, Type: models.StorageTypeFrom(declaredType)})
	}
	return schema, nil
}

// InferFromColumns types each column with the storage type of the dominant value type found in rows.
// Null values are ignored; a column holding only integers and floats is a DOUBLE PRECISION column;
// a tie between unrelated types, or a column without any value, is TEXT.
// When columns is empty, every key found in rows is used, in alphabetical order.
func InferFromColumns(columns []string, rows []models.Row) (models.DatasetSchema, error) {
	if len(columns) == 0 {
		keys := make(map[string]struct{})
		for _, row := range rows {
			for key := range row {
				keys[key] = struct{}{}
			}
		}
		for key := range keys {
			columns = append(columns, key)
		}
		slices.Sort(columns)
	}
	if len(columns) == 0 {
		return nil, models.ErrEmptyDatasetSchema
	}

	schema := make(models.DatasetSchema, 0, len(columns))
	seen := make(map[string]string, len(columns))
	for _, raw := range columns {
		name := storageColumnName(raw)
		if previous, ok := seen[name]; ok {
			return nil, errors.Wrapf(models.BadParameterError,
				"columns '%s' and '%s' both normalize to '%s'", previous, raw, name)
		}
		seen[name] = raw

		counts := make(map[models.StorageType]int)
		for _, row := range rows {
			if t, ok := valueStorageType(row[raw]); ok {
				counts[t]++
			}
		}
		schema = append(schema, models.DatasetColumn{Name: name, Type: dominantType(counts)})
	}
	return schema, nil
}

func dominantType(counts map[models.StorageType]int) models.StorageType {
	if len(counts) == 0 {
		return models.StorageTypeText
	}
	if len(counts) == 2 && counts[models.StorageTypeBigint] > 0 && counts[models.StorageTypeDouble] > 0 {
		return models.StorageTypeDouble
	}

	best, bestCount, tie := models.StorageTypeText, 0, false
	for t, count := range counts {
		switch {
		case count > bestCount:
			best, bestCount, tie = t, count, false
		case count == bestCount:
			tie = true
		}
	}
	if tie {
		return models.StorageTypeText
	}
	return best
}

// valueStorageType returns false for values that carry no type information (nulls, NaN).
func valueStorageType(value any) (models.StorageType, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return models.StorageTypeText, true
	case bool:
		return models.StorageTypeBoolean, true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return models.StorageTypeBigint, true
	case float32:
		if math.IsNaN(float64(v)) {
			return "", false
		}
		return models.StorageTypeDouble, true
	case float64:
		if math.IsNaN(v) {
			return "", false
		}
		return models.StorageTypeDouble, true
	case json.Number:
		if _, err := v.Int64(); err == nil {
			return models.StorageTypeBigint, true
		}
		return models.StorageTypeDouble, true
	case time.Time:
		return models.StorageTypeTimestamp, true
	default:
		return models.StorageTypeText, true
	}
}

// InferValue turns a raw csv cell into the most specific native value it represents:
// empty cells are null, then integer, float, boolean and timestamp are tried before falling back to text.
func InferValue(raw string) any {
	cell := strings.TrimSpace(raw)
	if cell == "" {
		return nil
	}
	if i, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	switch strings.ToLower(cell) {
	case "true":
		return true
	case "false":
		return false
	}
	if t, ok := parseTimestamp(cell); ok {
		return t
	}
	return raw
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

package datasets

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/checkmarble/datalab/models"

	"github.com/cockroachdb/errors"
)

// coerceValue converts a value to the go type postgres expects for a column of the given storage type.
// Nulls, NaN and infinite floats become nil. A value that cannot represent the type is a bad parameter,
// so that a batch is rejected before any statement is issued.
func coerceValue(storageType models.StorageType, value any) (any, error) {
	value = dropNonFinite(value)
	if value == nil {
		return nil, nil
	}

	var coerced any
	var ok bool
	switch storageType {
	case models.StorageTypeBigint:
		coerced, ok = toInt64(value)
	case models.StorageTypeDouble:
		coerced, ok = toFloat64(value)
	case models.StorageTypeBoolean:
		coerced, ok = toBool(value)
	case models.StorageTypeTimestamp:
		coerced, ok = ToTime(value)
	default:
		coerced, ok = toText(value), true
	}

	if !ok {
		return nil, errors.Wrapf(models.BadParameterError, "value '%v' is not a valid %s", value, storageType)
	}
	return coerced, nil
}

// coerceRow keys the row by storage column name and coerces each value to its column type.
// Keys that match no column of the schema are rejected.
func coerceRow(schema models.DatasetSchema, row models.Row) (models.Row, error) {
	out := make(models.Row, len(schema))
	for key, value := range row {
		name := storageColumnName(key)
		column, ok := schema.Column(name)
		if !ok {
			return nil, errors.Wrapf(models.BadParameterError, "unknown column '%s'", key)
		}
		coerced, err := coerceValue(column.Type, value)
		if err != nil {
			return nil, errors.Wrapf(err, "column '%s'", name)
		}
		out[name] = coerced
	}
	return out, nil
}

func coerceRows(schema models.DatasetSchema, rows []models.Row) ([]models.Row, error) {
	out := make([]models.Row, len(rows))
	for i, row := range rows {
		coerced, err := coerceRow(schema, row)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i)
		}
		out[i] = coerced
	}
	return out, nil
}

func dropNonFinite(value any) any {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
	case float32:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil
		}
	}
	return value
}

func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), v <= math.MaxInt64
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(v), v <= math.MaxInt64
	case float32:
		return wholeFloat(float64(v))
	case float64:
		return wholeFloat(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, true
		}
		if f, err := v.Float64(); err == nil {
			return wholeFloat(f)
		}
	case string:
		s := strings.TrimSpace(v)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return wholeFloat(f)
		}
	}
	return 0, false
}

func wholeFloat(f float64) (int64, bool) {
	if f != math.Trunc(f) || f >= 0x1p63 || f < -0x1p63 {
		return 0, false
	}
	return int64(f), true
}

func toFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
	}
	if i, ok := toInt64(value); ok {
		return float64(i), true
	}
	return 0, false
}

func toBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return b, err == nil
	}
	return false, false
}

// ToTime reads a timestamp from a time value or from a string in one of the accepted layouts.
func ToTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		return parseTimestamp(strings.TrimSpace(v))
	}
	return time.Time{}, false
}

func toText(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

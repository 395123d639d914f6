package scenarios

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/checkmarble/datalab/models"

	"github.com/jackc/pgx/v5/pgtype"
)

// NormalizeValue narrows a value read from any source to a JSON safe form: integers become int64,
// floats float64 (NaN and infinities become nil), decimals float64, times RFC3339 strings in UTC and
// bytes strings. Maps and slices are normalized recursively. Normalizing twice changes nothing.
func NormalizeValue(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case string, bool, int64:
		return v
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case uint:
		return normalizeUnsigned(uint64(v))
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return normalizeUnsigned(v)
	case float32:
		return finiteOrNil(float64(v))
	case float64:
		return finiteOrNil(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return finiteOrNil(f)
		}
		return v.String()
	case pgtype.Numeric:
		if !v.Valid || v.NaN {
			return nil
		}
		f, err := v.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return finiteOrNil(f.Float64)
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case pgtype.Timestamp:
		if !v.Valid {
			return nil
		}
		return NormalizeValue(v.Time)
	case pgtype.Timestamptz:
		if !v.Valid {
			return nil
		}
		return NormalizeValue(v.Time)
	case pgtype.Date:
		if !v.Valid {
			return nil
		}
		return NormalizeValue(v.Time)
	case []byte:
		return string(v)
	case models.Row:
		return map[string]any(NormalizeRow(v))
	case map[string]any:
		return map[string]any(NormalizeRow(v))
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = NormalizeValue(item)
		}
		return out
	case fmt.Stringer:
		return v.String()
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = NormalizeValue(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			out := make(map[string]any, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				out[iter.Key().String()] = NormalizeValue(iter.Value().Interface())
			}
			return out
		}
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return NormalizeValue(rv.Elem().Interface())
	}
	return fmt.Sprint(value)
}

func NormalizeRow(row map[string]any) models.Row {
	out := make(models.Row, len(row))
	for key, value := range row {
		out[key] = NormalizeValue(value)
	}
	return out
}

func NormalizeRows(rows []models.Row) []models.Row {
	out := make([]models.Row, len(rows))
	for i, row := range rows {
		out[i] = NormalizeRow(row)
	}
	return out
}

func normalizeUnsigned(v uint64) any {
	if v > math.MaxInt64 {
		return float64(v)
	}
	return int64(v)
}

func finiteOrNil(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

package datasets

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/checkmarble/datalab/models"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferFromDeclared(t *testing.T) {
	t.Run("explicit order and aliases", func(t *testing.T) {
		schema, err := InferFromDeclared(
			map[string]string{"Région": "VARCHAR", "Amount": "FLOAT", "Qty": "INTEGER", "Day": "DATE"},
			[]string{"Région", "Amount", "Qty", "Day"},
		)
		require.NoError(t, err)
		assert.Equal(t, models.DatasetSchema{
			{Name: "region", Type: models.StorageTypeText},
			{Name: "amount", Type: models.StorageTypeDouble},
			{Name: "qty", Type: models.StorageTypeBigint},
			{Name: "day", Type: models.StorageTypeTimestamp},
		}, schema)
	})

	t.Run("alphabetical order without explicit order", func(t *testing.T) {
		schema, err := InferFromDeclared(map[string]string{"b": "TEXT", "a": "BOOLEAN"}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, schema.Names())
	})

	t.Run("colliding names", func(t *testing.T) {
		_, err := InferFromDeclared(map[string]string{"Unit Price": "FLOAT", "unit_price": "FLOAT"}, nil)
		assert.True(t, errors.Is(err, models.BadParameterError))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := InferFromDeclared(nil, nil)
		assert.True(t, errors.Is(err, models.ErrEmptyDatasetSchema))
	})
}

func TestInferFromColumns(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []models.Row{
		{"Name": "a", "Amount": 1, "Ratio": 0.5, "Active": true, "Day": day, "Mixed": 1, "Empty": nil, "Count": json.Number("3")},
		{"Name": "b", "Amount": 2, "Ratio": 1, "Active": false, "Day": day, "Mixed": "x", "Empty": nil, "Count": json.Number("4")},
		{"Name": nil, "Amount": math.NaN(), "Ratio": 2.5, "Active": nil, "Day": nil, "Mixed": nil, "Count": nil},
	}
	columns := []string{"Name", "Amount", "Ratio", "Active", "Day", "Mixed", "Empty", "Count"}

	schema, err := InferFromColumns(columns, rows)
	require.NoError(t, err)
	assert.Equal(t, models.DatasetSchema{
		{Name: "name", Type: models.StorageTypeText},
		{Name: "amount", Type: models.StorageTypeBigint},
		{Name: "ratio", Type: models.StorageTypeDouble},
		{Name: "active", Type: models.StorageTypeBoolean},
		{Name: "day", Type: models.StorageTypeTimestamp},
		{Name: "mixed", Type: models.StorageTypeText},
		{Name: "empty", Type: models.StorageTypeText},
		{Name: "count", Type: models.StorageTypeBigint},
	}, schema)

	again, err := InferFromColumns(columns, rows)
	require.NoError(t, err)
	assert.Equal(t, schema, again)
}

func TestInferFromColumnsWithoutOrder(t *testing.T) {
	schema, err := InferFromColumns(nil, []models.Row{{"b": 1}, {"a": "x"}})
	require.NoError(t, err)
	assert.Equal(t, models.DatasetSchema{
		{Name: "a", Type: models.StorageTypeText},
		{Name: "b", Type: models.StorageTypeBigint},
	}, schema)

	_, err = InferFromColumns(nil, nil)
	assert.True(t, errors.Is(err, models.ErrEmptyDatasetSchema))
}

func TestInferValue(t *testing.T) {
	assert.Nil(t, InferValue(""))
	assert.Nil(t, InferValue("   "))
	assert.Equal(t, int64(42), InferValue("42"))
	assert.Equal(t, int64(-7), InferValue(" -7 "))
	assert.Equal(t, 3.25, InferValue("3.25"))
	assert.Equal(t, true, InferValue("TRUE"))
	assert.Equal(t, false, InferValue("false"))
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), InferValue("2024-02-29"))
	assert.Equal(t, time.Date(2024, 2, 29, 13, 4, 5, 0, time.UTC), InferValue("2024-02-29 13:04:05"))
	assert.Equal(t, "north", InferValue("north"))
	assert.Equal(t, "NaN", InferValue("NaN"))
}

func TestCoerceValue(t *testing.T) {
	tests := []struct {
		name        string
		storageType models.StorageType
		input       any
		expected    any
		valid       bool
	}{
		{"bigint from int", models.StorageTypeBigint, 3, int64(3), true},
		{"bigint from whole float", models.StorageTypeBigint, 3.0, int64(3), true},
		{"bigint from json number", models.StorageTypeBigint, json.Number("12"), int64(12), true},
		{"bigint from numeric string", models.StorageTypeBigint, " 12 ", int64(12), true},
		{"bigint from fractional float", models.StorageTypeBigint, 3.5, nil, false},
		{"bigint from 2^63", models.StorageTypeBigint, 0x1p63, nil, false},
		{"bigint from -2^63", models.StorageTypeBigint, -0x1p63, int64(math.MinInt64), true},
		{"bigint from 2^63 string", models.StorageTypeBigint, "9.223372036854775808e18", nil, false},
		{"bigint from text", models.StorageTypeBigint, "not-a-number", nil, false},
		{"bigint from bool", models.StorageTypeBigint, true, nil, false},
		{"double from int", models.StorageTypeDouble, int64(2), 2.0, true},
		{"double from string", models.StorageTypeDouble, "2.5", 2.5, true},
		{"double from NaN", models.StorageTypeDouble, math.NaN(), nil, true},
		{"double from infinity", models.StorageTypeDouble, math.Inf(1), nil, true},
		{"boolean from string", models.StorageTypeBoolean, "true", true, true},
		{"boolean from int", models.StorageTypeBoolean, 1, nil, false},
		{"timestamp from string", models.StorageTypeTimestamp, "2024-01-02", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), true},
		{"timestamp from garbage", models.StorageTypeTimestamp, "tomorrow", nil, false},
		{"text from int", models.StorageTypeText, 12, "12", true},
		{"null", models.StorageTypeBigint, nil, nil, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			value, err := coerceValue(test.storageType, test.input)
			if !test.valid {
				assert.True(t, errors.Is(err, models.BadParameterError))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, test.expected, value)
		})
	}
}

func TestCoerceRow(t *testing.T) {
	schema := models.DatasetSchema{
		{Name: "region", Type: models.StorageTypeText},
		{Name: "amount", Type: models.StorageTypeDouble},
		{Name: "id_", Type: models.StorageTypeBigint},
	}

	row, err := coerceRow(schema, models.Row{"Région": "north", "Amount": 3, "ID": "4"})
	require.NoError(t, err)
	assert.Equal(t, models.Row{"region": "north", "amount": 3.0, "id_": int64(4)}, row)

	_, err = coerceRow(schema, models.Row{"unknown": 1})
	assert.True(t, errors.Is(err, models.BadParameterError))

	_, err = coerceRows(schema, []models.Row{{"amount": 1}, {"amount": "not-a-number"}})
	assert.True(t, errors.Is(err, models.BadParameterError))
}

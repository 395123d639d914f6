package scenarios

import (
	"encoding/json"
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/checkmarble/datalab/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeValue(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 30, 0, 500, time.FixedZone("CET", 3600))

	tests := []struct {
		name     string
		input    any
		expected any
	}{
		{name: "nil", input: nil, expected: nil},
		{name: "int32", input: int32(7), expected: int64(7)},
		{name: "uint16", input: uint16(7), expected: int64(7)},
		{name: "huge uint64", input: uint64(math.MaxUint64), expected: float64(math.MaxUint64)},
		{name: "float32", input: float32(1.5), expected: 1.5},
		{name: "NaN", input: math.NaN(), expected: nil},
		{name: "infinity", input: math.Inf(-1), expected: nil},
		{name: "json integer", input: json.Number("12"), expected: int64(12)},
		{name: "json float", input: json.Number("1.25"), expected: 1.25},
		{name: "numeric", input: pgtype.Numeric{Int: big.NewInt(12345), Exp: -2, Valid: true}, expected: 123.45},
		{name: "null numeric", input: pgtype.Numeric{}, expected: nil},
		{name: "time", input: at, expected: "2024-03-01T11:30:00.0000005Z"},
		{name: "timestamp", input: pgtype.Timestamp{Time: at.UTC(), Valid: true}, expected: "2024-03-01T11:30:00.0000005Z"},
		{name: "null timestamp", input: pgtype.Timestamptz{}, expected: nil},
		{name: "bytes", input: []byte("abc"), expected: "abc"},
		{name: "stringer", input: uuid.MustParse("4d1b3c2a-0000-4000-8000-000000000001"), expected: "4d1b3c2a-0000-4000-8000-000000000001"},
		{name: "string", input: "x", expected: "x"},
		{name: "bool", input: true, expected: true},
		{
			name:     "nested",
			input:    map[string]any{"a": []int{1, 2}, "b": models.Row{"c": float32(2)}},
			expected: map[string]any{"a": []any{int64(1), int64(2)}, "b": map[string]any{"c": 2.0}},
		},
		{name: "pointer", input: func() *int { i := 3; return &i }(), expected: int64(3)},
		{name: "nil pointer", input: (*int)(nil), expected: nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			normalized := NormalizeValue(test.input)
			assert.Equal(t, test.expected, normalized)
			assert.Equal(t, normalized, NormalizeValue(normalized), "normalizing twice changes nothing")
		})
	}
}

func TestNormalizeRows_JsonSafe(t *testing.T) {
	rows := []models.Row{
		{
			"id":     int64(1),
			"amount": pgtype.Numeric{Int: big.NewInt(105), Exp: -1, Valid: true},
			"ratio":  math.NaN(),
			"at":     time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			"raw":    []byte{'o', 'k'},
		},
	}

	normalized := NormalizeRows(rows)
	encoded, err := json.Marshal(normalized)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"amount":10.5,"ratio":null,"at":"2024-01-02T00:00:00Z","raw":"ok"}]`, string(encoded))

	var decoded []models.Row
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	reencoded, err := json.Marshal(NormalizeRows(decoded))
	require.NoError(t, err)
	assert.JSONEq(t, string(encoded), string(reencoded))
}

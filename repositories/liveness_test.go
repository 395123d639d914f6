package repositories

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveness(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT 1").WillReturnRows(pgxmock.NewRows([]string{"?column?"}).AddRow(1))
	assert.NoError(t, LivenessRepository{}.Liveness(context.Background(), mock))

	mock.ExpectQuery("SELECT 1").WillReturnError(errors.New("connection refused"))
	assert.Error(t, LivenessRepository{}.Liveness(context.Background(), mock))

	assert.NoError(t, mock.ExpectationsWereMet())
}

package repositories

import (
	"testing"

	"github.com/checkmarble/datalab/models"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestAsStorageFailure(t *testing.T) {
	assert.Nil(t, AsStorageFailure(nil, "nothing"))

	conflict := errors.Wrap(models.ErrDatasetAlreadyExists, "sales")
	assert.Equal(t, conflict, AsStorageFailure(conflict, "create"))

	dataErr := AsStorageFailure(&pgconn.PgError{Code: "22P02"}, "insert")
	assert.True(t, errors.Is(dataErr, models.BadParameterError))
	assert.False(t, errors.Is(dataErr, models.StorageFailureError))

	missing := AsStorageFailure(&pgconn.PgError{Code: "42P01"}, "query")
	assert.True(t, errors.Is(missing, models.NotFoundError))

	cause := &pgconn.PgError{Code: "08006"}
	failure := AsStorageFailure(cause, "insert")
	assert.True(t, errors.Is(failure, models.StorageFailureError))
	var pgErr *pgconn.PgError
	assert.True(t, errors.As(failure, &pgErr))
	assert.Equal(t, "08006", pgErr.Code)
}

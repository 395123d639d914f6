package repositories

import (
	"github.com/checkmarble/datalab/models"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

func IsUniqueViolationError(err error) bool {
	var pgxErr *pgconn.PgError
	return errors.As(err, &pgxErr) && pgxErr.Code == pgerrcode.UniqueViolation
}

func IsDuplicateTableError(err error) bool {
	var pgxErr *pgconn.PgError
	return errors.As(err, &pgxErr) && pgxErr.Code == pgerrcode.DuplicateTable
}

func IsUndefinedTableError(err error) bool {
	var pgxErr *pgconn.PgError
	return errors.As(err, &pgxErr) && pgxErr.Code == pgerrcode.UndefinedTable
}

// IsDataError covers values that do not fit their column: invalid text representation,
// numeric overflow, bad datetime format...
func IsDataError(err error) bool {
	var pgxErr *pgconn.PgError
	return errors.As(err, &pgxErr) && pgerrcode.IsDataException(pgxErr.Code)
}

// AsStorageFailure classifies an error raised while running a unit of work. Errors already carrying
// an API meaning (bad parameter, conflict, not found) are returned as is, values rejected by
// postgres are bad parameters, and everything else is a storage failure.
func AsStorageFailure(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, models.BadParameterError),
		errors.Is(err, models.ConflictError),
		errors.Is(err, models.NotFoundError):
		return err
	case IsDataError(err):
		return errors.Mark(errors.Wrap(err, msg), models.BadParameterError)
	case IsUndefinedTableError(err):
		return errors.Mark(errors.Wrap(err, msg), models.NotFoundError)
	default:
		return models.WrapStorageFailure(err, msg)
	}
}

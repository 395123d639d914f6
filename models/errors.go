package models

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Base errors, related to default API status codes
var (
	// BadParameterError is rendered with the http status code 400
	BadParameterError = errors.New("bad parameter")

	// NotFoundError is rendered with the http status code 404
	NotFoundError = errors.New("not found")

	// ConflictError is rendered with the http status code 409
	ConflictError = errors.New("duplicate value")
)

// DB related errors
var (
	ErrIgnoreRollBackError = errors.New("ignore rollback error")

	// StorageFailureError marks errors raised by the database after the unit of work was rolled back.
	// They are rendered with the http status code 500 and may be retried by the caller.
	StorageFailureError = errors.New("storage failure")
)

// Dataset related errors
var (
	ErrDatasetAlreadyExists  = errors.Wrap(ConflictError, "dataset already exists")
	ErrInvalidDatasetName    = errors.Wrap(BadParameterError, "invalid dataset name")
	ErrInvalidFilterOperator = errors.Wrap(BadParameterError, "invalid filter operator")
	ErrEmptyDatasetSchema    = errors.Wrap(BadParameterError, "dataset schema has no column")
)

// Scenario and projection related errors
var (
	ErrComparisonRequiresTwoScenarios = errors.Wrap(BadParameterError, "a comparison requires exactly 2 scenarios")
	ErrInvalidProjectionParameters    = errors.Wrap(BadParameterError, "invalid projection parameters")

	// ModelFitError is never returned by a projection: it is attached to the skipped column instead.
	ModelFitError = errors.New("model fit failure")
)

// WrapStorageFailure keeps the original cause available for diagnostics while marking the error
// as a storage failure.
func WrapStorageFailure(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrap(err, msg), StorageFailureError)
}

type FieldValidationError map[string]string

func (e FieldValidationError) Error() string {
	return fmt.Sprintf("%v", map[string]string(e))
}

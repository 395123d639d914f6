package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/checkmarble/datalab/dto"
	"github.com/checkmarble/datalab/models"
	"github.com/checkmarble/datalab/pure_utils"
	"github.com/checkmarble/datalab/utils"
	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// presentError writes the error response matching err and reports unexpected errors.
// It returns false when there is no error to present.
func presentError(ctx context.Context, c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	status, response := errorResponse(err)
	if status >= http.StatusInternalServerError {
		utils.LogAndReportSentryError(ctx, err)
	} else {
		utils.LoggerFromContext(ctx).InfoContext(ctx, fmt.Sprintf("client error: %v", err))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, response)
	return true
}

// presentBindingError answers 400 to a request whose payload could not be bound.
func presentBindingError(ctx context.Context, c *gin.Context, err error) {
	presentError(ctx, c, errors.Mark(err, models.BadParameterError))
}

func errorResponse(err error) (int, dto.APIErrorResponse) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return http.StatusBadRequest, dto.APIErrorResponse{
			Message:   "the provided payload failed validations",
			ErrorCode: dto.InvalidPayload,
			Details:   pure_utils.Map(validationErrors, adaptFieldValidationError),
		}
	}

	var typeError *json.UnmarshalTypeError
	if errors.As(err, &typeError) {
		msg := fmt.Sprintf("expected type %s, got type %s", typeError.Type.String(), typeError.Value)
		if typeError.Field != "" {
			msg = fmt.Sprintf("field `%s` expected type %s, got type %s", typeError.Field, typeError.Type.String(), typeError.Value)
		}
		return http.StatusBadRequest, dto.APIErrorResponse{
			Message:   "the provided payload failed validations",
			ErrorCode: dto.InvalidPayload,
			Details:   []string{msg},
		}
	}

	switch {
	case errors.Is(err, models.NotFoundError):
		return http.StatusNotFound, dto.APIErrorResponse{Message: err.Error(), ErrorCode: dto.NotFound}
	case errors.Is(err, models.ConflictError):
		return http.StatusConflict, dto.APIErrorResponse{Message: err.Error(), ErrorCode: dto.Conflict}
	case errors.Is(err, models.BadParameterError), errors.Is(err, io.EOF):
		return http.StatusBadRequest, dto.APIErrorResponse{Message: err.Error(), ErrorCode: dto.InvalidPayload}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout, dto.APIErrorResponse{Message: "request timeout", ErrorCode: dto.RequestTimeout}
	case errors.Is(err, models.StorageFailureError):
		// The cause stays in the logs
		return http.StatusInternalServerError, dto.APIErrorResponse{
			Message:   "the storage layer failed, the operation was rolled back",
			ErrorCode: dto.StorageFailure,
		}
	}
	return http.StatusInternalServerError, dto.APIErrorResponse{
		Message:   "unexpected error",
		ErrorCode: dto.InternalFailure,
	}
}

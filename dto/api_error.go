package dto

type APIErrorResponse struct {
	Message   string    `json:"message"`
	ErrorCode ErrorCode `json:"error_code"`
	Details   []string  `json:"details,omitempty"`
}

type ErrorCode string

const (
	InvalidPayload  ErrorCode = "invalid_payload"
	NotFound        ErrorCode = "not_found"
	Conflict        ErrorCode = "conflict"
	StorageFailure  ErrorCode = "storage_failure"
	RequestTimeout  ErrorCode = "request_timeout"
	InternalFailure ErrorCode = "internal_error"
)

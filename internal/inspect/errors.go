package inspect

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/roach88/statetrace/internal/history"
	"github.com/roach88/statetrace/internal/status"
	"github.com/roach88/statetrace/internal/trace"
)

// Error types reported in ErrorResponse.ErrorType.
const (
	ErrorTypeTemporalAPI        = "TEMPORAL_API_ERROR"
	ErrorTypeNotStateWorkflow   = "NOT_STATE_WORKFLOW"
	ErrorTypeUnrecognizedStatus = "UNRECOGNIZED_STATUS"
	ErrorTypeCorrelation        = "CORRELATION_ERROR"
	ErrorTypeDecode             = "DECODE_ERROR"
)

// ErrorResponse is the body returned for a failed request.
type ErrorResponse struct {
	Detail    string `json:"detail"`
	Error     string `json:"error"`
	ErrorType string `json:"errorType"`
}

// APIError is a failed inspection with its transport status.
type APIError struct {
	Status    int
	ErrorType string
	Err       error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %v", e.ErrorType, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Response converts the error to its response body.
func (e *APIError) Response() ErrorResponse {
	return ErrorResponse{
		Detail:    e.Err.Error(),
		Error:     summaries[e.ErrorType],
		ErrorType: e.ErrorType,
	}
}

var summaries = map[string]string{
	ErrorTypeTemporalAPI:        "failed to fetch workflow history",
	ErrorTypeNotStateWorkflow:   "workflow is not a state workflow",
	ErrorTypeUnrecognizedStatus: "unrecognized workflow status",
	ErrorTypeCorrelation:        "history could not be correlated",
	ErrorTypeDecode:             "history could not be decoded",
}

// IsAPIError reports whether err is an *APIError of the given type.
// An empty errorType matches any APIError.
func IsAPIError(err error, errorType string) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return errorType == "" || apiErr.ErrorType == errorType
}

// AsResponse returns the response body for err. Errors that are not
// APIErrors are reported as decode errors.
func AsResponse(err error) ErrorResponse {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Response()
	}
	return (&APIError{Status: http.StatusBadRequest, ErrorType: ErrorTypeDecode, Err: err}).Response()
}

func fetchError(err error) *APIError {
	return &APIError{Status: http.StatusBadRequest, ErrorType: ErrorTypeTemporalAPI, Err: err}
}

// reconstructError classifies a reconstruction failure.
func reconstructError(err error) *APIError {
	errorType := ErrorTypeDecode
	switch {
	case trace.IsCorrelationError(err):
		errorType = ErrorTypeCorrelation
	case history.IsDecodeError(err):
		errorType = ErrorTypeDecode
	case errors.Is(err, status.ErrUnrecognizedStatus):
		errorType = ErrorTypeUnrecognizedStatus
	}
	return &APIError{Status: http.StatusBadRequest, ErrorType: errorType, Err: err}
}

// Package errors defines the error codes shared by the predictor, the CLI
// runners and the inference client, and writes them as JSON error bodies.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error codes.
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeNotFound       = "NOT_FOUND"
	CodeRateLimited    = "RATE_LIMITED"

	CodeInternal     = "INTERNAL_ERROR"
	CodeUnavailable  = "SERVICE_UNAVAILABLE"
	CodeTimeout      = "TIMEOUT"
	CodeMLError      = "ML_ERROR"
	CodeDatasetError = "DATASET_ERROR"
)

// statusByCode maps codes to HTTP statuses. Unlisted codes are 500.
var statusByCode = map[string]int{
	CodeValidation:     http.StatusBadRequest,
	CodeInvalidRequest: http.StatusBadRequest,
	CodeNotFound:       http.StatusNotFound,
	CodeRateLimited:    http.StatusTooManyRequests,
	CodeUnavailable:    http.StatusServiceUnavailable,
	CodeTimeout:        http.StatusGatewayTimeout,
}

// AppError carries a code, a client-safe message and the underlying cause.
// Err is logged but never written to a response.
type AppError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
	Err     error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the response status for the error's code.
func (e *AppError) HTTPStatus() int {
	if status, ok := statusByCode[e.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WithDetail attaches a client-visible key/value pair.
func (e *AppError) WithDetail(key, value string) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates an AppError without a cause.
func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap creates an AppError around err.
func Wrap(code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// ValidationError reports bad configuration or query parameters.
func ValidationError(message string) *AppError {
	return New(CodeValidation, message)
}

// InvalidRequestError reports an unusable request body.
func InvalidRequestError(message string) *AppError {
	return New(CodeInvalidRequest, message)
}

// NotFoundError reports an unknown model or resource.
func NotFoundError(resource string) *AppError {
	return New(CodeNotFound, resource+" not found")
}

// InternalError hides err behind a generic message.
func InternalError(message string, err error) *AppError {
	return Wrap(CodeInternal, message, err)
}

// MLError reports a failed or unparseable inference call.
func MLError(message string, err error) *AppError {
	return Wrap(CodeMLError, message, err)
}

// DatasetError reports a dataset that cannot be read, parsed or written.
func DatasetError(message string, err error) *AppError {
	return Wrap(CodeDatasetError, message, err)
}

// RateLimitedError reports a rejected request. retryAfterSeconds <= 0 omits the hint.
func RateLimitedError(retryAfterSeconds int) *AppError {
	err := New(CodeRateLimited, "rate limit exceeded")
	if retryAfterSeconds > 0 {
		err.WithDetail("retry_after", fmt.Sprintf("%d", retryAfterSeconds))
	}
	return err
}

// TimeoutError reports an inference call that ran past its deadline.
func TimeoutError(operation string) *AppError {
	if operation == "" {
		return New(CodeTimeout, "operation timed out")
	}
	return New(CodeTimeout, operation+" timed out")
}

// ServiceUnavailableError reports a pipeline that is still loading or down.
func ServiceUnavailableError(service string) *AppError {
	if service == "" {
		return New(CodeUnavailable, "service unavailable")
	}
	return New(CodeUnavailable, service+" is unavailable")
}

// As returns the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err's chain contains an AppError with the given code.
func HasCode(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes resp with status.
func WriteJSON(w http.ResponseWriter, status int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// WriteError writes err as a JSON error body. AppErrors keep their code and
// message; an expired deadline becomes TIMEOUT; anything else is reported as
// an opaque INTERNAL_ERROR.
func WriteError(w http.ResponseWriter, err error) {
	appErr, ok := As(err)
	if !ok {
		if stderrors.Is(err, context.DeadlineExceeded) {
			appErr = TimeoutError("request")
		} else {
			appErr = New(CodeInternal, "internal server error")
		}
	}

	WriteJSON(w, appErr.HTTPStatus(), ErrorResponse{
		Error:   appErr.Message,
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	})
}

package apperror

import (
	"errors"
	"net/http"
)

// AppError represents an application error with an HTTP status code and a
// stable machine-readable kind.
type AppError struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Error kinds. They partition every failure the relay can surface:
// a missing order, an unreachable upstream, a broken snapshot, or an
// exhausted delivery chain. Absent optional data is never an error.
const (
	KindNotFound            = "not_found"
	KindUpstreamUnavailable = "upstream_unavailable"
	KindRenderDefect        = "render_defect"
	KindDeliveryFailure     = "delivery_failure"
	KindBadRequest          = "bad_request"
	KindInternal            = "internal"
)

func (e *AppError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrBadRequest     = &AppError{Code: http.StatusBadRequest, Kind: KindBadRequest, Message: "Bad request"}
	ErrInternalServer = &AppError{Code: http.StatusInternalServerError, Kind: KindInternal, Message: "Internal server error"}
)

// NewNotFoundError reports a referenced resource that does not exist.
// Data is never fabricated in its place.
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Kind:    KindNotFound,
		Message: resource + " not found",
	}
}

// NewUpstreamError reports an unreachable or timed-out order source.
// The single attempt already made is not silently repeated.
func NewUpstreamError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadGateway,
		Kind:    KindUpstreamUnavailable,
		Message: message,
	}
}

// NewRenderDefectError reports a structurally invalid order snapshot, which
// is an upstream data contract violation, never recovered by guessing values.
func NewRenderDefectError(message string) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindRenderDefect,
		Message: message,
	}
}

// NewDeliveryError reports an exhausted delivery chain. The rendered buffer
// is kept by the caller and may be re-submitted without re-rendering.
func NewDeliveryError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadGateway,
		Kind:    KindDeliveryFailure,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error with a custom message.
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Kind:    KindBadRequest,
		Message: message,
	}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// GetAppError converts an error to AppError if possible.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindInternal,
		Message: err.Error(),
	}
}

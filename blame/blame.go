// Package blame provides a custom error type that adds additional information and functionality to standard errors.
package blame

import (
	"github.com/abhissng/nhwr-mediator/utils/types"
)

// Blame represents a custom error type that provides additional information and functionality.
type Blame interface {
	// error is embedded to ensure Blame implements the error interface.
	error

	// FetchErrCode returns the error code associated with the error.
	FetchErrCode() types.ErrorCode

	// FetchMessage returns the error message.
	FetchMessage() string

	// FetchDescription returns the error description.
	FetchDescription() string

	// FetchFields returns a map of additional error fields.
	FetchFields() map[string]any

	// FetchSource returns the source of the error.
	FetchSource() string

	// FetchComponent returns the component associated with the error.
	FetchComponent() types.ComponentErrorType

	// FetchResponseType returns the response type associated with the error.
	FetchResponseType() types.ResponseErrorType

	// FetchCauses returns a slice of underlying errors that caused this error.
	FetchCauses() []error

	// WithField adds a new field to the error and returns the updated Blame instance.
	WithField(key string, value any) Blame

	// WithCause adds a new underlying error to the error and returns the updated Blame instance.
	WithCause(err error) Blame

	// FetchErrorResponse returns the caller facing representation of the error.
	FetchErrorResponse() ErrorResponse

	// Unwrap exposes the causes to errors.Is and errors.As.
	Unwrap() []error
}

// ErrorResponse is the JSON body written to HTTP callers for a Blame.
type ErrorResponse struct {
	ErrorCode   types.ErrorCode `json:"error_code"`
	Message     string          `json:"message"`
	Description string          `json:"description,omitempty"`
	Component   string          `json:"component,omitempty"`
}

// NewBlame creates a new instance of Blame. It captures the source of the error at the point of instantiation.
func NewBlame(
	errCode types.ErrorCode,
	message, description string,
	component types.ComponentErrorType,
	responseType types.ResponseErrorType,
) Blame {
	return newError(errCode, message, description, component, responseType)
}

// NewBasicBlame creates a new instance of Blame with only an error code.
func NewBasicBlame(errCode types.ErrorCode) Blame {
	return newError(errCode, errCode.String(), "", "", "")
}

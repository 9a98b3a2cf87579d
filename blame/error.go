package blame

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/abhissng/nhwr-mediator/utils/types"
)

// Error struct holds the error information
type Error struct {
	errCode      types.ErrorCode
	component    types.ComponentErrorType
	responseType types.ResponseErrorType
	message      string
	description  string
	fields       map[string]any
	causes       []error
	source       string
}

func newError(
	errCode types.ErrorCode,
	message, description string,
	component types.ComponentErrorType,
	responseType types.ResponseErrorType,
) *Error {
	return &Error{
		errCode:      errCode,
		component:    component,
		responseType: responseType,
		message:      message,
		description:  description,
		fields:       map[string]any{},
		causes:       make([]error, 0),
		source:       findSource(),
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.errCode.String())
	if e.message != "" && e.message != e.errCode.String() {
		sb.WriteString(": ")
		sb.WriteString(e.message)
	}
	for _, cause := range e.causes {
		if cause == nil {
			continue
		}
		sb.WriteString(": ")
		sb.WriteString(cause.Error())
	}
	return sb.String()
}

// FetchErrCode returns the error code of the error as a ErrorCode
func (e *Error) FetchErrCode() types.ErrorCode {
	return e.errCode
}

// FetchMessage returns the message of the error as a string
func (e *Error) FetchMessage() string {
	return e.message
}

// FetchDescription returns the description of the error as a string
func (e *Error) FetchDescription() string {
	return e.description
}

// FetchFields returns the fields of the error
func (e *Error) FetchFields() map[string]any {
	return e.fields
}

// FetchSource returns the file and line the error was created at
func (e *Error) FetchSource() string {
	return e.source
}

// FetchComponent returns the component of the error
func (e *Error) FetchComponent() types.ComponentErrorType {
	return e.component
}

// FetchResponseType returns the response type of the error
func (e *Error) FetchResponseType() types.ResponseErrorType {
	return e.responseType
}

// FetchCauses returns the causes of the error
func (e *Error) FetchCauses() []error {
	return e.causes
}

// WithField adds a field to the error and returns the updated Error instance.
func (e *Error) WithField(key string, value any) Blame {
	e.fields[key] = value
	return e
}

// WithCause adds a cause to the error and returns the updated Error instance.
func (e *Error) WithCause(err error) Blame {
	if err != nil {
		e.causes = append(e.causes, err)
	}
	return e
}

// Unwrap returns the causes so errors.Is and errors.As see through a Blame.
func (e *Error) Unwrap() []error {
	return e.causes
}

// Is matches another Blame carrying the same error code.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.errCode == e.errCode
	}
	return false
}

// FetchErrorResponse returns the caller facing representation of the error.
func (e *Error) FetchErrorResponse() ErrorResponse {
	return ErrorResponse{
		ErrorCode:   e.errCode,
		Message:     e.message,
		Description: e.description,
		Component:   e.component.String(),
	}
}

// findSource returns the first caller outside this package.
func findSource() string {
	for skip := 2; skip < 8; skip++ {
		_, file, line, ok := runtime.Caller(skip)
		if !ok {
			break
		}
		if !strings.Contains(file, "/blame/") {
			return fmt.Sprintf("%s:%d", file, line)
		}
	}
	return "unknown"
}

package types

import (
	"go.uber.org/zap"
)

// Field is the structured logging field used across the mediator.
type Field = zap.Field

// StringConstant represents a constant string value.
type StringConstant string

// String returns the string representation of the StringConstant.
func (s StringConstant) String() string {
	return string(s)
}

// RequestID represents a request ID.
type RequestID string

// String returns the string representation of the RequestID.
func (r RequestID) String() string {
	return string(r)
}

// TransactionID is the platform transaction id carried on an inbound request.
// It is used only as a lookup key and is never validated.
type TransactionID string

// String returns the string representation of the TransactionID.
func (t TransactionID) String() string {
	return string(t)
}

// IsEmpty reports whether no transaction id was supplied.
func (t TransactionID) IsEmpty() bool {
	return t == ""
}

// ErrorCode represents an error code.
type ErrorCode string

// String returns the string representation of the ErrorCode.
func (e ErrorCode) String() string {
	return string(e)
}

// ResponseErrorType represents the type of response error.
type ResponseErrorType string

// String returns the string representation of the ResponseErrorType.
func (e ResponseErrorType) String() string {
	return string(e)
}

// ComponentErrorType represents the type of component error.
type ComponentErrorType string

// String returns the string representation of the ComponentErrorType.
func (e ComponentErrorType) String() string {
	return string(e)
}

// ContentType represents an HTTP content type.
type ContentType string

// String returns the string representation of the ContentType.
func (c ContentType) String() string {
	return string(c)
}

// LogMode is the level used by the plain console printer.
type LogMode string

// String returns the string representation of the LogMode.
func (l LogMode) String() string {
	return string(l)
}

// Protocol represents a network protocol.
type Protocol string

// String returns the string representation of the Protocol.
func (p Protocol) String() string {
	return string(p)
}

// EmptyCheck is implemented by values that know whether they are empty.
type EmptyCheck interface {
	IsEmpty() bool
}

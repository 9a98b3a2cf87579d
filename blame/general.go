package blame

import (
	"fmt"

	"github.com/abhissng/nhwr-mediator/utils/constant"
)

/*
** Constructors for the errors raised inside the mediator. Each one fixes the
** component and response type so handlers can map them straight to a status.
 */

// InternalServerError is an internal server error.
func InternalServerError(cause error) Blame {
	return NewBlame(ErrorInternalServerError, "internal server error",
		"An unexpected error occurred.", constant.ErrLibrary, constant.InternalServer).WithCause(cause)
}

// ConfigLoadFailed is returned when the deployment configuration can not be read.
func ConfigLoadFailed(cause error) Blame {
	return NewBlame(ErrorConfigLoadFailure, "failed to load configuration",
		"", constant.ErrAdaptors, constant.InternalServer).WithCause(cause)
}

// ConfigValidationFailed is returned when the deployment configuration is incomplete.
func ConfigValidationFailed(cause error) Blame {
	return NewBlame(ErrorConfigValidationFailed, "configuration validation failed",
		"", constant.ErrAdaptors, constant.InternalServer).WithCause(cause)
}

// MediatorDefinitionInvalid is returned when the mediator definition file is unusable.
func MediatorDefinitionInvalid(path string, cause error) Blame {
	return NewBlame(ErrorMediatorDefinitionInvalid, "invalid mediator definition",
		fmt.Sprintf("mediator definition %q could not be loaded", path), constant.ErrAdaptors, constant.InternalServer).
		WithField("path", path).WithCause(cause)
}

// ServerStartFailed is returned when the HTTP listener can not be opened.
func ServerStartFailed(cause error) Blame {
	return NewBlame(ErrorServerStartFailed, "server start failed",
		"", constant.ErrLifecycle, constant.InternalServer).WithCause(cause)
}

// RegistrationFailed is the fatal startup error raised by a failed mediator registration.
func RegistrationFailed(cause error) Blame {
	return NewBlame(ErrorRegistrationFailed, "failed to register mediator",
		"Check the platform API configuration.", constant.ErrLifecycle, constant.InternalServer).WithCause(cause)
}

// InitialConfigFetchFailed is the fatal startup error raised when the first config fetch fails.
func InitialConfigFetchFailed(cause error) Blame {
	return NewBlame(ErrorInitialConfigFetchFailed, "failed to fetch initial config",
		"", constant.ErrLifecycle, constant.InternalServer).WithCause(cause)
}

// HeartbeatFailed wraps a failed heartbeat round trip.
func HeartbeatFailed(cause error) Blame {
	return NewBlame(ErrorHeartbeatFailed, "heartbeat failed",
		"", constant.ErrPlatform, constant.Unavailable).WithCause(cause)
}

// PlatformAuthFailed is returned when the platform refuses to hand out an auth salt.
func PlatformAuthFailed(username string, cause error) Blame {
	return NewBlame(ErrorPlatformAuthFailed, "platform authentication failed",
		"", constant.ErrPlatform, constant.Unauthorized).WithField("username", username).WithCause(cause)
}

// PlatformUnexpectedStatus is returned when the platform answers with an unexpected status code.
func PlatformUnexpectedStatus(url string, status int, body string) Blame {
	return NewBlame(ErrorPlatformUnexpectedStatus,
		fmt.Sprintf("received status code %d with body %s", status, body),
		"", constant.ErrPlatform, constant.BadGateway).
		WithField("url", url).WithField("status", status)
}

// PlatformUnavailable is returned when the platform circuit breaker rejects a call.
func PlatformUnavailable(cause error) Blame {
	return NewBlame(ErrorPlatformUnavailable, "platform unavailable",
		"Calls to the platform are suspended after repeated failures.", constant.ErrPlatform, constant.Unavailable).
		WithCause(cause)
}

// TransactionUpdateFailed wraps a failed transaction status report.
func TransactionUpdateFailed(transactionID string, cause error) Blame {
	return NewBlame(ErrorTransactionUpdateFailed, "unable to save updated transaction",
		"", constant.ErrPlatform, constant.BadGateway).
		WithField("transaction_id", transactionID).WithCause(cause)
}

// DownstreamConfigMissing is returned when the live configuration has no usable downstream entry.
func DownstreamConfigMissing(service string, cause error) Blame {
	return NewBlame(ErrorDownstreamConfigMissing, "downstream configuration missing",
		fmt.Sprintf("configuration for %q must carry url, username and password", service),
		constant.ErrController, constant.InternalServer).WithField("service", service).WithCause(cause)
}

// DownstreamRequestFailed wraps a transport level failure talking to the downstream registry.
func DownstreamRequestFailed(method, url string, cause error) Blame {
	return NewBlame(ErrorDownstreamRequestFailed, "downstream request failed",
		"The practitioner registry could not be reached.", constant.ErrDownstream, constant.BadGateway).
		WithField("method", method).WithField("url", url).WithCause(cause)
}

// URLValidationFailed is returned for malformed target URLs.
func URLValidationFailed(url string, cause error) Blame {
	return NewBlame(ErrorURLValidationFailed, "url validation failed",
		"", constant.ErrAdaptors, constant.BadRequest).WithField("url", url).WithCause(cause)
}

// CreateHTTPRequestFailed is returned when an outbound request can not be built.
func CreateHTTPRequestFailed(cause error) Blame {
	return NewBlame(ErrorCreateHTTPRequestFailed, "failed to create http request",
		"", constant.ErrAdaptors, constant.InternalServer).WithCause(cause)
}

// MarshalFailed wraps an encoding failure.
func MarshalFailed(cause error) Blame {
	return NewBlame(ErrorMarshalFailed, "marshal failed", "", constant.ErrLibrary, constant.InternalServer).WithCause(cause)
}

// UnmarshalFailed wraps a decoding failure.
func UnmarshalFailed(cause error) Blame {
	return NewBlame(ErrorUnmarshalFailed, "unmarshal failed", "", constant.ErrLibrary, constant.BadGateway).WithCause(cause)
}

// RequestBodyDataExtractionFailed is returned when the inbound body can not be read.
func RequestBodyDataExtractionFailed(cause error) Blame {
	return NewBlame(ErrorRequestBodyDataExtractionFailed, "failed to read request body",
		"", constant.ErrController, constant.BadRequest).WithCause(cause)
}

package blame

import (
	"github.com/abhissng/nhwr-mediator/utils/types"
)

// Error identifiers raised by the mediator
const (
	ErrorInternalServerError             types.ErrorCode = "error-internal-server-error"
	ErrorConfigLoadFailure               types.ErrorCode = "error-config-load-failure"
	ErrorConfigValidationFailed          types.ErrorCode = "error-config-validation-failed"
	ErrorMediatorDefinitionInvalid       types.ErrorCode = "error-mediator-definition-invalid"
	ErrorServerStartFailed               types.ErrorCode = "error-server-start-failed"
	ErrorRegistrationFailed              types.ErrorCode = "error-registration-failed"
	ErrorInitialConfigFetchFailed        types.ErrorCode = "error-initial-config-fetch-failed"
	ErrorHeartbeatFailed                 types.ErrorCode = "error-heartbeat-failed"
	ErrorPlatformAuthFailed              types.ErrorCode = "error-platform-auth-failed"
	ErrorPlatformUnexpectedStatus        types.ErrorCode = "error-platform-unexpected-status"
	ErrorPlatformUnavailable             types.ErrorCode = "error-platform-unavailable"
	ErrorTransactionUpdateFailed         types.ErrorCode = "error-transaction-update-failed"
	ErrorDownstreamConfigMissing         types.ErrorCode = "error-downstream-config-missing"
	ErrorDownstreamRequestFailed         types.ErrorCode = "error-downstream-request-failed"
	ErrorURLValidationFailed             types.ErrorCode = "error-url-validation-failed"
	ErrorCreateHTTPRequestFailed         types.ErrorCode = "error-create-http-request-failed"
	ErrorMarshalFailed                   types.ErrorCode = "error-marshal-failed"
	ErrorUnmarshalFailed                 types.ErrorCode = "error-unmarshal-failed"
	ErrorRequestBodyDataExtractionFailed types.ErrorCode = "error-request-body-data-extraction-failed"
	ErrorTooManyRequests                 types.ErrorCode = "error-too-many-requests"
)

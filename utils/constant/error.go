package constant

import "github.com/abhissng/nhwr-mediator/utils/types"

// These are ComponentErrorType constant
const (
	ErrAdaptors    types.ComponentErrorType = "adaptors"
	ErrMiddlewares types.ComponentErrorType = "middlewares"
	ErrController  types.ComponentErrorType = "controller"
	ErrLifecycle   types.ComponentErrorType = "lifecycle"
	ErrPlatform    types.ComponentErrorType = "platform"
	ErrDownstream  types.ComponentErrorType = "downstream"
	ErrLibrary     types.ComponentErrorType = "library"
)

// These are generic HTTP request error constant
const (
	BadRequest      types.ResponseErrorType = "BadRequest"
	NotFound        types.ResponseErrorType = "NotFound"
	InternalServer  types.ResponseErrorType = "InternalServerError"
	Unauthorized    types.ResponseErrorType = "Unauthorized"
	BadGateway      types.ResponseErrorType = "BadGateway"
	Unavailable     types.ResponseErrorType = "ServiceUnavailable"
	TooManyRequests types.ResponseErrorType = "TooManyRequests"
)

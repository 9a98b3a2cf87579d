package constant

import (
	"github.com/abhissng/nhwr-mediator/utils/types"
)

// These are headers constant for the application
const (
	TransactionIDHeader = "X-OpenHIM-TransactionID"
	RequestIDHeader     = "X-Request-ID"
	AuthorizationHeader = "Authorization"
	ContentTypeHeader   = "Content-Type"
)

// OpenHIM authentication headers
const (
	AuthUsernameHeader  = "auth-username"
	AuthTimestampHeader = "auth-ts"
	AuthSaltHeader      = "auth-salt"
	AuthTokenHeader     = "auth-token" // #nosec G101
)

// Content types exchanged with the platform and the downstream registry
const (
	ContentTypeJSON    types.ContentType = "application/json"
	ContentTypeOpenHIM types.ContentType = "application/json+openhim"
)

// Route constants
const (
	APIVersion1Group   = "/api/v1"
	UpdatePractitioner = "/updatePractitioner"
	GetPractitioners   = "/getPractitioners"
	HealthEndpoint     = "/health"
	MetricsEndpoint    = "/metrics"
)

// Downstream registry paths
const (
	DownstreamUpdatePath = "/updatePractitioner/Practitioner"
	DownstreamListPath   = "/api/Practitioner"
	FormatQueryParam     = "_format"
	FormatJSON           = "json"
)

// These are protocol constants
const (
	TCP types.Protocol = "tcp"
)

package constant

import "github.com/abhissng/nhwr-mediator/utils/types"

const (
	ResetColor  = "\033[0m"  // Reset color
	RedColor    = "\033[31m" // Red (Error)
	YellowColor = "\033[33m" // Yellow (Warn)
	GreenColor  = "\033[32m" // Green (Info)
	BlueColor   = "\033[34m" // Blue (Debug)
)

// Supported log modes
const (
	INFO  types.LogMode = "info"
	WARN  types.LogMode = "warn"
	ERROR types.LogMode = "error"
	DEBUG types.LogMode = "debug"
	FATAL types.LogMode = "fatal"
)

// Log messages shared by several packages
const (
	ConnectionClosed     = "connection closed"
	ProcessingRequest    = "Processing request"
	ProcessedRequest     = "Processed request"
	ReceivedConfig       = "Received updated config"
	ReceivedInitConfig   = "Received initial config"
	DownstreamFailed     = "Downstream request failed"
	TransactionUpdated   = "Successfully updated transaction"
	TransactionFailed    = "Unable to save updated transaction to OpenHIM-core"
	LifecycleTransition  = "Lifecycle state changed"
	RegistrationFailed   = "Failed to register this mediator, check your config"
	InitialConfigFailed  = "Failed to fetch initial config"
	HeartbeatFailed      = "Heartbeat to OpenHIM-core failed"
	StaticConfigReloaded = "Reloaded static mediator config"
)

package constant

import (
	"time"
)

// These are generic constant for the application
const (
	RequestID     = "request_id"
	TransactionID = "transaction_id"
	Logger        = "logger"

	// These are general constant for config file
	Service            = "Service"
	Environment        = "Environment"
	RunMode            = "RunMode"
	MediatorEnv        = "MEDIATOR_ENV"
	NodeEnv            = "NODE_ENV"
	ResponseBodyPrint  = "ResponseBodyPrint"
	EnvPrefix          = "MEDIATOR"
	DefaultServiceName = "nhwr-mediator"
)

// Deployment modes
const (
	TestMode       = "test"
	ProductionMode = "production"
)

// GraceFul Shutdown Constants
const (
	ServerDefaultGracefulTime time.Duration = 10 * time.Second
)

// Downstream defaults
const (
	// DownstreamService is the configuration key of the practitioner registry.
	DownstreamService      = "nhwr"
	DefaultMaxSockets      = 32
	DefaultDownstreamLimit = 30 * time.Second
	TestModePort           = 7001
)

// Heartbeat defaults
const (
	DefaultHeartbeatInterval = 10 * time.Second
)

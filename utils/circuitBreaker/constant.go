package circuitBreaker

import "time"

const (
	DefaultCircuitBreakerName = "openhim-platform"
	DefaultBreakerTimeout     = 10 * time.Second
	DefaultBreakerInterval    = 30 * time.Second
	DefaultBreakerMaxRequests = 5
)

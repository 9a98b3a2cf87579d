// Package openhim talks to the interoperability platform the mediator is
// registered with: authentication, registration, configuration, heartbeats and
// transaction status reports.
package openhim

import (
	"time"

	"github.com/abhissng/nhwr-mediator/orchestration"
)

// Transaction status values understood by the platform.
const (
	StatusProcessing = "Processing"
	StatusSuccessful = "Successful"
	StatusFailed     = "Failed"
)

// Config holds the platform API credentials.
type Config struct {
	APIURL          string `mapstructure:"apiURL" validate:"required,url"`
	Username        string `mapstructure:"username" validate:"required"`
	Password        string `mapstructure:"password" validate:"required"`
	TrustSelfSigned bool   `mapstructure:"trustSelfSigned"`
}

type authResponse struct {
	Salt string `json:"salt"`
	Ts   string `json:"ts"`
}

type heartbeatRequest struct {
	Uptime float64 `json:"uptime"`
	Config bool    `json:"config"`
}

// TransactionResponse is the response section of a TransactionUpdate.
type TransactionResponse struct {
	Status    int       `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Body      string    `json:"body"`
}

// TransactionUpdate is the payload written to /transactions/{id}.
type TransactionUpdate struct {
	MediatorURN    string                        `json:"x-mediator-urn"`
	Status         string                        `json:"status"`
	Response       TransactionResponse           `json:"response"`
	Orchestrations []orchestration.Orchestration `json:"orchestrations"`
}

package http

import (
	"net/http"
	"time"
)

// HTTP method constants
const (
	MethodGet  = http.MethodGet
	MethodPost = http.MethodPost
	MethodPut  = http.MethodPut
)

// Client defaults
const (
	DefaultTimeout  = 30 * time.Second
	DefaultMaxConns = 32
)

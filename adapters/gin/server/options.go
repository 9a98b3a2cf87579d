package server

import (
	"net"
	"time"

	"github.com/abhissng/nhwr-mediator/adapters/log"
	"github.com/gin-gonic/gin"
)

// ServerOption defines a functional option for configuring the server
type ServerOption func(*ServerOptions)

// WithHost sets the interface to bind; empty means all interfaces.
func WithHost(host string) ServerOption {
	return func(o *ServerOptions) {
		o.host = host
	}
}

// WithPort sets the server port. Port 0 picks a free port.
func WithPort(port int) ServerOption {
	return func(o *ServerOptions) {
		o.port = port
	}
}

// WithListener serves on an already opened listener instead of binding host:port.
func WithListener(l net.Listener) ServerOption {
	return func(o *ServerOptions) {
		o.listener = l
	}
}

// WithBaseURL sets the base URL for the server
func WithBaseURL(baseURL string) ServerOption {
	return func(o *ServerOptions) {
		o.baseURL = baseURL
	}
}

// WithGzip turns response compression on or off.
func WithGzip(enabled bool) ServerOption {
	return func(o *ServerOptions) {
		o.gzip = enabled
	}
}

// WithGlobalMiddleware adds global middleware
func WithGlobalMiddleware(middleware gin.HandlerFunc) ServerOption {
	return func(o *ServerOptions) {
		o.GlobalMiddlewares = append(o.GlobalMiddlewares, middleware)
	}
}

// WithRouteGroup adds a route group
func WithRouteGroup(group RouteGroupConfig) ServerOption {
	return func(o *ServerOptions) {
		o.RouteGroups = append(o.RouteGroups, group)
	}
}

// WithRoutes adds routes directly under the base URL
func WithRoutes(routes []RouteConfig) ServerOption {
	return func(o *ServerOptions) {
		o.RouteGroups = append(o.RouteGroups, RouteGroupConfig{Routes: routes})
	}
}

// WithGracefulTimeOut bounds how long Shutdown waits for in-flight requests.
func WithGracefulTimeOut(timeOut time.Duration) ServerOption {
	return func(o *ServerOptions) {
		o.gracefulTimeOut = timeOut
	}
}

// WithRoutingConfigurator allows you to supply a custom routing function.
// This is useful if your routes need to inject additional middleware in between.
func WithRoutingConfigurator(fn func(*gin.Engine)) ServerOption {
	return func(o *ServerOptions) {
		o.RoutingConfigurator = fn
	}
}

// WithLogger sets the log
func WithLogger(l *log.Log) ServerOption {
	return func(o *ServerOptions) {
		o.log = l
	}
}

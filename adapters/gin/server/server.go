package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/abhissng/nhwr-mediator/adapters/gin/middleware"
	"github.com/abhissng/nhwr-mediator/adapters/log"
	"github.com/abhissng/nhwr-mediator/blame"
	"github.com/abhissng/nhwr-mediator/utils/constant"
	"github.com/abhissng/nhwr-mediator/utils/helpers"
	"github.com/gin-gonic/gin"
)

// Server is the mediator's HTTP listener.
type Server struct {
	options *ServerOptions
	engine  *gin.Engine
	http    *http.Server

	mu       sync.Mutex
	listener net.Listener
	errs     chan error
}

// New builds the gin engine and registers every route. Nothing is bound
// until Start.
func New(opts ...ServerOption) *Server {
	options := DefaultServerOptions()
	for _, opt := range opts {
		opt(options)
	}
	if options.log == nil {
		options.log = log.NewBasicLogger(helpers.IsProdEnvironment())
		options.log.Warn("Logger not provided, using default logger")
	}

	if helpers.IsProdEnvironment() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		options.log.Error("Recovered from panic", log.Any("panic", recovered), log.String("path", c.Request.URL.Path))
		b := blame.InternalServerError(nil)
		c.AbortWithStatusJSON(http.StatusInternalServerError, b.FetchErrorResponse())
	}))
	if options.gzip {
		router.Use(middleware.CompressionMiddleware())
	}
	applyGlobalMiddlewares(router, options.GlobalMiddlewares)

	if options.RoutingConfigurator != nil {
		options.RoutingConfigurator(router)
	} else {
		configureRouteGroups(router.Group(options.baseURL), options.RouteGroups)
	}

	return &Server{
		options: options,
		engine:  router,
		http:    &http.Server{Handler: router},
		errs:    make(chan error, 1),
	}
}

// Engine exposes the gin engine, mainly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start binds the listener and serves in the background. It returns once the
// socket is open; later serve failures are delivered on Errors.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return blame.ServerStartFailed(errors.New("server already started"))
	}

	listener := s.options.listener
	if listener == nil {
		addr := net.JoinHostPort(s.options.host, strconv.Itoa(s.options.port))
		var err error
		listener, err = net.Listen(string(constant.TCP), addr)
		if err != nil {
			return blame.ServerStartFailed(err).WithField("address", addr)
		}
	}
	s.listener = listener

	s.options.log.Info("Listening", log.String("address", listener.Addr().String()))
	go func() {
		if err := s.http.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errs <- blame.ServerStartFailed(err)
		}
		close(s.errs)
	}()
	return nil
}

// Addr is the bound address, or empty before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Errors reports a failure of the serve loop. It is closed when serving stops.
func (s *Server) Errors() <-chan error {
	return s.errs
}

// Shutdown stops accepting connections and waits for in-flight requests, at
// most the graceful timeout or until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	started := s.listener != nil
	s.mu.Unlock()
	if !started {
		return nil
	}

	s.options.log.Info("Gracefully Shutting down server......")
	ctx, cancel := context.WithTimeout(ctx, s.options.gracefulTimeOut)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		s.options.log.Warn("Forcing server close", log.Err(err))
		return s.http.Close()
	}
	s.options.log.Info(constant.ConnectionClosed)
	return nil
}

func applyGlobalMiddlewares(router *gin.Engine, middlewares []gin.HandlerFunc) {
	if len(middlewares) > 0 {
		router.Use(middlewares...)
	}
}

func configureRouteGroups(base *gin.RouterGroup, groups []RouteGroupConfig) {
	for _, group := range groups {
		routerGroup := base.Group(group.Prefix, group.Middlewares...)
		for _, route := range group.Routes {
			routerGroup.Handle(route.Method, route.Path, route.Handler)
		}
	}
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/abhissng/nhwr-mediator/adapters/gin/middleware"
	"github.com/abhissng/nhwr-mediator/adapters/gin/server"
	"github.com/abhissng/nhwr-mediator/adapters/log"
	"github.com/abhissng/nhwr-mediator/adapters/prometheus"
	"github.com/abhissng/nhwr-mediator/adapters/viper"
	"github.com/abhissng/nhwr-mediator/configstore"
	"github.com/abhissng/nhwr-mediator/handlers"
	"github.com/abhissng/nhwr-mediator/lifecycle"
	"github.com/abhissng/nhwr-mediator/mediator"
	"github.com/abhissng/nhwr-mediator/openhim"
	"github.com/abhissng/nhwr-mediator/utils/constant"
	"github.com/abhissng/nhwr-mediator/utils/graceful"
	"github.com/abhissng/nhwr-mediator/utils/helpers"
	"golang.org/x/time/rate"

	httpclient "github.com/abhissng/nhwr-mediator/adapters/http"
)

type runFlags struct {
	configDir    string
	environment  string
	mediatorFile string
}

func run(parent context.Context, flags *runFlags) error {
	var viperOpts []viper.ViperOption
	if flags.environment != "" {
		viperOpts = append(viperOpts, viper.WithEnvironment(flags.environment))
	}
	cfg, err := viper.Load(flags.configDir, viperOpts...)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if flags.mediatorFile != "" {
		cfg.MediatorFile = flags.mediatorFile
	}

	logger, err := log.NewLogger(log.NewLoggerConfig(
		helpers.IsProdEnvironment(),
		log.WithServiceName(cfg.Service),
		log.WithEnvironment(cfg.Environment),
		log.WithLevel(cfg.Log.Level),
		log.WithFile(cfg.Log.File),
	))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	def, err := mediator.Load(cfg.MediatorFile)
	if err != nil {
		logger.Error("Invalid mediator definition", log.String("path", cfg.MediatorFile), log.Err(err))
		_ = logger.Sync()
		return err
	}

	metrics := prometheus.NewMetricsCollector(prometheus.WithServiceName(cfg.Service))
	store := configstore.New()

	downstream := newDownstreamClient(cfg, logger)

	var platform *openhim.Client
	if cfg.Register || cfg.ReportTransactions {
		platform = openhim.NewClient(cfg.API, openhim.WithLogger(logger), openhim.WithObserver(metrics))
	}

	var lc *lifecycle.Lifecycle
	handlerOpts := []handlers.Option{
		handlers.WithLogger(logger),
		handlers.WithMetrics(metrics),
		handlers.WithLegacyFailureMode(cfg.Downstream.LegacyFailureMode),
		handlers.WithStateProvider(func() string {
			if lc == nil {
				return lifecycle.Unregistered.String()
			}
			return lc.State().String()
		}),
	}
	if cfg.ReportTransactions {
		handlerOpts = append(handlerOpts, handlers.WithReporter(openhim.NewReporter(platform, def.URN)))
	}
	h := handlers.New(store, downstream, handlerOpts...)

	shutdown := graceful.NewCoordinator(logger, constant.ServerDefaultGracefulTime)

	serverOpts := []server.ServerOption{
		server.WithLogger(logger),
		server.WithHost(cfg.Server.Host),
		server.WithPort(cfg.ListenPort(def.Port())),
		server.WithGzip(cfg.Server.Gzip),
		server.WithGlobalMiddleware(middleware.RequestIDMiddleware(logger)),
		server.WithGlobalMiddleware(middleware.TransactionIDMiddleware()),
		server.WithGlobalMiddleware(middleware.GinRequestLogger(logger, cfg.Log.LogBodies)),
		server.WithGlobalMiddleware(middleware.GinMiddleware(metrics)),
	}
	if cfg.Server.RateLimit.Enabled {
		limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.Server.RateLimit.RPS), cfg.Server.RateLimit.Burst, cfg.Server.RateLimit.TTL, logger)
		serverOpts = append(serverOpts, server.WithGlobalMiddleware(limiter.Middleware()))
		shutdown.Add("rate-limiter", graceful.ShutdownFunc(func(context.Context) error {
			limiter.StopCleanup()
			return nil
		}))
	}
	for _, group := range h.Routes() {
		serverOpts = append(serverOpts, server.WithRouteGroup(group))
	}
	srv := server.New(serverOpts...)
	middleware.RegisterMetricsEndpoint(srv.Engine(), metrics)

	lcOpts := []lifecycle.Option{
		lifecycle.WithLogger(logger),
		lifecycle.WithMetrics(metrics),
		lifecycle.WithShutdownTimeout(constant.ServerDefaultGracefulTime),
	}
	if cfg.Register {
		lcOpts = append(lcOpts,
			lifecycle.WithPlatform(platform),
			lifecycle.WithHeartbeat(cfg.Heartbeat, cfg.HeartbeatInterval),
		)
	} else if cfg.WatchStaticConfig {
		lcOpts = append(lcOpts, lifecycle.WithDefinitionWatch(cfg.MediatorFile))
	}
	lc = lifecycle.New(def, store, srv, lcOpts...)

	shutdown.Add("logger", graceful.ShutdownFunc(func(context.Context) error {
		// stdout cannot be synced on some platforms
		_ = logger.Sync()
		return nil
	}))

	ctx, stop := graceful.NotifyContext(parent)
	defer stop()

	logger.Info("Starting mediator",
		log.String("urn", def.URN),
		log.String("environment", cfg.Environment),
		log.Bool("register", cfg.Register),
		log.Bool("heartbeat", cfg.Heartbeat),
		log.Duration("downstreamTimeout", cfg.Downstream.Timeout),
	)
	runErr := lc.Run(ctx)
	if runErr != nil {
		logger.Error("Mediator stopped", log.String("state", lc.State().String()), log.Err(runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown.Run(shutdownCtx); err != nil && runErr == nil {
		return err
	}
	return runErr
}

func newDownstreamClient(cfg *viper.AppConfig, logger *log.Log) *httpclient.Client {
	return httpclient.NewClient(
		httpclient.WithTimeout(cfg.Downstream.Timeout),
		httpclient.WithMaxConns(cfg.Downstream.MaxConns),
		httpclient.WithFastHTTP(cfg.Downstream.UseFastHTTP),
		httpclient.WithSkipVerify(cfg.DownstreamSkipVerify()),
		httpclient.WithLogger(logger),
	)
}

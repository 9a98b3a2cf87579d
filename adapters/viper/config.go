package viper

import (
	"time"

	"github.com/abhissng/nhwr-mediator/adapters/validator"
	"github.com/abhissng/nhwr-mediator/blame"
	"github.com/abhissng/nhwr-mediator/openhim"
	"github.com/abhissng/nhwr-mediator/utils/constant"
	"github.com/spf13/viper"
)

// AppConfig is the deployment configuration of the mediator. The downstream
// registry settings are not part of it: they come from the platform.
type AppConfig struct {
	Service            string           `mapstructure:"service" validate:"required"`
	API                openhim.Config   `mapstructure:"api" validate:"-"`
	Register           bool             `mapstructure:"register"`
	Heartbeat          bool             `mapstructure:"heartbeat"`
	HeartbeatInterval  time.Duration    `mapstructure:"heartbeatInterval" validate:"gte=0"`
	MediatorFile       string           `mapstructure:"mediatorFile" validate:"required"`
	WatchStaticConfig  bool             `mapstructure:"watchStaticConfig"`
	ReportTransactions bool             `mapstructure:"reportTransactions"`
	Server             ServerConfig     `mapstructure:"server"`
	Downstream         DownstreamConfig `mapstructure:"downstream"`
	Log                LogConfig        `mapstructure:"log"`

	// Environment is the slug the file was selected with ("test" or "production").
	Environment string `mapstructure:"-"`
}

// ServerConfig configures the inbound listener.
type ServerConfig struct {
	Host      string          `mapstructure:"host"`
	Port      int             `mapstructure:"port" validate:"gte=0,lte=65535"`
	Gzip      bool            `mapstructure:"gzip"`
	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

// RateLimitConfig configures per-client rate limiting.
type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	RPS     float64       `mapstructure:"rps" validate:"required_if=Enabled true,gte=0"`
	Burst   int           `mapstructure:"burst" validate:"required_if=Enabled true,gte=0"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// DownstreamConfig configures calls to the registry.
type DownstreamConfig struct {
	Timeout           time.Duration `mapstructure:"timeout" validate:"gte=0"`
	MaxConns          int           `mapstructure:"maxConns" validate:"gte=0"`
	UseFastHTTP       bool          `mapstructure:"useFastHTTP"`
	LegacyFailureMode bool          `mapstructure:"legacyFailureMode"`
	// TrustSelfSigned is left nil when unset so that api.trustSelfSigned applies.
	TrustSelfSigned *bool `mapstructure:"trustSelfSigned"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level     string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	File      string `mapstructure:"file"`
	LogBodies bool   `mapstructure:"logBodies"`
}

var validate = validator.Default

func setDefaults(v *viper.Viper) {
	v.SetDefault("service", constant.DefaultServiceName)
	v.SetDefault("api.apiURL", "")
	v.SetDefault("api.username", "")
	v.SetDefault("api.password", "")
	v.SetDefault("api.trustSelfSigned", false)
	v.SetDefault("register", true)
	v.SetDefault("heartbeat", true)
	v.SetDefault("heartbeatInterval", constant.DefaultHeartbeatInterval)
	v.SetDefault("mediatorFile", "config/mediator.json")
	v.SetDefault("watchStaticConfig", false)
	v.SetDefault("reportTransactions", false)
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 0)
	v.SetDefault("server.gzip", false)
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.rps", 0)
	v.SetDefault("server.rateLimit.burst", 0)
	v.SetDefault("server.rateLimit.ttl", 5*time.Minute)
	v.SetDefault("downstream.timeout", constant.DefaultDownstreamLimit)
	v.SetDefault("downstream.maxConns", constant.DefaultMaxSockets)
	v.SetDefault("downstream.useFastHTTP", false)
	v.SetDefault("downstream.legacyFailureMode", false)
	v.SetDefault("log.level", "")
	v.SetDefault("log.file", "")
	v.SetDefault("log.logBodies", false)
}

// Validate checks the configuration. Platform credentials are only required
// when the mediator registers or reports transactions.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return blame.ConfigValidationFailed(err)
	}
	if c.Register || c.ReportTransactions {
		if err := validate.Struct(c.API); err != nil {
			return blame.ConfigValidationFailed(err)
		}
	}
	return nil
}

// DownstreamSkipVerify reports whether the registry client accepts
// self-signed certificates. downstream.trustSelfSigned wins when set.
func (c *AppConfig) DownstreamSkipVerify() bool {
	if c.Downstream.TrustSelfSigned != nil {
		return *c.Downstream.TrustSelfSigned
	}
	return c.API.TrustSelfSigned
}

// IsTest reports whether the test configuration was selected.
func (c *AppConfig) IsTest() bool {
	return c.Environment == constant.TestMode
}

// ListenPort picks the inbound port: fixed in test mode, then an explicit
// server.port, then the port the mediator definition advertises.
func (c *AppConfig) ListenPort(definitionPort int) int {
	switch {
	case c.IsTest():
		return constant.TestModePort
	case c.Server.Port > 0:
		return c.Server.Port
	default:
		return definitionPort
	}
}

// Load reads, decodes and validates the configuration found under configPath.
func Load(configPath string, opts ...ViperOption) (*AppConfig, error) {
	v := NewViper("config", "yaml", configPath, opts...)
	if err := v.InitialiseViper(); err != nil {
		return nil, err
	}

	cfg := &AppConfig{}
	if err := UnmarshalConfig(v, cfg); err != nil {
		return nil, err
	}
	cfg.Environment = v.Environment()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	// process wide lookups such as helpers.GetServiceName read the global instance
	viper.Set(constant.Service, cfg.Service)
	return cfg, nil
}

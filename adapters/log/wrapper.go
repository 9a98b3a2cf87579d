package log

import (
	"fmt"
	"time"

	"github.com/abhissng/nhwr-mediator/blame"
	"github.com/abhissng/nhwr-mediator/utils/helpers"
	"github.com/abhissng/nhwr-mediator/utils/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Helper functions to create fields without directly using zap

// String creates a single types.Field (string) for a given key-value pair.
func String(key string, value string) types.Field {
	return zap.String(key, value)
}

// Int creates a single types.Field (int) for a given key-value pair.
func Int(key string, value int) types.Field {
	return zap.Int(key, value)
}

// Int64 creates a single types.Field (int64) for a given key-value pair.
func Int64(key string, value int64) types.Field {
	return zap.Int64(key, value)
}

// Bool creates a single types.Field (bool) for a given key-value pair.
func Bool(key string, value bool) types.Field {
	return zap.Bool(key, value)
}

// Time creates a single types.Field (time.Time) for a given key-value pair.
func Time(key string, value time.Time) types.Field {
	return zap.Time(key, value)
}

// Duration creates a single types.Field (time.Duration) for a given key-value pair.
func Duration(key string, value time.Duration) types.Field {
	return zap.Duration(key, value)
}

// Any creates a single types.Field (any) for a given key-value pair.
// It is not sanitized; prefer (*Log).Any for payloads.
func Any(key string, value any) types.Field {
	return zap.Any(key, value)
}

// Err creates a single types.Field (error) for a given error.
func Err(err error) types.Field {
	return zap.Error(err)
}

// Stringer creates a single types.Field (fmt.Stringer) for a given key-value pair.
func Stringer(key string, value fmt.Stringer) types.Field {
	return zap.Stringer(key, value)
}

type errorArray []error

func (a errorArray) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, e := range a {
		if e == nil {
			enc.AppendString("<nil>")
		} else {
			enc.AppendString(e.Error())
		}
	}
	return nil
}

// Blame logs the error code of b together with its causes.
func Blame(b blame.Blame) zap.Field {
	if b == nil {
		return zap.Skip()
	}
	return zap.Object("blame", blameObject{b})
}

type blameObject struct {
	b blame.Blame
}

func (o blameObject) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("code", o.b.FetchErrCode().String())
	enc.AddString("message", o.b.FetchMessage())
	enc.AddString("source", o.b.FetchSource())
	if causes := o.b.FetchCauses(); len(causes) > 0 {
		return enc.AddArray("causes", errorArray(causes))
	}
	return nil
}

type LoggerConfig struct {
	// IsProd enables production mode (JSON output, Info level)
	IsProd bool

	// Level overrides the level picked from IsProd
	Level string

	// File enables a rotated JSON log file next to stdout
	File string

	// ZapOptions are the standard zap logger options
	ZapOptions []zap.Option

	// ServiceName overrides the default service name
	ServiceName string

	// Environment overrides the default environment
	Environment string

	// EncoderTailLength overrides the default encoder tail length
	EncoderTailLength int

	// Sanitizer masks secrets in values logged through (*Log).Any
	Sanitizer *helpers.Sanitizer
}

// LoggerOption defines a function that modifies LoggerConfig
type LoggerOption func(*LoggerConfig)

// NewLoggerConfig creates a new LoggerConfig with default values
func NewLoggerConfig(isProd bool, opts ...LoggerOption) *LoggerConfig {
	cfg := &LoggerConfig{
		ServiceName:       helpers.GetServiceName(),
		Environment:       helpers.GetEnvironment(),
		IsProd:            isProd,
		EncoderTailLength: 3,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// WithZapOptions adds zap logger options
func WithZapOptions(opts ...zap.Option) LoggerOption {
	return func(c *LoggerConfig) {
		c.ZapOptions = append(c.ZapOptions, opts...)
	}
}

// WithServiceName sets the service name
func WithServiceName(name string) LoggerOption {
	return func(c *LoggerConfig) {
		if name != "" {
			c.ServiceName = name
		}
	}
}

// WithEnvironment sets the environment
func WithEnvironment(env string) LoggerOption {
	return func(c *LoggerConfig) {
		if env != "" {
			c.Environment = env
		}
	}
}

// WithLevel overrides the log level (debug, info, warn, error)
func WithLevel(level string) LoggerOption {
	return func(c *LoggerConfig) {
		c.Level = level
	}
}

// WithFile writes logs to a rotated file as well as stdout
func WithFile(path string) LoggerOption {
	return func(c *LoggerConfig) {
		c.File = path
	}
}

// WithSanitizer sets the sanitizer used by (*Log).Any
func WithSanitizer(s *helpers.Sanitizer) LoggerOption {
	return func(c *LoggerConfig) {
		c.Sanitizer = s
	}
}

// WithEncoderTailLength sets the encoder tail length
func WithEncoderTailLength(length int) LoggerOption {
	return func(c *LoggerConfig) {
		if length > 0 {
			// Values <= 2 don't provide meaningful context beyond short encoder
			if length <= 2 {
				length = 0
			}
			if length > 7 {
				length = 7
			}
			c.EncoderTailLength = length
		}
	}
}

package log

import (
	"fmt"
	"os"

	"github.com/abhissng/nhwr-mediator/utils/helpers"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log struct holds the zap Logger instance.
type Log struct {
	*zap.Logger
	closeLog  func() error // Function to gracefully shut down the file sink
	sanitizer *helpers.Sanitizer
}

// NewBasicLogger creates a logger with the default configuration, used by
// adapters that were not handed one explicitly.
func NewBasicLogger(isProd bool) *Log {
	basicLogger, err := NewLogger(NewLoggerConfig(isProd))
	if err != nil {
		return &Log{Logger: zap.NewNop()}
	}
	return basicLogger
}

// NewNopLogger returns a logger that discards everything. Handy in tests.
func NewNopLogger() *Log {
	return &Log{Logger: zap.NewNop(), sanitizer: helpers.DefaultSanitizer}
}

// NewLogger creates a new Log instance with the specified log level and options.
// Use l.Any(key, value) when logging payloads so credentials are masked.
func NewLogger(cfg *LoggerConfig) (*Log, error) {

	// 1. Set the log level
	atomicLevel := zap.NewAtomicLevel()
	if cfg.IsProd {
		atomicLevel.SetLevel(zapcore.InfoLevel)
	} else {
		atomicLevel.SetLevel(zapcore.DebugLevel)
	}
	if cfg.Level != "" {
		if err := atomicLevel.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}

	// 2. Configure encoder settings
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:       "time",
		LevelKey:      "level",
		NameKey:       "log",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stacktrace",
		EncodeLevel: func() zapcore.LevelEncoder {
			if cfg.IsProd {
				return zapcore.CapitalLevelEncoder
			}
			return zapcore.CapitalColorLevelEncoder
		}(),
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeCaller:   helpers.TailCallerEncoder(cfg.EncoderTailLength),
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	defaultOptions := []zap.Option{
		zap.Fields(
			zap.String("environment", cfg.Environment),
			zap.String("service", cfg.ServiceName),
		),
		zap.AddCaller(),
		zap.AddCallerSkip(1),
	}
	options := append(defaultOptions, cfg.ZapOptions...)

	// 3. Select the encoder based on mode
	var encoder zapcore.Encoder
	if cfg.IsProd {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	// 4. stdout core, plus a rotated file core when a file is configured
	cores := []zapcore.Core{zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), atomicLevel)}

	var closeFunc func() error
	if cfg.File != "" {
		rotator := newRotatingFile(cfg.File)
		// files never get colour codes
		fileConfig := encoderConfig
		fileConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		fileEncoder := zapcore.NewJSONEncoder(fileConfig)
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(rotator), atomicLevel))
		closeFunc = rotator.Close
	}

	// 5. Every log message is sent to every core.
	l := zap.New(zapcore.NewTee(cores...), options...)

	sanitizer := cfg.Sanitizer
	if sanitizer == nil {
		sanitizer = helpers.DefaultSanitizer
	}
	return &Log{Logger: l, closeLog: closeFunc, sanitizer: sanitizer}, nil
}

// newRotatingFile returns the lumberjack sink used when file logging is enabled.
func newRotatingFile(filename string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
}

// Debug logs a message at the DebugLevel.
func (l *Log) Debug(msg string, fields ...zap.Field) {
	l.Logger.Debug(msg, fields...)
}

// Info logs a message at the InfoLevel.
func (l *Log) Info(msg string, fields ...zap.Field) {
	l.Logger.Info(msg, fields...)
}

// Warn logs a message at the WarnLevel.
func (l *Log) Warn(msg string, fields ...zap.Field) {
	l.Logger.Warn(msg, fields...)
}

// Error logs a message at the ErrorLevel.
func (l *Log) Error(msg string, fields ...zap.Field) {
	l.Logger.Error(msg, fields...)
}

// Fatal logs a message at the FatalLevel and then exits the program.
func (l *Log) Fatal(msg string, fields ...zap.Field) {
	l.Logger.Fatal(msg, fields...)
}

// With creates a child Log with the specified fields.
func (l *Log) With(fields ...zap.Field) *Log {
	return &Log{Logger: l.Logger.With(fields...), sanitizer: l.sanitizer}
}

// Any returns a zap field; the value is sanitized (blocked keys masked) before logging.
// Use this for configuration payloads, headers and bodies that may contain secrets.
func (l *Log) Any(key string, value any) zap.Field {
	if l.sanitizer != nil {
		value = l.sanitizer.Sanitize(value)
	}
	return zap.Any(key, value)
}

// Sync flushes any buffered log entries. Applications should take care to call
// Sync before exiting.
func (l *Log) Sync() error {
	err := l.Logger.Sync()

	if l.closeLog != nil {
		if closeErr := l.closeLog(); closeErr != nil {
			if err != nil {
				return fmt.Errorf("zap sync error: %w; file close error: %v", err, closeErr)
			}
			return closeErr
		}
	}
	return err
}

// Package logging defines the structured logging contract used across the
// DragonsEye services and its zap-backed implementation.  Components depend
// on the Logger interface only; go.uber.org/zap is not imported anywhere
// else, so the backend stays replaceable.
package logging

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ─────────────────────────────────────────────────────────────────────────────
// Field — structured log field carrier
// ─────────────────────────────────────────────────────────────────────────────

// Field is one key-value pair attached to a log entry.  A concrete struct
// keeps call sites explicit and lets the zap backend map the common value
// types without reflection.
type Field struct {
	Key   string
	Value interface{}
}

// ── Convenience constructors ──────────────────────────────────────────────────

// String builds a string Field.
func String(key, val string) Field { return Field{Key: key, Value: val} }

// Int builds an int Field.
func Int(key string, val int) Field { return Field{Key: key, Value: val} }

// Int64 builds an int64 Field.
func Int64(key string, val int64) Field { return Field{Key: key, Value: val} }

// Float64 builds a float64 Field.
func Float64(key string, val float64) Field { return Field{Key: key, Value: val} }

// Bool builds a bool Field.
func Bool(key string, val bool) Field { return Field{Key: key, Value: val} }

// Duration builds a time.Duration Field.
func Duration(key string, val time.Duration) Field { return Field{Key: key, Value: val} }

// Err captures an error under the conventional "error" key.  A nil error
// records the literal string "<nil>" so the key is always present.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: "<nil>"}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Any wraps an arbitrary value.  Prefer the typed constructors; values of
// unrecognized types go through zap.Any, which stringifies via reflection.
func Any(key string, val interface{}) Field { return Field{Key: key, Value: val} }

// ─────────────────────────────────────────────────────────────────────────────
// Logger interface
// ─────────────────────────────────────────────────────────────────────────────

// Logger is what every component receives via constructor injection.
// With and Named return children; the receiver is never mutated.
type Logger interface {
	// Debug records high-volume diagnostic entries, normally compiled out of
	// production by running at info level.
	Debug(msg string, fields ...Field)

	// Info records routine operational events.
	Info(msg string, fields ...Field)

	// Warn records recoverable anomalies worth surfacing.
	Warn(msg string, fields ...Field)

	// Error records failures scoped to a single request or operation.
	Error(msg string, fields ...Field)

	// Fatal records the message and exits the process.  Startup wiring only;
	// never reachable from a request path.
	Fatal(msg string, fields ...Field)

	// With returns a child Logger carrying the given fields on every entry.
	With(fields ...Field) Logger

	// Named returns a child Logger with name appended to the logger name,
	// period separated ("apiserver" then Named("http") logs as
	// "apiserver.http").
	Named(name string) Logger
}

// ─────────────────────────────────────────────────────────────────────────────
// LogConfig — logger construction parameters
// ─────────────────────────────────────────────────────────────────────────────

// LogConfig is populated from the service configuration (internal/config)
// and handed to NewLogger.
type LogConfig struct {
	// Level is the minimum severity emitted: "debug", "info", "warn" or
	// "error", case-insensitive.  Anything else means "info".
	Level string `yaml:"level" json:"level"`

	// Format picks the encoder: "json" for aggregation pipelines, "console"
	// for local development.  Anything else means "json".
	Format string `yaml:"format" json:"format"`

	// OutputPaths lists sinks for log entries.  "stdout" and "stderr" are
	// recognized specially by zap; anything else is opened as a file.
	// Nil means ["stdout"].
	OutputPaths []string `yaml:"output_paths" json:"output_paths"`

	// ErrorOutputPaths lists sinks for zap's own failures, such as a full
	// disk on an output path.  Nil means ["stderr"].
	ErrorOutputPaths []string `yaml:"error_output_paths" json:"error_output_paths"`
}

// ─────────────────────────────────────────────────────────────────────────────
// zap-backed implementation
// ─────────────────────────────────────────────────────────────────────────────

type zapLogger struct {
	z *zap.Logger
}

// fieldsToZap maps the common value types directly onto typed zap fields;
// anything unhandled falls through to zap.Any.
func fieldsToZap(fields []Field) []zap.Field {
	zf := make([]zap.Field, len(fields))
	for i, f := range fields {
		switch v := f.Value.(type) {
		case string:
			zf[i] = zap.String(f.Key, v)
		case int:
			zf[i] = zap.Int(f.Key, v)
		case int64:
			zf[i] = zap.Int64(f.Key, v)
		case float64:
			zf[i] = zap.Float64(f.Key, v)
		case bool:
			zf[i] = zap.Bool(f.Key, v)
		case time.Duration:
			zf[i] = zap.Duration(f.Key, v)
		case error:
			zf[i] = zap.NamedError(f.Key, v)
		default:
			zf[i] = zap.Any(f.Key, v)
		}
	}
	return zf
}

func (l *zapLogger) Debug(msg string, fields ...Field) { l.z.Debug(msg, fieldsToZap(fields)...) }
func (l *zapLogger) Info(msg string, fields ...Field)  { l.z.Info(msg, fieldsToZap(fields)...) }
func (l *zapLogger) Warn(msg string, fields ...Field)  { l.z.Warn(msg, fieldsToZap(fields)...) }
func (l *zapLogger) Error(msg string, fields ...Field) { l.z.Error(msg, fieldsToZap(fields)...) }
func (l *zapLogger) Fatal(msg string, fields ...Field) { l.z.Fatal(msg, fieldsToZap(fields)...) }

func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{z: l.z.With(fieldsToZap(fields)...)}
}

func (l *zapLogger) Named(name string) Logger {
	return &zapLogger{z: l.z.Named(name)}
}

// ─────────────────────────────────────────────────────────────────────────────
// Construction
// ─────────────────────────────────────────────────────────────────────────────

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// NewLogger builds a zap-backed Logger from cfg, applying defaults for any
// unset field (info level, json format, stdout/stderr sinks).  It fails only
// when an output path cannot be opened.
func NewLogger(cfg LogConfig) (Logger, error) {
	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stdout"}
	}
	errOutputs := cfg.ErrorOutputPaths
	if len(errOutputs) == 0 {
		errOutputs = []string{"stderr"}
	}

	sink, _, err := zap.Open(outputs...)
	if err != nil {
		return nil, fmt.Errorf("logging: open output paths: %w", err)
	}
	errSink, _, err := zap.Open(errOutputs...)
	if err != nil {
		return nil, fmt.Errorf("logging: open error output paths: %w", err)
	}

	var enc zapcore.Encoder
	if strings.EqualFold(cfg.Format, "console") {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewConsoleEncoder(ec)
	} else {
		ec := zap.NewProductionEncoderConfig()
		ec.TimeKey = "ts"
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(ec)
	}

	core := zapcore.NewCore(enc, sink, zap.NewAtomicLevelAt(parseLevel(cfg.Level)))
	z := zap.New(core,
		zap.ErrorOutput(errSink),
		zap.AddCaller(),
		zap.AddCallerSkip(1),
	)
	return &zapLogger{z: z}, nil
}

// NewLoggerFromCore wraps an existing zapcore.Core.  Used by tests that
// observe emitted entries.
func NewLoggerFromCore(core zapcore.Core) Logger {
	return &zapLogger{z: zap.New(core, zap.AddCallerSkip(1))}
}

// ─────────────────────────────────────────────────────────────────────────────
// No-op implementation
// ─────────────────────────────────────────────────────────────────────────────

type nopLogger struct{}

func (nopLogger) Debug(string, ...Field) {}
func (nopLogger) Info(string, ...Field)  {}
func (nopLogger) Warn(string, ...Field)  {}
func (nopLogger) Error(string, ...Field) {}
func (nopLogger) Fatal(string, ...Field) {}

func (n nopLogger) With(...Field) Logger { return n }
func (n nopLogger) Named(string) Logger  { return n }

// NewNopLogger returns a Logger that drops everything.  For tests and
// benchmarks where output is noise.
func NewNopLogger() Logger { return nopLogger{} }

// ─────────────────────────────────────────────────────────────────────────────
// Process-wide default
// ─────────────────────────────────────────────────────────────────────────────

var (
	defaultMu     sync.RWMutex
	defaultLogger Logger = nopLogger{}
)

// SetDefault installs the process-wide default Logger.  Call once during
// startup, before goroutines that read Default() exist.  Nil is ignored.
func SetDefault(l Logger) {
	if l == nil {
		return
	}
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
}

// Default returns the process-wide default Logger.  Only for code that
// cannot take an injected Logger; constructor injection is the norm.
func Default() Logger {
	defaultMu.RLock()
	l := defaultLogger
	defaultMu.RUnlock()
	return l
}

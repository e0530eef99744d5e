package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// newTestLogger creates a logger writing to an in-memory buffer for verification.
func newTestLogger(t *testing.T) (Logger, *zaptest.Buffer) {
	t.Helper()
	buf := &zaptest.Buffer{}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderConfig)
	core := zapcore.NewCore(encoder, buf, zapcore.DebugLevel)
	return &zapLogger{z: zap.New(core)}, buf
}

func TestNewLogger_JSONFormat(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_ConsoleFormat(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_DefaultsApplied(t *testing.T) {
	l, err := NewLogger(LogConfig{})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}

func TestZapLogger_Levels(t *testing.T) {
	l, buf := newTestLogger(t)
	l.Debug("debug msg")
	l.Info("info msg")
	l.Warn("warn msg")
	l.Error("error msg")
	out := buf.String()
	assert.Contains(t, out, "debug msg")
	assert.Contains(t, out, `"level":"info"`)
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"level":"error"`)
}

func TestZapLogger_With_AddsFields(t *testing.T) {
	l, buf := newTestLogger(t)
	l.With(String("group", "lockbit3"), Int("victims", 42)).Info("rollup computed")
	out := buf.String()
	assert.Contains(t, out, `"group":"lockbit3"`)
	assert.Contains(t, out, `"victims":42`)
}

func TestZapLogger_Named(t *testing.T) {
	l, buf := newTestLogger(t)
	l.Named("http").Info("listening")
	assert.Contains(t, buf.String(), `"logger":"http"`)
}

func TestFieldConstructors(t *testing.T) {
	assert.Equal(t, Field{Key: "k", Value: "v"}, String("k", "v"))
	assert.Equal(t, Field{Key: "n", Value: 7}, Int("n", 7))
	assert.Equal(t, Field{Key: "d", Value: time.Second}, Duration("d", time.Second))
	assert.Equal(t, Field{Key: "error", Value: "boom"}, Err(errors.New("boom")))
	assert.Equal(t, Field{Key: "error", Value: "<nil>"}, Err(nil))
}

func TestNopLogger_AllMethodsNoOp(t *testing.T) {
	l := NewNopLogger()
	l.Debug("msg")
	l.Info("msg")
	l.Warn("msg")
	l.Error("msg")
	assert.Equal(t, l, l.With(String("k", "v")))
	assert.Equal(t, l, l.Named("x"))
}

func TestDefault_SetAndGet(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	l := NewNopLogger()
	SetDefault(l)
	assert.Equal(t, l, Default())

	// nil is ignored
	SetDefault(nil)
	assert.Equal(t, l, Default())
}

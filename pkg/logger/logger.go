// Package logger wraps a process-wide zap logger behind a small map-based API.
package logger

import (
	"os"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultLevel = "info"

// Fields are structured key/value pairs attached to a log entry.
type Fields map[string]interface{}

var (
	mu   sync.RWMutex
	base = zap.NewNop()
)

// Init builds the JSON logger. The level comes from LOG_LEVEL and falls back to info.
func Init(appEnv string) error {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))))); err != nil {
		_ = level.UnmarshalText([]byte(defaultLevel))
	}

	encoderCfg := zapcore.EncoderConfig{
		MessageKey:    "message",
		TimeKey:       "timestamp",
		LevelKey:      "severity",
		CallerKey:     "caller",
		StacktraceKey: "stacktrace",
		EncodeTime:    zapcore.RFC3339NanoTimeEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
		EncodeLevel: func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(strings.ToUpper(l.String()))
		},
	}

	encoding := "json"
	if appEnv == "development" {
		encoding = "console"
	}

	cfg := zap.Config{
		Level:             level,
		Encoding:          encoding,
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: true,
	}

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	Set(l)
	return nil
}

// Set replaces the underlying logger. Tests use it with zaptest/observer cores.
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	base = l
	mu.Unlock()
}

// L returns the underlying zap logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Sync flushes buffered entries.
func Sync() {
	_ = L().Sync()
}

// WithError wraps err as a field set.
func WithError(err error) Fields {
	if err == nil {
		return Fields{}
	}
	return Fields{"error": err.Error()}
}

func Debug(msg string, fields ...Fields) { L().Debug(msg, toZap(fields)...) }
func Info(msg string, fields ...Fields)  { L().Info(msg, toZap(fields)...) }
func Warn(msg string, fields ...Fields)  { L().Warn(msg, toZap(fields)...) }
func Error(msg string, fields ...Fields) { L().Error(msg, toZap(fields)...) }

// toZap flattens the field maps in key order so output is stable.
func toZap(fields []Fields) []zap.Field {
	merged := Fields{}
	for _, f := range fields {
		for k, v := range f {
			merged[k] = v
		}
	}
	if len(merged) == 0 {
		return nil
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		out = append(out, zap.Any(k, merged[k]))
	}
	return out
}

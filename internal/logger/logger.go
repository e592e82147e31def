package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/samvad-hq/embedefy-bridge/internal/config"
)

// S is the process-wide logger, set by Init.
var S *zap.SugaredLogger

// Logger is the structured logging surface shared by the runtime components.
// Each call logs obj as a single field named key.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

// Init builds the JSON logger described by cfg and installs it as S. Output
// goes to stderr; stdout is reserved for command results.
func Init(cfg *config.Config) (Logger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(os.Stderr),
		parseLevel(cfg.LogLevel),
	)
	return install(core, cfg.AppName, cfg.Env), nil
}

// install wires core into S and returns a Logger writing to it.
func install(core zapcore.Core, app, env string) ZapLogger {
	var fields []zap.Field
	if app != "" {
		fields = append(fields, zap.String("app", app))
	}
	if env != "" {
		fields = append(fields, zap.String("env", env))
	}

	l := zap.New(core,
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(fields...),
	)
	S = l.Sugar()
	return ZapLogger{l: l}
}

func parseLevel(level string) zapcore.Level {
	name := strings.ToLower(strings.TrimSpace(level))
	switch name {
	case "warning":
		return zapcore.WarnLevel
	case "debug", "info", "warn", "error":
		lvl, _ := zapcore.ParseLevel(name)
		return lvl
	default:
		return zapcore.InfoLevel
	}
}

// Close flushes buffered entries.
func Close() error {
	if S == nil {
		return nil
	}
	return S.Sync()
}

// ZapLogger is the zap-backed Logger returned by Init.
type ZapLogger struct {
	l *zap.Logger
}

func (z ZapLogger) InfoObj(msg, key string, obj interface{})  { z.l.Info(msg, zap.Any(key, obj)) }
func (z ZapLogger) DebugObj(msg, key string, obj interface{}) { z.l.Debug(msg, zap.Any(key, obj)) }
func (z ZapLogger) WarnObj(msg, key string, obj interface{})  { z.l.Warn(msg, zap.Any(key, obj)) }
func (z ZapLogger) ErrorObj(msg, key string, obj interface{}) { z.l.Error(msg, zap.Any(key, obj)) }

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) InfoObj(string, string, interface{})  {}
func (NopLogger) DebugObj(string, string, interface{}) {}
func (NopLogger) WarnObj(string, string, interface{})  {}
func (NopLogger) ErrorObj(string, string, interface{}) {}

// Package helpers log through S and are no-ops before Init.

func InfoObj(msg, key string, obj interface{}) {
	if S != nil {
		S.Desugar().Info(msg, zap.Any(key, obj))
	}
}

func DebugObj(msg, key string, obj interface{}) {
	if S != nil {
		S.Desugar().Debug(msg, zap.Any(key, obj))
	}
}

func WarnObj(msg, key string, obj interface{}) {
	if S != nil {
		S.Desugar().Warn(msg, zap.Any(key, obj))
	}
}

func ErrorObj(msg, key string, obj interface{}) {
	if S != nil {
		S.Desugar().Error(msg, zap.Any(key, obj))
	}
}

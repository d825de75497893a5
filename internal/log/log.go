package log

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelError Level = "ERROR"
)

var (
	logger     *zap.SugaredLogger
	loggerOnce sync.Once
	mu         sync.Mutex
	atomicLvl  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// initLogger builds the global logger: console encoding on stderr with
// ISO8601 timestamps.
func initLogger() {
	loggerOnce.Do(func() {
		l, err := build("console")
		if err != nil {
			l = zap.NewNop()
		}
		logger = l.Sugar()
	})
}

func build(format string) (*zap.Logger, error) {
	zapCfg := zap.NewDevelopmentConfig()
	zapCfg.Level = atomicLvl
	switch format {
	case "json":
		zapCfg.Encoding = "json"
	default:
		zapCfg.Encoding = "console"
	}
	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	// Callers go through this package; skip our own frame.
	return zapCfg.Build(zap.AddCallerSkip(1))
}

// Configure rebuilds the logger with the given level and encoding
// ("console" or "json"). Unknown levels keep the current one.
func Configure(level, format string) error {
	initLogger()
	if level != "" {
		var zl zapcore.Level
		if err := zl.UnmarshalText([]byte(level)); err == nil {
			atomicLvl.SetLevel(zl)
		}
	}
	l, err := build(format)
	if err != nil {
		return err
	}
	mu.Lock()
	logger = l.Sugar()
	mu.Unlock()
	return nil
}

func SetLevel(l Level) {
	initLogger()
	switch l {
	case LevelDebug:
		atomicLvl.SetLevel(zapcore.DebugLevel)
	case LevelError:
		atomicLvl.SetLevel(zapcore.ErrorLevel)
	default:
		atomicLvl.SetLevel(zapcore.InfoLevel)
	}
}

func Debug(msg string, kv ...any) {
	current().Debugw(msg, kv...)
}

func Info(msg string, kv ...any) {
	current().Infow(msg, kv...)
}

func Error(msg string, err error, kv ...any) {
	// Prepend error into key-value list.
	extended := append([]any{"err", err}, kv...)
	current().Errorw(msg, extended...)
}

// Sync flushes buffered entries.
func Sync() {
	_ = current().Sync()
}

func current() *zap.SugaredLogger {
	initLogger()
	mu.Lock()
	defer mu.Unlock()
	return logger
}

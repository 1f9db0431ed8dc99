package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu  sync.RWMutex
	log *zap.Logger
)

// Init builds the global logger: JSON in production, colored console
// elsewhere. level ("debug", "info", "warn", "error") overrides the
// environment default when it parses.
func Init(env, level string) {
	var cfg zap.Config

	if env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "json"
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.MessageKey = "message"
		cfg.EncoderConfig.LevelKey = "level"
		cfg.EncoderConfig.CallerKey = "caller"
		cfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.OutputPaths = []string{"stdout"}
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if level != "" {
		if lvl, err := zapcore.ParseLevel(level); err == nil {
			cfg.Level = zap.NewAtomicLevelAt(lvl)
		}
	}

	built, err := cfg.Build(zap.AddCaller(), zap.Fields(zap.String("service", "bridge-be")))
	if err != nil {
		panic(err)
	}

	mu.Lock()
	log = built
	mu.Unlock()
}

// L returns the global logger, building it from APP_ENV and LOG_LEVEL on
// first use.
func L() *zap.Logger {
	mu.RLock()
	l := log
	mu.RUnlock()
	if l != nil {
		return l
	}

	Init(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// Replace swaps the global logger and returns a func restoring the previous one.
func Replace(l *zap.Logger) (restore func()) {
	mu.Lock()
	prev := log
	log = l
	mu.Unlock()

	return func() {
		mu.Lock()
		log = prev
		mu.Unlock()
	}
}

// Sync flushes logs.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	if log != nil {
		_ = log.Sync()
	}
}

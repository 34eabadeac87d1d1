// Package logging provides config-driven categorized logging for dtefiler.
// All categories share one zap core; each category is a named child logger that
// can be switched off from the config. Until Initialize is called every logger
// is a no-op, so library packages and tests stay silent.
package logging

import (
	"fmt"
	"sync"

	"dtefiler/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup, config, wiring
	CategoryRecords Category = "records" // Record store reads and payload assembly
	CategoryPortal  Category = "portal"  // Browser driver operations
	CategorySession Category = "session" // Submission controller transitions
	CategoryConfirm Category = "confirm" // Operator review gates
)

// Logger is a category logger with printf-style methods.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	mu      sync.RWMutex
	root    = zap.NewNop()
	cfg     config.LoggingConfig
	loggers = make(map[Category]*Logger)
)

// Initialize builds the shared zap logger from config. verbose forces debug level.
func Initialize(lc config.LoggingConfig, verbose bool) error {
	var zc zap.Config
	if lc.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.DisableStacktrace = true
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	level := zapcore.InfoLevel
	if lc.Level != "" {
		if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
			return fmt.Errorf("invalid log level %q: %w", lc.Level, err)
		}
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	if lc.File != "" {
		zc.OutputPaths = []string{lc.File}
		zc.ErrorOutputPaths = []string{lc.File}
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	} else {
		zc.OutputPaths = []string{"stderr"}
	}

	l, err := zc.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	root = l
	cfg = lc
	loggers = make(map[Category]*Logger)
	return nil
}

// UseLogger installs an existing zap logger (tests, embedding).
func UseLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	root = l
	cfg = config.LoggingConfig{}
	loggers = make(map[Category]*Logger)
}

// Root returns the shared zap logger.
func Root() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root
}

// Sync flushes buffered log entries.
func Sync() {
	_ = Root().Sync()
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if the category is disabled.
func Get(category Category) *Logger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	base := root
	if !cfg.IsCategoryEnabled(string(category)) {
		base = zap.NewNop()
	}
	l := &Logger{category: category, sugar: base.Named(string(category)).Sugar()}
	loggers[category] = l
	return l
}

// With returns a child logger carrying structured key-value fields.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{category: l.category, sugar: l.sugar.With(keysAndValues...)}
}

func (l *Logger) Debug(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }

func (l *Logger) Info(format string, args ...interface{}) { l.sugar.Infof(format, args...) }

func (l *Logger) Warn(format string, args ...interface{}) { l.sugar.Warnf(format, args...) }

func (l *Logger) Error(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// =============================================================================
// CONVENIENCE FUNCTIONS - Quick logging without getting a logger first
// =============================================================================

func Boot(format string, args ...interface{}) { Get(CategoryBoot).Info(format, args...) }

func BootWarn(format string, args ...interface{}) { Get(CategoryBoot).Warn(format, args...) }

func Records(format string, args ...interface{}) { Get(CategoryRecords).Info(format, args...) }

func RecordsDebug(format string, args ...interface{}) { Get(CategoryRecords).Debug(format, args...) }

func Portal(format string, args ...interface{}) { Get(CategoryPortal).Info(format, args...) }

func PortalDebug(format string, args ...interface{}) { Get(CategoryPortal).Debug(format, args...) }

func Session(format string, args ...interface{}) { Get(CategorySession).Info(format, args...) }

func SessionDebug(format string, args ...interface{}) { Get(CategorySession).Debug(format, args...) }

func Confirm(format string, args ...interface{}) { Get(CategoryConfirm).Info(format, args...) }


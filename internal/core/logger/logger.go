// Package logger provides logging utilities for the application.
package logger

import (
	"log"
	"log/slog"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// logger is the process-wide root logger. It is a no-op until InitLogger runs,
// so packages and tests can log without initialising anything.
var logger = zap.NewNop()

// Environment represents the application environment type.
type Environment string

const (
	// EnvironmentDevelopment represents the development environment.
	EnvironmentDevelopment Environment = "development"
	// EnvironmentProduction represents the production environment.
	EnvironmentProduction Environment = "production"
)

// LogLevel represents the logging level type.
type LogLevel string

const (
	// LogLevelDebug represents the debug logging level.
	LogLevelDebug LogLevel = "debug"
	// Info represents the info logging level.
	Info LogLevel = "info"
	// Warn represents the warn logging level.
	Warn LogLevel = "warn"
	// Error represents the error logging level.
	Error LogLevel = "error"
)

// InitLogger initializes the root logger for the given environment and global
// level. levels maps logger names (e.g. "core.schema") to their own level.
func InitLogger(environment Environment, logLevel LogLevel, levels map[string]string) {
	var cfg zap.Config

	if environment == EnvironmentDevelopment {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	global := getZapLevel(string(logLevel))
	// The root core lets everything through; Named loggers filter per name.
	cfg.Level.SetLevel(zapcore.DebugLevel)

	built, err := cfg.Build()
	if err != nil {
		log.Printf("Failed to initialize zap logger: %v", err)
		os.Exit(1)
	}
	logger = built
	InitLevelConfig(levels, global)

	// Redirect standard log to zap
	zap.RedirectStdLog(Named("stdlog"))

	// Redirect slog to zap
	slog.SetDefault(slog.New(zapslog.NewHandler(Named("slog").Core())))
}

// L returns the root logger filtered at the global level.
func L() *zap.Logger {
	return withLevel(logger, GetLevelForName(""))
}

// Named returns a child logger whose minimum level is resolved from the
// hierarchical level configuration for name.
func Named(name string) *zap.Logger {
	return withLevel(logger.Named(name), GetLevelForName(name))
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = logger.Sync()
}

func withLevel(l *zap.Logger, level zapcore.Level) *zap.Logger {
	return l.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return &levelFilterCore{Core: core, level: level}
	}))
}

func getZapLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

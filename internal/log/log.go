// Package log provides the process-wide logger: a logrus logger behind a
// small interface, with a pattern formatter and console/file outputs.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"firestige.xyz/pktchain/internal/config"
)

type Logger interface {
	Print(args ...interface{})
	Printf(format string, args ...interface{})

	Trace(args ...interface{})
	Tracef(format string, args ...interface{})

	Debug(args ...interface{})
	Debugf(format string, args ...interface{})

	Info(args ...interface{})
	Infof(format string, args ...interface{})

	Warn(args ...interface{})
	Warnf(format string, args ...interface{})

	Error(args ...interface{})
	Errorf(format string, args ...interface{})

	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})

	Panic(args ...interface{})
	Panicf(format string, args ...interface{})

	WithField(field string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger

	IsTraceEnabled() bool
	IsDebugEnabled() bool
	IsInfoEnabled() bool
}

const (
	defaultPattern = "%time [%level] %field %msg%n"
	defaultTime    = "2006-01-02 15:04:05.000"
)

var (
	mu     sync.RWMutex
	logger Logger
	closer io.Closer
)

// GetLogger returns the global logger. Before Init it is an info-level
// console logger on stderr.
func GetLogger() Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		logger = newLogrusAdapter(os.Stderr, &formatter{pattern: defaultPattern, time: defaultTime}, logrus.InfoLevel)
	}
	return logger
}

// Init replaces the global logger according to cfg. Outputs opened by a
// previous Init are closed.
func Init(cfg config.LogConfig) error {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	out := NewMultiWriter()
	if cfg.Outputs.Console.Enabled {
		if cfg.Outputs.Console.Stream == "stdout" {
			out.Add(os.Stdout)
		} else {
			out.Add(os.Stderr)
		}
	}
	if cfg.Outputs.File.Enabled {
		if err := out.AddFileAppender(cfg.Outputs.File); err != nil {
			return fmt.Errorf("failed to create file output: %w", err)
		}
	}

	pattern, layout := cfg.Pattern, cfg.Time
	if pattern == "" {
		pattern = defaultPattern
	}
	if layout == "" {
		layout = defaultTime
	}

	mu.Lock()
	defer mu.Unlock()
	if closer != nil {
		_ = closer.Close()
	}
	logger = newLogrusAdapter(out, &formatter{pattern: pattern, time: layout}, level)
	closer = out
	return nil
}

// Close flushes and closes file outputs of the global logger.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	return err
}

// parseLevel converts string level to logrus.Level.
func parseLevel(levelStr string) (logrus.Level, error) {
	switch strings.ToLower(levelStr) {
	case "trace":
		return logrus.TraceLevel, nil
	case "debug":
		return logrus.DebugLevel, nil
	case "info":
		return logrus.InfoLevel, nil
	case "warn", "warning":
		return logrus.WarnLevel, nil
	case "error":
		return logrus.ErrorLevel, nil
	default:
		return logrus.InfoLevel, fmt.Errorf("unknown level: %s", levelStr)
	}
}

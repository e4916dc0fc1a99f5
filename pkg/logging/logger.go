package logging

import (
	"bytes"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Logger is a wrapper around the log.Logger from the charmbracelet/log package.
type Logger struct {
	*log.Logger
	Buffer  *bytes.Buffer
	FatalFn func(int)
}

var (
	logger *Logger
	once   sync.Once
)

// CreateLogger sets up the shared logger. Verbosity comes from the LOG_LEVEL
// environment variable; DEBUG=1 forces debug level with caller reporting.
func CreateLogger() *Logger {
	once.Do(func() {
		baseLogger := log.New(os.Stderr)
		baseLogger.SetLevel(ParseLevel(os.Getenv("LOG_LEVEL")))

		if os.Getenv("DEBUG") == "1" {
			baseLogger = log.NewWithOptions(os.Stderr, log.Options{
				ReportCaller:    true,
				ReportTimestamp: true,
				Prefix:          "file-server",
			})
			baseLogger.SetLevel(log.DebugLevel)
		}

		logger = &Logger{Logger: baseLogger, FatalFn: os.Exit}
	})

	return logger
}

// ParseLevel maps a LOG_LEVEL value to a charmbracelet log level. Unknown or
// empty values mean info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// GetLogger returns the shared Logger instance, creating it if needed.
func GetLogger() *Logger {
	if logger == nil {
		CreateLogger()
	}
	return logger
}

// NewTestLogger returns a logger that writes to an in-memory buffer so tests
// can assert on the captured output. Fatal calls do not exit the process.
func NewTestLogger() *Logger {
	var buf bytes.Buffer
	baseLogger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	return &Logger{Logger: baseLogger, Buffer: &buf, FatalFn: func(int) {}}
}

// GetOutput returns everything captured by a test logger.
func (l *Logger) GetOutput() string {
	if l.Buffer == nil {
		return ""
	}
	return l.Buffer.String()
}

// With returns a logger with the given key-value pairs attached, sharing the
// parent's buffer and exit behavior.
func (l *Logger) With(keyvals ...interface{}) *Logger {
	return &Logger{Logger: l.Logger.With(keyvals...), Buffer: l.Buffer, FatalFn: l.FatalFn}
}

// Fatal logs the message at error level and exits through FatalFn.
func (l *Logger) Fatal(msg interface{}, keyvals ...interface{}) {
	l.Error(msg, keyvals...)
	if l.FatalFn != nil {
		l.FatalFn(1)
	}
}

// Fatalf logs the formatted message at error level and exits through FatalFn.
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.Errorf(format, args...)
	if l.FatalFn != nil {
		l.FatalFn(1)
	}
}

// BaseLogger returns the underlying *log.Logger.
func (l *Logger) BaseLogger() *log.Logger {
	return l.Logger
}

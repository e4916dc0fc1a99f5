package logging_test

import (
	"testing"

	"github.com/charmbracelet/log"
	"github.com/shibing624/file-server/pkg/logging"
	"github.com/stretchr/testify/assert"
)

func TestCreateLogger(t *testing.T) {
	logging.CreateLogger()
	assert.NotNil(t, logging.GetLogger())

	// Subsequent calls return the same instance
	assert.Equal(t, logging.GetLogger(), logging.CreateLogger())
}

func TestNewTestLogger(t *testing.T) {
	testLogger := logging.NewTestLogger()
	assert.NotNil(t, testLogger)
	assert.NotNil(t, testLogger.Logger)
	assert.NotNil(t, testLogger.Buffer)
}

func TestGetOutput(t *testing.T) {
	testLogger := logging.NewTestLogger()
	assert.Equal(t, "", testLogger.GetOutput())

	testLogger.Info("test message")
	output := testLogger.GetOutput()
	assert.Contains(t, output, "test message")

	// GetOutput with nil buffer
	loggerWithNilBuffer := &logging.Logger{
		Logger: testLogger.Logger,
		Buffer: nil,
	}
	assert.Equal(t, "", loggerWithNilBuffer.GetOutput())
}

func TestLogLevels(t *testing.T) {
	testLogger := logging.NewTestLogger()

	testLogger.Debug("debug message", "key", "value")
	output := testLogger.GetOutput()
	assert.Contains(t, output, "debug message")
	assert.Contains(t, output, "key")
	assert.Contains(t, output, "value")

	testLogger.Buffer.Reset()
	testLogger.Info("info message")
	assert.Contains(t, testLogger.GetOutput(), "info message")

	testLogger.Buffer.Reset()
	testLogger.Warn("warning message")
	assert.Contains(t, testLogger.GetOutput(), "warning message")

	testLogger.Buffer.Reset()
	testLogger.Error("error message")
	assert.Contains(t, testLogger.GetOutput(), "error message")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  log.Level
	}{
		{"debug", log.DebugLevel},
		{"DEBUG", log.DebugLevel},
		{"info", log.InfoLevel},
		{"INFO", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"warning", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"", log.InfoLevel},
		{"bogus", log.InfoLevel},
		{"  debug  ", log.DebugLevel},
	}
	for _, tt := range tests {
		if got := logging.ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestWith(t *testing.T) {
	testLogger := logging.NewTestLogger()
	child := testLogger.With("key", "value")
	assert.NotNil(t, child)
	assert.Equal(t, testLogger.Buffer, child.Buffer)

	child.Info("hello")
	output := child.GetOutput()
	assert.Contains(t, output, "hello")
	assert.Contains(t, output, "key")
	assert.Contains(t, output, "value")
}

func TestFatalDoesNotExitTestLogger(t *testing.T) {
	testLogger := logging.NewTestLogger()

	// FatalFn is a no-op on test loggers, so this must return.
	testLogger.Fatal("fatal message", "key", "value")
	output := testLogger.GetOutput()
	assert.Contains(t, output, "fatal message")

	testLogger.Buffer.Reset()
	testLogger.Fatalf("fatal %s", "formatted")
	assert.Contains(t, testLogger.GetOutput(), "fatal formatted")
}

func TestFatalWithNilFatalFn(t *testing.T) {
	testLogger := logging.NewTestLogger()
	testLogger.FatalFn = nil

	// Must not panic when FatalFn is nil.
	testLogger.Fatal("fatal message")
	assert.Contains(t, testLogger.GetOutput(), "fatal message")
}

func TestBaseLogger(t *testing.T) {
	testLogger := logging.NewTestLogger()
	assert.NotNil(t, testLogger.BaseLogger())
}

package logging

import (
	"strings"
	"testing"
)

func TestNewTestLogger(t *testing.T) {
	logger, buf := NewTestLogger()

	logger.Info("hello", "key", "value")

	out := buf.String()
	if !strings.Contains(out, "hello") {
		t.Errorf("expected log output to contain message, got %q", out)
	}
	if !strings.Contains(out, "key") || !strings.Contains(out, "value") {
		t.Errorf("expected log output to contain key-value pair, got %q", out)
	}
}

func TestDebugGating(t *testing.T) {
	logger, buf := NewTestLogger()

	logger.Debug("debug message")
	if !strings.Contains(buf.String(), "debug message") {
		t.Error("test logger should emit debug messages")
	}

	buf.Reset()
	logger.debug = false
	logger.Debug("suppressed")
	if strings.Contains(buf.String(), "suppressed") {
		t.Error("debug messages should be suppressed when debug is disabled")
	}
}

func TestGetDefaultIsSingleton(t *testing.T) {
	a := GetDefault()
	b := GetDefault()
	if a != b {
		t.Error("GetDefault should return the same instance")
	}
}

package debuglog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LevelOff, "OFF"},
	}

	for _, test := range tests {
		if got := test.level.String(); got != test.expected {
			t.Errorf("LogLevel.String() = %q, want %q", got, test.expected)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"DEBUG", LevelDebug},
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"WARN", LevelWarn},
		{"WARNING", LevelWarn},
		{"ERROR", LevelError},
		{"off", LevelOff},
		{"INVALID", LevelInfo}, // Default to INFO
		{"", LevelInfo},        // Default to INFO
	}

	for _, test := range tests {
		if got := ParseLogLevel(test.input); got != test.expected {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", test.input, got, test.expected)
		}
	}
}

func TestSetupWithLevel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	if err := Setup(LevelInfo, logPath); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	defer Close()

	if GetLevel() != LevelInfo {
		t.Errorf("GetLevel() = %v, want %v", GetLevel(), LevelInfo)
	}

	Debugf("debug message") // Should not appear
	Infof("info message")   // Should appear
	Errorf("error message") // Should appear

	if err := Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}

	logged := string(content)
	if strings.Contains(logged, "debug message") {
		t.Error("debug message logged at INFO level")
	}
	if !strings.Contains(logged, "info message") {
		t.Error("info message missing from log")
	}
	if !strings.Contains(logged, "[ERROR] error message") {
		t.Error("error message missing from log")
	}
}

func TestSetupOff(t *testing.T) {
	if err := Setup(LevelOff); err != nil {
		t.Fatalf("Setup(LevelOff) failed: %v", err)
	}

	// Must not panic with no logger configured
	Infof("dropped message")

	if GetLevel() != LevelOff {
		t.Errorf("GetLevel() = %v, want LevelOff", GetLevel())
	}
}

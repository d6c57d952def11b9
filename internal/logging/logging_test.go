package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLoggerToFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "test.log")

	logger, err := NewLogger(Config{
		Level:  "debug",
		Format: "json",
		Output: logPath,
	})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	logger.WithJobID("job-1").Info("hello")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	var entry map[string]interface{}
	line := strings.TrimSpace(string(data))
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not valid JSON: %v", err)
	}

	if entry["job_id"] != "job-1" {
		t.Errorf("expected job_id job-1, got %v", entry["job_id"])
	}
	if entry["message"] != "hello" {
		t.Errorf("expected message hello, got %v", entry["message"])
	}
}

func TestNewLoggerInvalidLevelDefaultsToInfo(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "test.log")

	logger, err := NewLogger(Config{
		Level:  "not-a-level",
		Format: "json",
		Output: logPath,
	})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	// Debug should be suppressed at the default info level.
	logger.Debug("invisible")
	logger.Info("visible")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	out := string(data)
	if strings.Contains(out, "invisible") {
		t.Error("debug message should have been suppressed")
	}
	if !strings.Contains(out, "visible") {
		t.Error("info message should have been written")
	}
}

func TestWithContent(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "test.log")

	logger, err := NewLogger(Config{Level: "info", Format: "json", Output: logPath})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	logger.WithContent("movie", 42).Info("processing")

	data, _ := os.ReadFile(logPath)
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry); err != nil {
		t.Fatalf("log line is not valid JSON: %v", err)
	}

	if entry["content_kind"] != "movie" {
		t.Errorf("expected content_kind movie, got %v", entry["content_kind"])
	}
	if entry["content_id"] != float64(42) {
		t.Errorf("expected content_id 42, got %v", entry["content_id"])
	}
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	// Must not panic.
	logger.Info("discarded")
	logger.ErrorWithErr("discarded", os.ErrNotExist)
}

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestNewFileLogger_CreatesDirectory(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "dir", "run.log")

	logger, err := NewFileLogger(FileLoggerConfig{Path: logPath, Format: FormatText, Level: InfoLevel})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(logPath); err != nil {
		t.Errorf("log file was not created: %v", err)
	}
}

func TestFileLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, FormatText, WarnLevel)
	ctx := context.Background()

	logger.Debug(ctx, "debug message", nil)
	logger.Info(ctx, "info message", nil)
	logger.Warn(ctx, "warn message", nil)
	logger.Error(ctx, "error message", errors.New("boom"), nil)

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("entries below WARN should be filtered:\n%s", out)
	}
	if !strings.Contains(out, "[WARN] warn message") {
		t.Errorf("missing warn entry:\n%s", out)
	}
	if !strings.Contains(out, `[ERROR] error message error="boom"`) {
		t.Errorf("missing error entry:\n%s", out)
	}
}

func TestFileLogger_TextFieldsSorted(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, FormatText, DebugLevel)

	logger.Info(context.Background(), "copied", Fields{"source": "a.txt", "bytes": 5, "dest": "out/a.txt"})

	if !strings.HasSuffix(buf.String(), "copied bytes=5 dest=out/a.txt source=a.txt\n") {
		t.Errorf("unexpected text line: %q", buf.String())
	}
}

func TestFileLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, FormatJSON, DebugLevel)

	logger.Error(context.Background(), "copy failed", errors.New("disk full"), Fields{"file": "a.txt"})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON line %q: %v", buf.String(), err)
	}
	want := map[string]string{
		"level":   "ERROR",
		"message": "copy failed",
		"error":   "disk full",
		"file":    "a.txt",
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("entry[%s] = %v, want %s", k, entry[k], v)
		}
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("entry missing timestamp")
	}
}

func TestFileLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewWriterLogger(&buf, FormatText, DebugLevel)
	child := base.WithFields(Fields{"run_id": "abc"})

	child.Info(context.Background(), "child", Fields{"n": 1})
	base.Info(context.Background(), "base", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "n=1 run_id=abc") {
		t.Errorf("child line missing fields: %q", lines[0])
	}
	if strings.Contains(lines[1], "run_id") {
		t.Errorf("base logger should not inherit child fields: %q", lines[1])
	}
}

func TestFileLogger_Rotation(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "rotate.log")
	logger, err := NewFileLogger(FileLoggerConfig{
		Path:       logPath,
		Format:     FormatText,
		Level:      DebugLevel,
		MaxSize:    100,
		MaxBackups: 2,
	})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	defer logger.Close()

	for i := 0; i < 20; i++ {
		logger.Info(context.Background(), strings.Repeat("x", 50), nil)
	}

	if _, err := os.Stat(logPath + ".1"); err != nil {
		t.Errorf("expected first backup: %v", err)
	}
	if _, err := os.Stat(logPath + ".2"); err != nil {
		t.Errorf("expected second backup: %v", err)
	}
	if _, err := os.Stat(logPath + ".3"); !os.IsNotExist(err) {
		t.Error("backups beyond MaxBackups should be removed")
	}
	if lines := readLines(t, logPath); len(lines) == 0 {
		t.Error("current log should not be empty")
	}
}

func TestFileLogger_CloseTwice(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "close.log")
	logger, err := NewFileLogger(FileLoggerConfig{Path: logPath})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	// Writes after close are dropped
	logger.Info(context.Background(), "late", nil)
}

func TestNullLogger(t *testing.T) {
	logger := NewNullLogger()
	ctx := context.Background()

	logger.Debug(ctx, "x", nil)
	logger.Info(ctx, "x", nil)
	logger.Warn(ctx, "x", nil)
	logger.Error(ctx, "x", errors.New("x"), nil)

	if logger.WithFields(Fields{"a": 1}) != logger {
		t.Error("WithFields() should return the same null logger")
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"debug", DebugLevel},
		{"DEBUG", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"WARNING", WarnLevel},
		{"error", ErrorLevel},
		{"bogus", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}

	if ValidLevel("bogus") {
		t.Error("ValidLevel(bogus) = true")
	}
	if !ValidLevel("Warn") {
		t.Error("ValidLevel(Warn) = false")
	}
}

func TestLevelString(t *testing.T) {
	if Level(42).String() != "UNKNOWN" {
		t.Errorf("Level(42).String() = %s", Level(42).String())
	}
	if ErrorLevel.String() != "ERROR" {
		t.Errorf("ErrorLevel.String() = %s", ErrorLevel.String())
	}
}

func TestFileLogger_ConcurrentWrites(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "concurrent.log")
	logger, err := NewFileLogger(FileLoggerConfig{Path: logPath, Format: FormatJSON, Level: DebugLevel})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			l := logger.WithFields(Fields{"worker": n})
			for j := 0; j < 20; j++ {
				l.Info(context.Background(), "tick", Fields{"j": j})
			}
		}(i)
	}
	wg.Wait()
	logger.Close()

	lines := readLines(t, logPath)
	if len(lines) != 200 {
		t.Fatalf("got %d lines, want 200", len(lines))
	}
	for _, line := range lines {
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("interleaved line %q: %v", line, err)
		}
	}
}

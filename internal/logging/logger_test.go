package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shelve/internal/logging"
)

func TestNewConsoleWritesToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "shelve.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger = logging.NewComponentLogger(logger, "transaction")
	logger.Info("plan committed", logging.String("plan_id", "p1"), logging.Int("applied", 3))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if !strings.Contains(line, "INFO transaction: plan committed") {
		t.Fatalf("unexpected console line: %q", line)
	}
	if !strings.Contains(line, "plan_id=p1") || !strings.Contains(line, "applied=3") {
		t.Fatalf("expected attributes in console line: %q", line)
	}
}

func TestNewConsoleFiltersBelowLevel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "shelve.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "warn",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("should be dropped")
	logger.Warn("should be kept")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), "should be dropped") {
		t.Fatalf("info line leaked past warn level: %q", content)
	}
	if !strings.Contains(string(content), "should be kept") {
		t.Fatalf("warn line missing: %q", content)
	}
}

func TestNewJSONFormat(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "shelve.json")

	logger, err := logging.New(logging.Options{
		Format:      "json",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("journal appended", logging.String("status", "DONE"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	for _, want := range []string{`"msg":"journal appended"`, `"status":"DONE"`, `"level":"info"`, `"ts":"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %s in json line %q", want, line)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsPlanFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "ctx.log")

	base, err := logging.New(logging.Options{OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := logging.WithStage(logging.WithPlanID(context.Background(), "plan-42"), "apply")
	logging.WithContext(ctx, base).Info("executing")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "plan_id=plan-42") || !strings.Contains(string(content), "stage=apply") {
		t.Fatalf("context fields missing from line %q", content)
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("must not panic", logging.Error(nil))
}

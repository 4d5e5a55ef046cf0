package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pbrlib/internal/config"
	"pbrlib/internal/logging"
	"pbrlib/internal/services"
)

func TestConsoleLoggerFormatsComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "ingest").Info("file loaded", logging.Int("rows", 12), logging.String("file", "show 2024.csv"))

	line := buf.String()
	if !strings.Contains(line, " INFO  ingest: file loaded") {
		t.Fatalf("expected component prefix, got %q", line)
	}
	if !strings.Contains(line, "rows=12") {
		t.Fatalf("expected rows field, got %q", line)
	}
	if !strings.Contains(line, `file="show 2024.csv"`) {
		t.Fatalf("expected quoted file field, got %q", line)
	}
	if strings.Contains(line, ".go:") {
		t.Fatalf("expected no caller information at info level, got %q", line)
	}
}

func TestJSONLoggerFiltersLevels(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "warn", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one record, got %d: %q", len(lines), buf.String())
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record["msg"] != "shown" || record["level"] != "warn" {
		t.Fatalf("unexpected record: %v", record)
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", record)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Logging.Level = "error"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Error("persisted")

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"persisted"`) {
		t.Fatalf("expected JSON record in log file, got %q", data)
	}
}

func TestWithContextPrefixesShowAndHidesRunID(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithRunID(context.Background(), "abc")
	ctx = services.WithStage(ctx, "enrich")
	ctx = services.WithShow(ctx, "2024-03-01")

	logging.WithContext(ctx, logging.NewComponentLogger(logger, "pipeline")).Info("hello")

	line := buf.String()
	if !strings.Contains(line, "pipeline[2024-03-01]: hello") {
		t.Fatalf("expected component and show prefix in %q", line)
	}
	if !strings.Contains(line, "stage=enrich") {
		t.Fatalf("expected stage field in %q", line)
	}
	if strings.Contains(line, "run_id") {
		t.Fatalf("expected run id kept off the console, got %q", line)
	}
}

func TestJSONLoggerKeepsRunID(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithRunID(context.Background(), "abc")

	logging.WithContext(ctx, logger).Info("hello", logging.Duration("elapsed", 1500*time.Millisecond))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record[logging.FieldRunID] != "abc" {
		t.Fatalf("expected run_id in JSON record, got %v", record)
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "row skipped", "ingest_row_skipped",
		logging.String(logging.FieldImpact, "row dropped"))

	line := buf.String()
	for _, want := range []string{"event_type=ingest_row_skipped", "error_hint=", `impact="row dropped"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
	if strings.Count(line, "impact=") != 1 {
		t.Fatalf("expected caller impact to win, got %q", line)
	}
}

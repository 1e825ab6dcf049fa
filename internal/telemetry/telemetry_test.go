package telemetry

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"DEBUG": slog.LevelDebug,
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"ERROR": slog.LevelError,
		"":      slog.LevelInfo,
		"bogus": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSetupLogger_TextToWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLogger(LoggerOptions{Level: "WARN", Format: "text", Output: &buf})

	logger.Info("hidden")
	WithRunID(logger, "abc").Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info should be filtered at WARN level")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "run_id=abc") {
		t.Errorf("unexpected log output %q", out)
	}
}

func TestFromContext(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := WithLogger(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Error("expected logger from context")
	}
	if FromContext(context.Background()) == nil {
		t.Error("expected default logger")
	}
}

func TestMetrics_Observe(t *testing.T) {
	m := NewMetrics()
	m.ObserveInvocation("bowtie2", "primary", "SUCCEEDED", 2*time.Second)
	m.ObserveInvocation("bowtie2", "primary", "SUCCEEDED", time.Second)
	m.ObserveInvocation("zcat", "decompress", "FAILED", time.Second)
	m.ObserveRun("FAILED", 3, time.Minute)

	if got := testutil.ToFloat64(m.invocations.WithLabelValues("bowtie2", "primary", "SUCCEEDED")); got != 2 {
		t.Errorf("expected 2 bowtie2 invocations, got %v", got)
	}
	if got := testutil.ToFloat64(m.runs.WithLabelValues("FAILED")); got != 1 {
		t.Errorf("expected 1 failed run, got %v", got)
	}
	if got := testutil.ToFloat64(m.readPairs); got != 3 {
		t.Errorf("expected 3 read pairs, got %v", got)
	}
}

func TestMetrics_ExportTextfile(t *testing.T) {
	m := NewMetrics()
	m.ObserveRun("SUCCEEDED", 1, time.Second)

	path := filepath.Join(t.TempDir(), "pairalign.prom")
	if err := m.Export(context.Background(), ExportOptions{Textfile: path}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `pairalign_runs_total{status="SUCCEEDED"} 1`) {
		t.Errorf("textfile missing run counter:\n%s", data)
	}
}

func TestMetrics_ExportPushgateway(t *testing.T) {
	var gotPath, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	m := NewMetrics()
	m.ObserveRun("SUCCEEDED", 1, time.Second)

	err := m.Export(context.Background(), ExportOptions{
		Pushgateway: server.URL,
		Grouping:    map[string]string{"sample": "S1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodPut {
		t.Errorf("expected PUT, got %s", gotMethod)
	}
	if gotPath != "/metrics/job/pairalign/sample/S1" {
		t.Errorf("unexpected push path %s", gotPath)
	}
}

func TestMetrics_ExportNothing(t *testing.T) {
	if err := NewMetrics().Export(context.Background(), ExportOptions{}); err != nil {
		t.Errorf("empty options should be a no-op, got %v", err)
	}
}

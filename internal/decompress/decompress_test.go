package decompress

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"github.com/shaiso/pairalign/internal/domain"
	"github.com/shaiso/pairalign/internal/process"
)

func TestCommand(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"zcat"}},
		{"zcat", []string{"zcat"}},
		{" pigz -dc ", []string{"pigz", "-dc"}},
		{"builtin", []string{BuiltinTool}},
	}
	for _, tt := range tests {
		if got := Command(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("Command(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if !IsBuiltin(Command("builtin")) || IsBuiltin(Command("zcat")) {
		t.Error("IsBuiltin mismatch")
	}
}

func TestPlan(t *testing.T) {
	pairs := domain.NewPairs(
		[]string{"a_R1_.fastq.gz", "b_R1_.fastq.gz"},
		[]string{"a_R2_.fastq.gz", "b_R2_.fastq.gz"},
	)

	invs, err := Plan(uuid.New(), pairs, domain.FormatFastqGz, []string{"pigz", "-dc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(invs) != 4 {
		t.Fatalf("expected 4 invocations, got %d", len(invs))
	}

	want := []string{
		"pigz -dc a_R1_.fastq.gz > a_R1_.fastq",
		"pigz -dc a_R2_.fastq.gz > a_R2_.fastq",
		"pigz -dc b_R1_.fastq.gz > b_R1_.fastq",
		"pigz -dc b_R2_.fastq.gz > b_R2_.fastq",
	}
	for i, inv := range invs {
		if got := inv.CommandLine(); got != want[i] {
			t.Errorf("invocation %d: expected %q, got %q", i, want[i], got)
		}
		if inv.Append {
			t.Errorf("decompression must overwrite, invocation %d appends", i)
		}
	}
}

func TestPlan_Uncompressed(t *testing.T) {
	pairs := domain.NewPairs([]string{"a_R1_.fastq"}, []string{"a_R2_.fastq"})
	invs, err := Plan(uuid.New(), pairs, domain.FormatFastq, nil)
	if err != nil || invs != nil {
		t.Errorf("expected no invocations, got %v (%v)", invs, err)
	}
}

func TestPlan_RejectsUncompressedName(t *testing.T) {
	pairs := domain.NewPairs(
		[]string{"a_R1_.fastq.gz", "b_R1_.fastq"},
		[]string{"a_R2_.fastq.gz", "b_R2_.fastq.gz"},
	)

	invs, err := Plan(uuid.New(), pairs, domain.FormatFastqGz, nil)
	if !errors.Is(err, domain.ErrUnrecognizedExtension) {
		t.Fatalf("expected ErrUnrecognizedExtension, got %v", err)
	}
	if invs != nil {
		t.Errorf("expected no invocations, got %v", invs)
	}

	var pe *domain.PipelineError
	if !errors.As(err, &pe) || pe.Subject != "b_R1_.fastq" {
		t.Errorf("error should name the file, got %v", err)
	}
}

func writeGzip(t *testing.T, path string, data []byte) {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestGzipRunner(t *testing.T) {
	dir := t.TempDir()
	content := []byte("@read1\nACGT\n+\nIIII\n")
	writeGzip(t, filepath.Join(dir, "a_R1_.fastq.gz"), content)

	// Старое содержимое перезаписывается
	if err := os.WriteFile(filepath.Join(dir, "a_R1_.fastq"), []byte("stale data that is longer"), 0o644); err != nil {
		t.Fatal(err)
	}

	pairs := domain.NewPairs([]string{"a_R1_.fastq.gz"}, []string{"a_R2_.fastq.gz"})
	planned, err := Plan(uuid.New(), pairs, domain.FormatFastqGz, Command(Builtin))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	invs := planned[:1]

	if err := process.RunSequence(context.Background(), NewGzipRunner(dir), invs, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "a_R1_.fastq"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("unexpected content %q", got)
	}
}

func TestGzipRunner_NotGzip(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.fastq.gz"), []byte("plain text"), 0o644); err != nil {
		t.Fatal(err)
	}

	inv := &domain.Invocation{Tool: BuiltinTool, Args: []string{"bad.fastq.gz"}, Output: "bad.fastq"}
	err := NewGzipRunner(dir).Run(context.Background(), inv)
	if !errors.Is(err, domain.ErrExternalProcessFailure) {
		t.Errorf("expected ErrExternalProcessFailure, got %v", err)
	}
}

func TestGzipRunner_MissingSource(t *testing.T) {
	inv := &domain.Invocation{Tool: BuiltinTool, Args: []string{"missing.fastq.gz"}, Output: "missing.fastq"}
	err := NewGzipRunner(t.TempDir()).Run(context.Background(), inv)
	if !errors.Is(err, domain.ErrExternalProcessFailure) {
		t.Errorf("expected ErrExternalProcessFailure, got %v", err)
	}
}

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/shaiso/pairalign/internal/domain"
	"github.com/shaiso/pairalign/internal/process"
	"github.com/shaiso/pairalign/internal/reference"
)

// --- Fakes ---

// fakeRunner записывает вызовы и имитирует вывод: одна строка на вызов
// в inv.Output с учётом режима дозаписи.
type fakeRunner struct {
	mu     sync.Mutex
	dir    string
	calls  []domain.Invocation
	failOn func(inv *domain.Invocation) bool
}

func (f *fakeRunner) factory(dir string) process.Runner {
	f.mu.Lock()
	f.dir = dir
	f.mu.Unlock()
	return f
}

func (f *fakeRunner) Run(_ context.Context, inv *domain.Invocation) error {
	f.mu.Lock()
	f.calls = append(f.calls, *inv)
	dir := f.dir
	f.mu.Unlock()

	if f.failOn != nil && f.failOn(inv) {
		return domain.NewError(domain.ErrExternalProcessFailure, inv.CommandLine(), "exit status 1", nil)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if inv.Append {
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	out, err := os.OpenFile(process.ResolvePath(dir, inv.Output), flags, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = fmt.Fprintf(out, "%s lane %d\n", inv.Pass, inv.Lane)
	return err
}

func (f *fakeRunner) Calls() []domain.Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Invocation(nil), f.calls...)
}

// fakeJournal записывает статусы run и вызовов.
type fakeJournal struct {
	mu          sync.Mutex
	runStatuses []domain.RunStatus
	invocations int
	err         error
}

func (j *fakeJournal) RecordRun(_ context.Context, run *domain.Run) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.runStatuses = append(j.runStatuses, run.Status)
	return j.err
}

func (j *fakeJournal) RecordInvocation(context.Context, *domain.Invocation) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.invocations++
	return j.err
}

type fakePublisher struct {
	events []domain.RunStatus
}

func (p *fakePublisher) PublishRunEvent(_ context.Context, run *domain.Run) error {
	p.events = append(p.events, run.Status)
	return nil
}

// --- Helpers ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// sampleDir создаёт директорию с lanes парами файлов образца.
func sampleDir(t *testing.T, lanes int, ext string) string {
	t.Helper()
	dir := t.TempDir()
	for i := 1; i <= lanes; i++ {
		for _, mate := range []string{"R1", "R2"} {
			name := fmt.Sprintf("PS_CTCF_ATCACG_L%03d_%s_001.%s", i, mate, ext)
			if err := os.WriteFile(filepath.Join(dir, name), []byte("@read\n"), 0o644); err != nil {
				t.Fatal(err)
			}
		}
	}
	return dir
}

func newTestOrchestrator(runner *fakeRunner, cfg Config) *Orchestrator {
	cfg.AlignRunner = runner.factory
	if cfg.DecompressRunner == nil {
		cfg.DecompressRunner = runner.factory
	}
	cfg.Logger = discardLogger()
	return New(cfg)
}

func baseRequest(dir string) Request {
	return Request{
		InputType:    "fastq",
		WorkDir:      dir,
		Barcode:      "ATCACG",
		PrimaryBuild: "hg19",
		SpikeBuild:   "dm6",
		AlignSpike:   true,
	}
}

func passCalls(calls []domain.Invocation, pass domain.Pass) []domain.Invocation {
	var out []domain.Invocation
	for _, c := range calls {
		if c.Pass == pass {
			out = append(out, c)
		}
	}
	return out
}

// --- Validation Tests ---

func TestRun_ValidationFailsBeforeAnyProcess(t *testing.T) {
	tests := []struct {
		name    string
		files   []string
		modify  func(*Request)
		wantErr error
	}{
		{
			name:    "unknown input type",
			modify:  func(r *Request) { r.InputType = "bam" },
			wantErr: domain.ErrUnrecognizedExtension,
		},
		{
			name:    "no input files",
			files:   []string{},
			wantErr: domain.ErrNoInputFilesFound,
		},
		{
			name:    "ambiguous filename",
			files:   []string{"S_ATCACG_R1_R2_001.fastq", "S_ATCACG_R2_001.fastq"},
			wantErr: domain.ErrAmbiguousFilename,
		},
		{
			name:    "unrecognized filename",
			files:   []string{"S_ATCACG_R1_001.fastq", "S_ATCACG_R2_001.fastq", "S_ATCACG_001.fastq"},
			wantErr: domain.ErrUnrecognizedFilename,
		},
		{
			name:    "unequal pair counts",
			files:   []string{"S_ATCACG_R1_001.fastq", "S_ATCACG_R1_002.fastq", "S_ATCACG_R2_001.fastq"},
			wantErr: domain.ErrMismatchedPairCount,
		},
		{
			name:    "no barcode and no output names",
			modify:  func(r *Request) { r.Barcode = "" },
			wantErr: domain.ErrMissingOutputName,
		},
		{
			name: "manual without output names",
			modify: func(r *Request) {
				r.Manual = true
				r.R1 = []string{"a_R1_.fastq"}
				r.R2 = []string{"a_R2_.fastq"}
			},
			wantErr: domain.ErrMissingOutputName,
		},
		{
			name:    "unknown primary build",
			modify:  func(r *Request) { r.PrimaryBuild = "hg38" },
			wantErr: domain.ErrUnknownReferenceBuild,
		},
		{
			name:    "unknown spike build",
			modify:  func(r *Request) { r.SpikeBuild = "hg38" },
			wantErr: domain.ErrUnknownReferenceBuild,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := sampleDir(t, 2, "fastq")
			if tt.files != nil {
				dir = t.TempDir()
				for _, f := range tt.files {
					if err := os.WriteFile(filepath.Join(dir, f), nil, 0o644); err != nil {
						t.Fatal(err)
					}
				}
			}

			req := baseRequest(dir)
			if tt.modify != nil {
				tt.modify(&req)
			}

			runner := &fakeRunner{}
			journal := &fakeJournal{}
			o := newTestOrchestrator(runner, Config{Journal: journal})

			result, err := o.Run(context.Background(), req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if result != nil {
				t.Error("result should be nil on validation error")
			}
			if n := len(runner.Calls()); n != 0 {
				t.Errorf("expected no process calls, got %d", n)
			}
			if len(journal.runStatuses) != 0 {
				t.Errorf("validation errors should not be journaled, got %v", journal.runStatuses)
			}
		})
	}
}

func TestRun_SpikeDisabledSkipsLookupAndPass(t *testing.T) {
	dir := sampleDir(t, 2, "fastq")
	runner := &fakeRunner{}
	o := newTestOrchestrator(runner, Config{})

	req := baseRequest(dir)
	req.AlignSpike = false
	req.SpikeBuild = "no-such-build"

	result, err := o.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := runner.Calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 primary calls, got %d", len(calls))
	}
	if len(passCalls(calls, domain.PassSpike)) != 0 {
		t.Error("spike pass should not run")
	}
	if result.Run.SpikeBuild != "" || result.Run.Sample.SpikeOutput != "" {
		t.Errorf("spike fields should be empty, got %+v", result.Run)
	}
}

// --- Alignment Tests ---

func TestRun_ThreePairsHeaderThenAppends(t *testing.T) {
	dir := sampleDir(t, 3, "fastq")
	runner := &fakeRunner{}
	o := newTestOrchestrator(runner, Config{})

	result, err := o.Run(context.Background(), baseRequest(dir))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Run.Status != domain.RunStatusSucceeded {
		t.Errorf("expected SUCCEEDED, got %s", result.Run.Status)
	}

	calls := runner.Calls()
	if len(calls) != 6 {
		t.Fatalf("expected 6 calls, got %d", len(calls))
	}

	// Сначала весь основной проход, потом spike-in
	for i, c := range calls {
		want := domain.PassPrimary
		if i >= 3 {
			want = domain.PassSpike
		}
		if c.Pass != want {
			t.Errorf("call %d: expected pass %s, got %s", i, want, c.Pass)
		}
	}

	for _, pass := range []domain.Pass{domain.PassPrimary, domain.PassSpike} {
		invs := passCalls(calls, pass)
		for i, inv := range invs {
			if inv.Lane != i {
				t.Errorf("%s: expected lane %d, got %d", pass, i, inv.Lane)
			}
			if inv.Output != invs[0].Output {
				t.Errorf("%s: lane %d writes %s, expected %s", pass, i, inv.Output, invs[0].Output)
			}
			hasNoHead := inv.Args[0] == "--no-head"
			if (i == 0) == hasNoHead || (i == 0) == inv.Append {
				t.Errorf("%s lane %d: unexpected header mode, args %v append %v", pass, i, inv.Args, inv.Append)
			}
		}
	}

	if calls[0].Output != "PS_CTCF.sam" || calls[3].Output != "PS_CTCF.sam.dm6" {
		t.Errorf("unexpected outputs %s, %s", calls[0].Output, calls[3].Output)
	}
	if !strings.Contains(strings.Join(calls[0].Args, " "), "-1 PS_CTCF_ATCACG_L001_R1_001.fastq -2 PS_CTCF_ATCACG_L001_R2_001.fastq") {
		t.Errorf("unexpected args %v", calls[0].Args)
	}

	data, err := os.ReadFile(filepath.Join(dir, "PS_CTCF.sam"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "primary lane 0\nprimary lane 1\nprimary lane 2\n" {
		t.Errorf("unexpected output content %q", data)
	}
}

func TestRun_DecompressesBeforeAlignment(t *testing.T) {
	dir := sampleDir(t, 2, "fastq.gz")
	runner := &fakeRunner{}
	o := newTestOrchestrator(runner, Config{DecompressCommand: []string{"pigz", "-dc"}})

	req := baseRequest(dir)
	req.InputType = "fastq.gz"

	if _, err := o.Run(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := runner.Calls()
	if len(calls) != 8 {
		t.Fatalf("expected 4 decompress + 4 align calls, got %d", len(calls))
	}
	for i, c := range calls[:4] {
		if c.Pass != domain.PassDecompress || c.Tool != "pigz" {
			t.Fatalf("call %d should decompress, got %+v", i, c)
		}
		if strings.HasSuffix(c.Output, ".gz") {
			t.Errorf("decompressed output should drop .gz: %s", c.Output)
		}
	}
	if calls[0].Args[1] != "PS_CTCF_ATCACG_L001_R1_001.fastq.gz" {
		t.Errorf("unexpected decompress args %v", calls[0].Args)
	}

	// Выравнивание работает с распакованными именами
	for _, c := range calls[4:] {
		for _, a := range c.Args {
			if strings.HasSuffix(a, ".gz") {
				t.Errorf("alignment should use decompressed files, got %v", c.Args)
			}
		}
	}
}

func TestRun_ManualPairs(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{}
	o := newTestOrchestrator(runner, Config{})

	result, err := o.Run(context.Background(), Request{
		InputType:     "fastq",
		Manual:        true,
		R1:            []string{"x_1.fastq", "y_1.fastq"},
		R2:            []string{"x_2.fastq", "y_2.fastq"},
		WorkDir:       dir,
		PrimaryOutput: "out.sam",
		PrimaryBuild:  "mm9",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := runner.Calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}
	if result.Run.PrimaryBuild != "mm9" {
		t.Errorf("unexpected build %s", result.Run.PrimaryBuild)
	}
	if got := strings.Join(calls[1].Args, " "); !strings.HasSuffix(got, "-1 y_1.fastq -2 y_2.fastq") {
		t.Errorf("manual order should be kept, got %s", got)
	}
}

func TestRun_ProcessFailureStopsRun(t *testing.T) {
	dir := sampleDir(t, 3, "fastq")
	runner := &fakeRunner{
		failOn: func(inv *domain.Invocation) bool {
			return inv.Pass == domain.PassPrimary && inv.Lane == 1
		},
	}
	journal := &fakeJournal{}
	publisher := &fakePublisher{}
	o := newTestOrchestrator(runner, Config{Journal: journal, Publisher: publisher})

	result, err := o.Run(context.Background(), baseRequest(dir))
	if !errors.Is(err, domain.ErrExternalProcessFailure) {
		t.Fatalf("expected ErrExternalProcessFailure, got %v", err)
	}
	if len(runner.Calls()) != 2 {
		t.Errorf("expected run to stop after failed lane, got %d calls", len(runner.Calls()))
	}
	if result == nil || result.Run.Status != domain.RunStatusFailed {
		t.Fatalf("expected FAILED result, got %+v", result)
	}

	inv := result.Invocations[1]
	if inv.Status != domain.InvocationStatusFailed || inv.Error == "" {
		t.Errorf("failed invocation should be marked, got %+v", inv)
	}
	if result.Invocations[2].Status != domain.InvocationStatusPlanned {
		t.Errorf("later invocations should stay PLANNED, got %s", result.Invocations[2].Status)
	}

	want := []domain.RunStatus{domain.RunStatusRunning, domain.RunStatusFailed}
	if fmt.Sprint(publisher.events) != fmt.Sprint(want) {
		t.Errorf("expected events %v, got %v", want, publisher.events)
	}
}

func TestRun_ConcurrentPasses(t *testing.T) {
	dir := sampleDir(t, 3, "fastq")
	runner := &fakeRunner{}
	o := newTestOrchestrator(runner, Config{})

	req := baseRequest(dir)
	req.ConcurrentPasses = true

	if _, err := o.Run(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := runner.Calls()
	if len(calls) != 6 {
		t.Fatalf("expected 6 calls, got %d", len(calls))
	}
	for _, pass := range []domain.Pass{domain.PassPrimary, domain.PassSpike} {
		for i, inv := range passCalls(calls, pass) {
			if inv.Lane != i {
				t.Errorf("%s: lanes out of order, position %d has lane %d", pass, i, inv.Lane)
			}
		}
	}
}

// --- Placement Tests ---

func TestRun_MissingDestinationAfterBothPasses(t *testing.T) {
	dir := sampleDir(t, 2, "fastq")
	runner := &fakeRunner{}
	o := newTestOrchestrator(runner, Config{})

	req := baseRequest(dir)
	req.Destination = filepath.Join(t.TempDir(), "missing")

	result, err := o.Run(context.Background(), req)
	if !errors.Is(err, domain.ErrDestinationNotFound) {
		t.Fatalf("expected ErrDestinationNotFound, got %v", err)
	}
	if len(runner.Calls()) != 4 {
		t.Errorf("both passes should complete before placement, got %d calls", len(runner.Calls()))
	}
	if result.Run.Status != domain.RunStatusFailed {
		t.Errorf("expected FAILED, got %s", result.Run.Status)
	}
	// Выходные файлы остаются в рабочей директории
	if _, err := os.Stat(filepath.Join(dir, "PS_CTCF.sam.dm6")); err != nil {
		t.Errorf("spike output should exist: %v", err)
	}
}

func TestRun_PlacesOutputs(t *testing.T) {
	dir := sampleDir(t, 1, "fastq")
	dest := t.TempDir()
	runner := &fakeRunner{}
	o := newTestOrchestrator(runner, Config{})

	req := baseRequest(dir)
	req.Destination = dest

	result, err := o.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Placed) != 2 {
		t.Fatalf("expected 2 placed files, got %v", result.Placed)
	}
	for _, name := range []string{"PS_CTCF.sam", "PS_CTCF.sam.dm6"} {
		if _, err := os.Stat(filepath.Join(dest, name)); err != nil {
			t.Errorf("%s not placed: %v", name, err)
		}
	}
}

func TestRun_PlacesAbsoluteOutput(t *testing.T) {
	dir := sampleDir(t, 2, "fastq")
	outDir := t.TempDir()
	dest := t.TempDir()
	runner := &fakeRunner{}
	o := newTestOrchestrator(runner, Config{})

	req := baseRequest(dir)
	req.AlignSpike = false
	req.PrimaryOutput = filepath.Join(outDir, "abs.sam")
	req.Destination = dest

	result, err := o.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Placed) != 1 {
		t.Fatalf("expected 1 placed file, got %v", result.Placed)
	}

	data, err := os.ReadFile(filepath.Join(dest, "abs.sam"))
	if err != nil {
		t.Fatalf("abs.sam not placed: %v", err)
	}
	if got := strings.Count(string(data), "\n"); got != 2 {
		t.Errorf("expected 2 lines in placed file, got %d", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "abs.sam")); !os.IsNotExist(err) {
		t.Errorf("absolute output should not be written under the working directory")
	}
}

func TestRun_UncompressedEntryKeepsInputIntact(t *testing.T) {
	dir := t.TempDir()
	content := []byte("@r\nACGT\n+\nIIII\n")
	for _, name := range []string{"a_1.fastq", "a_2.fastq"} {
		if err := os.WriteFile(filepath.Join(dir, name), content, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	// Реальные ExecRunner и zcat: ошибка должна случиться до запуска процессов
	o := New(Config{Logger: discardLogger()})

	_, err := o.Run(context.Background(), Request{
		InputType:     "fastq.gz",
		Manual:        true,
		R1:            []string{"a_1.fastq"},
		R2:            []string{"a_2.fastq"},
		WorkDir:       dir,
		PrimaryOutput: "out.sam",
		PrimaryBuild:  "hg19",
	})
	if !errors.Is(err, domain.ErrUnrecognizedExtension) {
		t.Fatalf("expected ErrUnrecognizedExtension, got %v", err)
	}

	for _, name := range []string{"a_1.fastq", "a_2.fastq"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != string(content) {
			t.Errorf("%s was modified: %q", name, data)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "out.sam")); !os.IsNotExist(err) {
		t.Error("no output should be created")
	}
}

// --- Recording Tests ---

func TestRun_JournalFailureDoesNotFailRun(t *testing.T) {
	dir := sampleDir(t, 2, "fastq")
	runner := &fakeRunner{}
	journal := &fakeJournal{err: errors.New("connection refused")}
	o := newTestOrchestrator(runner, Config{Journal: journal})

	result, err := o.Run(context.Background(), baseRequest(dir))
	if err != nil {
		t.Fatalf("journal errors should not fail the run: %v", err)
	}
	if result.Run.Status != domain.RunStatusSucceeded {
		t.Errorf("expected SUCCEEDED, got %s", result.Run.Status)
	}

	want := []domain.RunStatus{domain.RunStatusRunning, domain.RunStatusSucceeded}
	if fmt.Sprint(journal.runStatuses) != fmt.Sprint(want) {
		t.Errorf("expected run statuses %v, got %v", want, journal.runStatuses)
	}
	// started + finished для каждого из 4 вызовов
	if journal.invocations != 8 {
		t.Errorf("expected 8 invocation records, got %d", journal.invocations)
	}
}

func TestRun_Metrics(t *testing.T) {
	dir := sampleDir(t, 2, "fastq")
	runner := &fakeRunner{}
	o := newTestOrchestrator(runner, Config{})

	if _, err := o.Run(context.Background(), baseRequest(dir)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `
# HELP pairalign_runs_total Finished runs by status.
# TYPE pairalign_runs_total counter
pairalign_runs_total{status="SUCCEEDED"} 1
# HELP pairalign_read_pairs Read pairs (lanes) in the last run.
# TYPE pairalign_read_pairs gauge
pairalign_read_pairs 2
`
	err := testutil.GatherAndCompare(o.Metrics().Registry(), strings.NewReader(expected),
		"pairalign_runs_total", "pairalign_read_pairs")
	if err != nil {
		t.Error(err)
	}
}

// --- Plan Tests ---

func TestPlan_CustomReferences(t *testing.T) {
	dir := sampleDir(t, 1, "fastq")
	o := newTestOrchestrator(&fakeRunner{}, Config{
		References: reference.DefaultTable().Merge(map[string]string{"hg38": "/refs/hg38/genome"}),
	})

	req := baseRequest(dir)
	req.PrimaryBuild = "hg38"

	plan, err := o.Plan(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Primary.Path != "/refs/hg38/genome" {
		t.Errorf("unexpected index %+v", plan.Primary)
	}
	if len(plan.Invocations()) != 2 {
		t.Errorf("expected 2 planned invocations, got %d", len(plan.Invocations()))
	}
	for _, inv := range plan.Invocations() {
		if inv.Status != domain.InvocationStatusPlanned || inv.RunID != plan.Run.ID {
			t.Errorf("unexpected planned invocation %+v", inv)
		}
	}
}

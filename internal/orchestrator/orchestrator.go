package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shaiso/pairalign/internal/align"
	"github.com/shaiso/pairalign/internal/decompress"
	"github.com/shaiso/pairalign/internal/domain"
	"github.com/shaiso/pairalign/internal/pairing"
	"github.com/shaiso/pairalign/internal/placement"
	"github.com/shaiso/pairalign/internal/process"
	"github.com/shaiso/pairalign/internal/reference"
	"github.com/shaiso/pairalign/internal/telemetry"
)

// Journal сохраняет состояние run и его вызовов.
type Journal interface {
	RecordRun(ctx context.Context, run *domain.Run) error
	RecordInvocation(ctx context.Context, inv *domain.Invocation) error
}

// EventPublisher публикует события жизненного цикла run.
type EventPublisher interface {
	PublishRunEvent(ctx context.Context, run *domain.Run) error
}

// RunnerFactory создаёт Runner для рабочей директории run.
type RunnerFactory func(workDir string) process.Runner

// Orchestrator выполняет runs выравнивания.
type Orchestrator struct {
	aligner           string
	preset            align.Preset
	references        reference.Table
	markers           pairing.Markers
	decompressCommand []string

	newAlignRunner      RunnerFactory
	newDecompressRunner RunnerFactory
	placer              placement.Placer

	journal   Journal
	publisher EventPublisher
	metrics   *telemetry.Metrics

	logger *slog.Logger
}

// Config — конфигурация Orchestrator.
type Config struct {
	// Aligner — исполняемый файл bowtie2 (default: bowtie2).
	Aligner string

	// Preset — параметры bowtie2 (default: align.DefaultPreset()).
	Preset align.Preset

	// References — таблица сборок (default: reference.DefaultTable()).
	References reference.Table

	// Markers — маркеры R1/R2 (default: pairing.DefaultMarkers).
	Markers pairing.Markers

	// DecompressCommand — argv распаковщика (default: zcat).
	DecompressCommand []string

	// AlignRunner и DecompressRunner — фабрики Runner'ов.
	// По умолчанию — process.ExecRunner и, для встроенной распаковки,
	// decompress.GzipRunner.
	AlignRunner      RunnerFactory
	DecompressRunner RunnerFactory

	// Placer — размещение результатов (default: placement.NewRouter()).
	Placer placement.Placer

	// Journal, Publisher — необязательные. Ошибки записи только логируются.
	Journal   Journal
	Publisher EventPublisher

	// Metrics — метрики run (default: новый registry).
	Metrics *telemetry.Metrics

	Logger *slog.Logger
}

// Result — итог выполненного run.
type Result struct {
	Run         *domain.Run         `json:"run"`
	Invocations []domain.Invocation `json:"invocations"`

	// Placed — адреса скопированных файлов в назначении.
	Placed []string `json:"placed,omitempty"`
}

// New создаёт новый Orchestrator.
func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	aligner := cfg.Aligner
	if aligner == "" {
		aligner = align.DefaultAligner
	}

	references := cfg.References
	if references == nil {
		references = reference.DefaultTable()
	}

	preset := cfg.Preset
	if preset == (align.Preset{}) {
		preset = align.DefaultPreset()
	}

	markers := cfg.Markers
	if markers.R1 == "" || markers.R2 == "" {
		markers = pairing.DefaultMarkers
	}

	command := cfg.DecompressCommand
	if len(command) == 0 {
		command = decompress.Command("")
	}

	alignRunner := cfg.AlignRunner
	if alignRunner == nil {
		alignRunner = func(dir string) process.Runner {
			return process.NewExecRunner(dir, logger)
		}
	}

	decompressRunner := cfg.DecompressRunner
	if decompressRunner == nil {
		if decompress.IsBuiltin(command) {
			decompressRunner = func(dir string) process.Runner {
				return decompress.NewGzipRunner(dir)
			}
		} else {
			decompressRunner = alignRunner
		}
	}

	placer := cfg.Placer
	if placer == nil {
		placer = placement.NewRouter()
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = telemetry.NewMetrics()
	}

	return &Orchestrator{
		aligner:             aligner,
		preset:              preset,
		references:          references,
		markers:             markers,
		decompressCommand:   command,
		newAlignRunner:      alignRunner,
		newDecompressRunner: decompressRunner,
		placer:              placer,
		journal:             cfg.Journal,
		publisher:           cfg.Publisher,
		metrics:             metrics,
		logger:              logger,
	}
}

// Metrics возвращает метрики, накопленные orchestrator'ом.
func (o *Orchestrator) Metrics() *telemetry.Metrics {
	return o.metrics
}

// Run проверяет запрос и выполняет run целиком:
// распаковка → основной проход → spike-in → размещение.
//
// Ошибки валидации возвращаются до запуска процессов, Result при этом nil.
// После запуска Result возвращается всегда, в том числе вместе с ошибкой.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	plan, err := o.Plan(req)
	if err != nil {
		return nil, err
	}
	return o.Execute(ctx, plan)
}

// Execute выполняет построенный план.
func (o *Orchestrator) Execute(ctx context.Context, plan *Plan) (*Result, error) {
	run := plan.Run
	logger := telemetry.WithRunID(o.logger, run.ID.String())
	rec := newRecorder(ctx, o.journal, o.publisher, o.metrics, logger)

	result := &Result{Run: run}

	logger.Info("run started",
		"work_dir", run.WorkDir,
		"pairs", len(run.Sample.Pairs),
		"primary_build", run.PrimaryBuild,
		"spike_build", run.SpikeBuild,
		"outputs", run.Sample.Outputs(),
	)
	for _, p := range run.Sample.Pairs {
		logger.Debug("read pair", "lane", p.Lane, "r1", p.R1, "r2", p.R2)
	}

	run.MarkRunning()
	rec.runChanged(run)

	placed, err := o.execute(ctx, plan, rec)
	result.Invocations = plan.Invocations()
	result.Placed = placed

	if err != nil {
		run.MarkFailed(err.Error())
		logger.Error("run failed", "error", err, "duration", run.Duration())
	} else {
		run.MarkSucceeded()
		logger.Info("run completed", "duration", run.Duration(), "placed", placed)
	}
	rec.runChanged(run)
	o.metrics.ObserveRun(string(run.Status), len(run.Sample.Pairs), run.Duration())

	return result, err
}

func (o *Orchestrator) execute(ctx context.Context, plan *Plan, rec *recorder) ([]string, error) {
	workDir := plan.Run.WorkDir

	if len(plan.Decompress) > 0 {
		rec.logger.Info("decompressing inputs", "files", len(plan.Decompress), "tool", plan.Decompress[0].Tool)
		if err := process.RunSequence(ctx, o.newDecompressRunner(workDir), plan.Decompress, rec); err != nil {
			return nil, err
		}
	}

	if err := o.align(ctx, plan, rec); err != nil {
		return nil, err
	}

	if plan.Destination == "" {
		return nil, nil
	}

	outputs := plan.Run.Sample.Outputs()
	files := make([]string, len(outputs))
	for i, out := range outputs {
		files[i] = process.ResolvePath(workDir, out)
	}

	placed, err := o.placer.Place(ctx, files, plan.Destination)
	if err != nil {
		return placed, fmt.Errorf("place outputs: %w", err)
	}
	return placed, nil
}

// align выполняет основной проход и, если он есть, проход spike-in.
// Внутри прохода вызовы всегда последовательны.
func (o *Orchestrator) align(ctx context.Context, plan *Plan, rec *recorder) error {
	runner := o.newAlignRunner(plan.Run.WorkDir)

	passes := [][]domain.Invocation{plan.PrimaryPass}
	if len(plan.SpikePass) > 0 {
		passes = append(passes, plan.SpikePass)
	}

	if !plan.ConcurrentPasses || len(passes) == 1 {
		for _, invs := range passes {
			if err := o.runPass(ctx, runner, invs, rec); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, invs := range passes {
		invs := invs
		g.Go(func() error {
			return o.runPass(gctx, runner, invs, rec)
		})
	}
	return g.Wait()
}

func (o *Orchestrator) runPass(ctx context.Context, runner process.Runner, invs []domain.Invocation, rec *recorder) error {
	if len(invs) == 0 {
		return nil
	}
	start := time.Now()
	logger := telemetry.WithPass(rec.logger, string(invs[0].Pass))
	logger.Info("alignment pass started", "output", invs[0].Output, "invocations", len(invs))

	if err := process.RunSequence(ctx, runner, invs, rec); err != nil {
		return err
	}

	logger.Info("alignment pass completed", "output", invs[0].Output, "duration", time.Since(start))
	return nil
}

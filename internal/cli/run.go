package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/pairalign/internal/domain"
	"github.com/shaiso/pairalign/internal/orchestrator"
	"github.com/shaiso/pairalign/internal/telemetry"
)

// NewRunCmd создаёт команду выравнивания одного образца.
func NewRunCmd(envFn func() *Env, outputFn func() *Output) *cobra.Command {
	var req orchestrator.Request
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Align paired-end reads of one sample",
		Long: `Align paired-end reads of one sample against a primary and a spike-in
reference with bowtie2.

Input files are discovered in --dir and paired by their _R1_/_R2_ markers,
or given explicitly with --manual --r1 ... --r2 .... Compressed inputs are
decompressed next to the originals first. Each pass writes one SAM file:
the first pair creates it with a header, later pairs append without one.`,
		Example: `  pairalign run --dir /data/run42 --barcode ATCACG
  pairalign run --manual --r1 a_1.fastq --r2 a_2.fastq --input-type fastq \
      --data-output a.sam --align-spike=false
  pairalign run --dir . --barcode ATCACG --dry-run --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envFn()
			out := outputFn()

			orch, closeFn := newOrchestrator(cmd.Context(), env, dryRun)
			defer closeFn()

			if dryRun {
				plan, err := orch.Plan(req)
				if err != nil {
					return err
				}
				return out.Render(newPlanView(plan))
			}

			result, err := orch.Run(cmd.Context(), req)
			if result != nil {
				exportMetrics(cmd.Context(), env, orch, result.Run)
			}
			if err != nil {
				return err
			}

			out.Status(fmt.Sprintf("Run %s completed in %s", result.Run.ID, result.Run.Duration().Round(time.Millisecond)))
			return out.Render((*resultView)(result))
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.InputType, "input-type", string(domain.FormatFastqGz), "Input extension: fastq or fastq.gz")
	f.BoolVar(&req.Manual, "manual", false, "Use --r1/--r2 lists instead of discovering files")
	f.StringArrayVar(&req.R1, "r1", nil, "Read-1 files, in pair order (repeatable, manual mode)")
	f.StringArrayVar(&req.R2, "r2", nil, "Read-2 files, in pair order (repeatable, manual mode)")
	f.StringVar(&req.WorkDir, "dir", "", "Directory with input files (default: current directory)")
	f.StringVar(&req.Destination, "output-dir", "", "Existing directory or gs://bucket/prefix to copy SAM files to")
	f.StringVar(&req.PrimaryOutput, "data-output", "", "Primary SAM file name (default: derived from barcode)")
	f.StringVar(&req.SpikeOutput, "spike-output", "", "Spike-in SAM file name (default: derived from barcode)")
	f.StringVar(&req.Barcode, "barcode", "", "Sample barcode used to derive output names, e.g. ATCACG")
	f.StringVar(&req.PrimaryBuild, "data-build", "hg19", "Primary reference build")
	f.StringVar(&req.SpikeBuild, "spike-build", "dm6", "Spike-in reference build")
	f.BoolVar(&req.AlignSpike, "align-spike", true, "Run the spike-in alignment pass")
	f.BoolVar(&req.ConcurrentPasses, "concurrent-passes", false, "Run primary and spike-in passes in parallel")
	f.BoolVar(&dryRun, "dry-run", false, "Validate and print the commands without running them")

	return cmd
}

// newOrchestrator собирает orchestrator из конфигурации.
// В режиме dry-run журнал и события не подключаются.
func newOrchestrator(ctx context.Context, env *Env, dryRun bool) (*orchestrator.Orchestrator, func()) {
	cfg := orchestrator.Config{
		Aligner:           env.Config.Aligner,
		Preset:            env.Config.Preset,
		References:        env.Config.ReferenceTable(),
		Markers:           env.Config.Markers,
		DecompressCommand: env.Config.DecompressCommand(),
		AlignRunner:       env.AlignRunner,
		Logger:            env.Logger,
	}
	if env.AlignRunner != nil {
		cfg.DecompressRunner = env.AlignRunner
	}

	if dryRun {
		return orchestrator.New(cfg), func() {}
	}

	s := env.openSinks(ctx)
	s.apply(&cfg)
	return orchestrator.New(cfg), s.Close
}

// exportMetrics выгружает метрики run, если это настроено.
func exportMetrics(ctx context.Context, env *Env, orch *orchestrator.Orchestrator, run *domain.Run) {
	mc := env.Config.Metrics
	if mc.Textfile == "" && mc.Pushgateway == "" {
		return
	}

	sample := strings.TrimSuffix(filepath.Base(run.Sample.PrimaryOutput), ".sam")
	err := orch.Metrics().Export(ctx, telemetry.ExportOptions{
		Textfile:    mc.Textfile,
		Pushgateway: mc.Pushgateway,
		Job:         mc.Job,
		Grouping:    map[string]string{"sample": sample},
	})
	if err != nil {
		env.Logger.Warn("metrics export failed", "error", err)
	}
}

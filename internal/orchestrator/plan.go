package orchestrator

import (
	"fmt"
	"path/filepath"

	"github.com/shaiso/pairalign/internal/align"
	"github.com/shaiso/pairalign/internal/decompress"
	"github.com/shaiso/pairalign/internal/domain"
	"github.com/shaiso/pairalign/internal/pairing"
)

// Request — параметры одного run.
type Request struct {
	// InputType — "fastq" или "fastq.gz".
	InputType string

	// Manual — пары заданы списками R1/R2, имена файлов не анализируются.
	Manual bool
	R1     []string
	R2     []string

	// WorkDir — директория с входными файлами. Пусто — текущая.
	WorkDir string

	// Destination — куда скопировать результаты. Пусто — не копировать.
	Destination string

	// PrimaryOutput, SpikeOutput — явные имена выходных файлов.
	PrimaryOutput string
	SpikeOutput   string

	// Barcode — баркод образца для имён по умолчанию.
	Barcode string

	PrimaryBuild string
	SpikeBuild   string
	AlignSpike   bool

	// ConcurrentPasses — запускать основной и spike-in проходы параллельно.
	ConcurrentPasses bool
}

// Plan — проверенный запрос и все вызовы, которые выполнит run.
type Plan struct {
	Run    *domain.Run
	Format domain.InputFormat

	// Inputs — пары в том виде, в каком они найдены (возможно, .gz).
	Inputs []domain.ReadPair

	Primary domain.ReferenceIndex
	Spike   *domain.ReferenceIndex

	Decompress  []domain.Invocation
	PrimaryPass []domain.Invocation
	SpikePass   []domain.Invocation

	Destination      string
	ConcurrentPasses bool
}

// Invocations возвращает все вызовы в порядке последовательного выполнения.
func (p *Plan) Invocations() []domain.Invocation {
	all := make([]domain.Invocation, 0, len(p.Decompress)+len(p.PrimaryPass)+len(p.SpikePass))
	all = append(all, p.Decompress...)
	all = append(all, p.PrimaryPass...)
	all = append(all, p.SpikePass...)
	return all
}

// Plan проверяет запрос и строит план run.
//
// Порядок проверок: формат, поиск и классификация файлов, имена
// выходных файлов, основная сборка, сборка spike-in (только если
// spike-in включён), имена сжатых файлов. Внешние процессы не запускаются.
func (o *Orchestrator) Plan(req Request) (*Plan, error) {
	format, err := domain.ParseInputFormat(req.InputType)
	if err != nil {
		return nil, err
	}

	workDir := req.WorkDir
	if workDir == "" {
		workDir = "."
	}
	workDir, err = filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	var inputs []domain.ReadPair
	if req.Manual {
		inputs, err = pairing.Manual(req.R1, req.R2)
	} else {
		var names []string
		names, err = pairing.Discover(workDir, format)
		if err == nil {
			inputs, err = pairing.Classify(names, o.markers)
		}
	}
	if err != nil {
		return nil, err
	}

	// Дальше все шаги работают с именами распакованных файлов
	pairs := pairing.StripPairs(inputs, format)

	primaryOut, spikeOut, err := pairing.ResolveOutputNames(pairs, pairing.NameRequest{
		Manual:     req.Manual,
		AlignSpike: req.AlignSpike,
		Primary:    req.PrimaryOutput,
		Spike:      req.SpikeOutput,
		Barcode:    req.Barcode,
		SpikeBuild: req.SpikeBuild,
	})
	if err != nil {
		return nil, err
	}

	primaryIdx, err := o.references.Resolve(req.PrimaryBuild)
	if err != nil {
		return nil, err
	}

	var spikeIdx *domain.ReferenceIndex
	if req.AlignSpike {
		idx, err := o.references.Resolve(req.SpikeBuild)
		if err != nil {
			return nil, err
		}
		spikeIdx = &idx
	}

	run := domain.NewRun(workDir)

	decompressInvs, err := decompress.Plan(run.ID, inputs, format, o.decompressCommand)
	if err != nil {
		return nil, err
	}

	run.PrimaryBuild = primaryIdx.Build
	run.Sample = domain.Sample{
		Pairs:         pairs,
		PrimaryOutput: primaryOut,
		SpikeOutput:   spikeOut,
	}

	plan := &Plan{
		Run:              run,
		Format:           format,
		Inputs:           inputs,
		Primary:          primaryIdx,
		Spike:            spikeIdx,
		Decompress:       decompressInvs,
		Destination:      req.Destination,
		ConcurrentPasses: req.ConcurrentPasses,
	}

	plan.PrimaryPass = align.PassSpec{
		Pass:    domain.PassPrimary,
		Aligner: o.aligner,
		Preset:  o.preset,
		Index:   primaryIdx,
		Output:  primaryOut,
	}.Build(run.ID, pairs)

	if spikeIdx != nil {
		run.SpikeBuild = spikeIdx.Build
		plan.SpikePass = align.PassSpec{
			Pass:    domain.PassSpike,
			Aligner: o.aligner,
			Preset:  o.preset,
			Index:   *spikeIdx,
			Output:  spikeOut,
		}.Build(run.ID, pairs)
	}

	return plan, nil
}

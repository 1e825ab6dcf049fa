package align

import (
	"github.com/google/uuid"

	"github.com/shaiso/pairalign/internal/domain"
)

// DefaultAligner — исполняемый файл выравнивателя.
const DefaultAligner = "bowtie2"

// noHeadFlag подавляет заголовок SAM при дозаписи.
const noHeadFlag = "--no-head"

// PassSpec — описание одного прохода выравнивания.
type PassSpec struct {
	Pass    domain.Pass
	Aligner string
	Preset  Preset
	Index   domain.ReferenceIndex
	Output  string
}

// Build возвращает вызовы bowtie2 для пар в порядке их следования.
//
// Вызов 0 пишет Output заново и выводит заголовок. Вызовы 1..N-1
// дописывают в Output с флагом --no-head.
func (s PassSpec) Build(runID uuid.UUID, pairs []domain.ReadPair) []domain.Invocation {
	aligner := s.Aligner
	if aligner == "" {
		aligner = DefaultAligner
	}
	preset := s.Preset.Args()

	invs := make([]domain.Invocation, len(pairs))
	for i, p := range pairs {
		args := make([]string, 0, len(preset)+7)
		if i > 0 {
			args = append(args, noHeadFlag)
		}
		args = append(args, preset...)
		args = append(args, "-x", s.Index.Path, "-1", p.R1, "-2", p.R2)

		invs[i] = domain.Invocation{
			ID:     uuid.New(),
			RunID:  runID,
			Pass:   s.Pass,
			Lane:   i,
			Tool:   aligner,
			Args:   args,
			Output: s.Output,
			Append: i > 0,
			Status: domain.InvocationStatusPlanned,
		}
	}
	return invs
}

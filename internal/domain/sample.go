package domain

// ReadPair — пара файлов одной дорожки (lane): read-1 и read-2.
type ReadPair struct {
	// Lane — порядковый номер пары в образце (с 0).
	// Порядок определяет порядок дозаписи в SAM.
	Lane int `json:"lane"`

	// R1 — файл read-1.
	R1 string `json:"r1"`

	// R2 — файл read-2.
	R2 string `json:"r2"`
}

// Sample — образец: пары файлов и имена выходных SAM файлов.
type Sample struct {
	// Pairs — пары в порядке выравнивания.
	Pairs []ReadPair `json:"pairs"`

	// PrimaryOutput — SAM для основной сборки.
	PrimaryOutput string `json:"primary_output"`

	// SpikeOutput — SAM для spike-in сборки. Пусто, если spike-in отключён.
	SpikeOutput string `json:"spike_output,omitempty"`
}

// NewPairs собирает пары из двух упорядоченных списков одинаковой длины.
func NewPairs(r1, r2 []string) []ReadPair {
	pairs := make([]ReadPair, len(r1))
	for i := range r1 {
		pairs[i] = ReadPair{Lane: i, R1: r1[i], R2: r2[i]}
	}
	return pairs
}

// Files возвращает все файлы образца в порядке R1, R2 по каждой паре.
func (s *Sample) Files() []string {
	files := make([]string, 0, 2*len(s.Pairs))
	for _, p := range s.Pairs {
		files = append(files, p.R1, p.R2)
	}
	return files
}

// Outputs возвращает непустые имена выходных файлов.
func (s *Sample) Outputs() []string {
	outputs := []string{s.PrimaryOutput}
	if s.SpikeOutput != "" {
		outputs = append(outputs, s.SpikeOutput)
	}
	return outputs
}

// ReferenceIndex — индекс выравнивателя для сборки генома.
type ReferenceIndex struct {
	// Build — имя сборки, например "hg19".
	Build string `json:"build"`

	// Path — префикс файлов индекса bowtie2.
	Path string `json:"path"`
}

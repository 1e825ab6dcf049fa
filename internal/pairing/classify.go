package pairing

import (
	"fmt"
	"strings"

	"github.com/shaiso/pairalign/internal/domain"
)

// Markers — подстроки, по которым файл относится к read-1 или read-2.
type Markers struct {
	R1 string `mapstructure:"r1"`
	R2 string `mapstructure:"r2"`
}

// DefaultMarkers — соглашение Illumina: ..._L001_R1_001.fastq.gz
var DefaultMarkers = Markers{R1: "_R1_", R2: "_R2_"}

// Classify раскладывает отсортированные имена файлов на пары.
//
// Проверяет:
// - Ни одно имя не содержит оба маркера
// - Каждое имя содержит хотя бы один маркер
// - Количество R1 и R2 совпадает
// - Каждый файл попал ровно в один список
//
// Порядок names сохраняется: i-й файл R1 образует пару с i-м файлом R2.
func Classify(names []string, m Markers) ([]domain.ReadPair, error) {
	if len(names) == 0 {
		return nil, domain.NewError(domain.ErrNoInputFilesFound, "", "empty input list", nil)
	}

	var r1, r2 []string
	for _, name := range names {
		has1 := strings.Contains(name, m.R1)
		has2 := strings.Contains(name, m.R2)

		switch {
		case has1 && has2:
			return nil, domain.NewError(domain.ErrAmbiguousFilename, name,
				fmt.Sprintf("contains both %q and %q", m.R1, m.R2), nil)
		case has1:
			r1 = append(r1, name)
		case has2:
			r2 = append(r2, name)
		default:
			return nil, domain.NewError(domain.ErrUnrecognizedFilename, name,
				fmt.Sprintf("contains neither %q nor %q", m.R1, m.R2), nil)
		}
	}

	if len(r1) != len(r2) {
		return nil, domain.NewError(domain.ErrMismatchedPairCount, "",
			fmt.Sprintf("%d files assigned as R1, %d as R2, check naming convention", len(r1), len(r2)), nil)
	}

	// Недостижимо при корректной классификации выше, но проверяем явно
	if len(r1)+len(r2) != len(names) {
		return nil, domain.NewError(domain.ErrIncompletePartition, "",
			fmt.Sprintf("%d of %d files assigned", len(r1)+len(r2), len(names)), nil)
	}

	return domain.NewPairs(r1, r2), nil
}

// Manual собирает пары из списков, заданных пользователем.
// Имена файлов не анализируются; порядок списков должен совпадать.
func Manual(r1, r2 []string) ([]domain.ReadPair, error) {
	if len(r1) == 0 && len(r2) == 0 {
		return nil, domain.NewError(domain.ErrNoInputFilesFound, "", "manual entry with empty R1 and R2 lists", nil)
	}
	if len(r1) != len(r2) {
		return nil, domain.NewError(domain.ErrMismatchedPairCount, "",
			fmt.Sprintf("user specified %d R1 and %d R2 files", len(r1), len(r2)), nil)
	}
	return domain.NewPairs(r1, r2), nil
}

// StripPairs возвращает пары с именами распакованных файлов.
func StripPairs(pairs []domain.ReadPair, format domain.InputFormat) []domain.ReadPair {
	out := make([]domain.ReadPair, len(pairs))
	for i, p := range pairs {
		out[i] = domain.ReadPair{
			Lane: p.Lane,
			R1:   format.Strip(p.R1),
			R2:   format.Strip(p.R2),
		}
	}
	return out
}

// Package decompress распаковывает входные fastq.gz рядом с исходными файлами.
//
// Распаковка — это тоже последовательность domain.Invocation: по одному
// вызову на файл, stdout в файл без суффикса .gz. Вызовы исполняет
// либо process.ExecRunner (внешняя программа: zcat, "pigz -dc"), либо
// GzipRunner (распаковка внутри процесса).
//
// Повторный запуск перезаписывает ранее распакованные файлы.
package decompress

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/shaiso/pairalign/internal/domain"
)

// Способы распаковки в конфигурации.
const (
	// DefaultCommand — внешняя программа по умолчанию.
	DefaultCommand = "zcat"

	// Builtin — распаковка внутри процесса через GzipRunner.
	Builtin = "builtin"

	// BuiltinTool — имя инструмента в вызовах встроенной распаковки.
	BuiltinTool = "builtin-gunzip"
)

// Command разбирает строку конфигурации в argv.
//
//	"zcat"      → [zcat]
//	"pigz -dc"  → [pigz -dc]
//	"builtin"   → [builtin-gunzip]
func Command(setting string) []string {
	setting = strings.TrimSpace(setting)
	switch setting {
	case "":
		return []string{DefaultCommand}
	case Builtin:
		return []string{BuiltinTool}
	default:
		return strings.Fields(setting)
	}
}

// IsBuiltin возвращает true, если argv соответствует встроенной распаковке.
func IsBuiltin(command []string) bool {
	return len(command) == 1 && command[0] == BuiltinTool
}

// Plan возвращает вызовы распаковки для всех файлов пар (R1, R2 по каждой паре).
// Имена назначения получаются снятием суффикса .gz.
//
// Файл без суффикса .gz отклоняется: имя назначения совпало бы с
// исходным, и перенаправление stdout обнулило бы его до запуска процесса.
func Plan(runID uuid.UUID, pairs []domain.ReadPair, format domain.InputFormat, command []string) ([]domain.Invocation, error) {
	if !format.Compressed() {
		return nil, nil
	}
	if len(command) == 0 {
		command = []string{DefaultCommand}
	}

	var invs []domain.Invocation
	for _, p := range pairs {
		for _, src := range []string{p.R1, p.R2} {
			dst := format.Strip(src)
			if dst == src {
				return nil, domain.NewError(domain.ErrUnrecognizedExtension, src,
					fmt.Sprintf("input type %s expects a .gz file", format), nil)
			}

			args := make([]string, 0, len(command))
			args = append(args, command[1:]...)
			args = append(args, src)

			invs = append(invs, domain.Invocation{
				ID:     uuid.New(),
				RunID:  runID,
				Pass:   domain.PassDecompress,
				Lane:   len(invs),
				Tool:   command[0],
				Args:   args,
				Output: dst,
				Status: domain.InvocationStatusPlanned,
			})
		}
	}
	return invs, nil
}

package domain

import "strings"

// InputFormat — тип входных файлов с ридами.
type InputFormat string

const (
	// FormatFastq — несжатые FASTQ файлы.
	FormatFastq InputFormat = "fastq"

	// FormatFastqGz — FASTQ, сжатые gzip.
	FormatFastqGz InputFormat = "fastq.gz"
)

// compressionSuffix — суффикс, который снимается при распаковке.
const compressionSuffix = ".gz"

// ParseInputFormat парсит строку в InputFormat.
func ParseInputFormat(s string) (InputFormat, error) {
	switch InputFormat(s) {
	case FormatFastq, FormatFastqGz:
		return InputFormat(s), nil
	default:
		return "", NewError(ErrUnrecognizedExtension, s, "expected fastq or fastq.gz", nil)
	}
}

// String возвращает строковое представление InputFormat.
func (f InputFormat) String() string {
	return string(f)
}

// Extension возвращает расширение файла с точкой, например ".fastq.gz".
func (f InputFormat) Extension() string {
	return "." + string(f)
}

// Compressed возвращает true, если файлы нужно распаковать перед выравниванием.
func (f InputFormat) Compressed() bool {
	return f == FormatFastqGz
}

// Strip возвращает имя распакованного файла.
// Для несжатого формата имя не меняется.
func (f InputFormat) Strip(name string) string {
	if !f.Compressed() {
		return name
	}
	return strings.TrimSuffix(name, compressionSuffix)
}

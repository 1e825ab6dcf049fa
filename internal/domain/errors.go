package domain

import (
	"errors"
	"strings"
)

// Ошибки пайплайна. Каждая соответствует одному виду отказа;
// вызывающий код различает их через errors.Is, а не по тексту.
var (
	// ErrUnrecognizedExtension — тип входных файлов не fastq и не fastq.gz.
	ErrUnrecognizedExtension = errors.New("unrecognized input extension")

	// ErrNoInputFilesFound — в рабочей директории нет файлов нужного типа.
	ErrNoInputFilesFound = errors.New("no input files found")

	// ErrAmbiguousFilename — имя файла содержит оба маркера _R1_ и _R2_.
	ErrAmbiguousFilename = errors.New("ambiguous read marker in filename")

	// ErrUnrecognizedFilename — имя файла не содержит ни одного маркера.
	ErrUnrecognizedFilename = errors.New("no read marker in filename")

	// ErrMismatchedPairCount — количество R1 и R2 файлов не совпадает.
	ErrMismatchedPairCount = errors.New("unequal number of R1 and R2 files")

	// ErrIncompletePartition — не все входные файлы распределены по R1/R2.
	ErrIncompletePartition = errors.New("input files not fully assigned to R1 or R2")

	// ErrMissingOutputName — имя выходного файла не задано и не может быть выведено.
	ErrMissingOutputName = errors.New("missing output name")

	// ErrUnknownReferenceBuild — для сборки генома нет индекса.
	ErrUnknownReferenceBuild = errors.New("unknown reference build")

	// ErrExternalProcessFailure — внешний процесс (распаковщик или выравниватель) завершился ошибкой.
	ErrExternalProcessFailure = errors.New("external process failed")

	// ErrDestinationNotFound — директория назначения не существует.
	ErrDestinationNotFound = errors.New("destination not found")
)

// kinds — все виды ошибок, в порядке объявления.
var kinds = []error{
	ErrUnrecognizedExtension,
	ErrNoInputFilesFound,
	ErrAmbiguousFilename,
	ErrUnrecognizedFilename,
	ErrMismatchedPairCount,
	ErrIncompletePartition,
	ErrMissingOutputName,
	ErrUnknownReferenceBuild,
	ErrExternalProcessFailure,
	ErrDestinationNotFound,
}

// PipelineError — ошибка пайплайна с контекстом.
type PipelineError struct {
	Kind    error  // один из Err* выше
	Subject string // файл, параметр или команда, вызвавшие ошибку
	Message string // описание для пользователя
	Err     error  // исходная ошибка (может быть nil)
}

// Error реализует интерфейс error.
func (e *PipelineError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Subject != "" {
		b.WriteString(": ")
		b.WriteString(e.Subject)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap возвращает вид ошибки и исходную ошибку.
func (e *PipelineError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewError создаёт новую ошибку пайплайна.
func NewError(kind error, subject, message string, err error) *PipelineError {
	return &PipelineError{
		Kind:    kind,
		Subject: subject,
		Message: message,
		Err:     err,
	}
}

// KindOf возвращает вид ошибки пайплайна или nil, если err не из таксономии.
func KindOf(err error) error {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// Package reference сопоставляет сборки генома с индексами bowtie2.
package reference

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shaiso/pairalign/internal/domain"
)

// Table — отображение имени сборки в префикс файлов индекса.
type Table map[string]string

// DefaultTable — индексы, доступные на кластере по умолчанию.
func DefaultTable() Table {
	return Table{
		"hg19":    "/shared/biodata/ngs/Reference/iGenomes/Homo_sapiens/UCSC/hg19/Sequence/Bowtie2Index/genome",
		"dm6":     "~/henikoff/solexa/Bowtie2/dmel_r6_06",
		"sacCer3": "/shared/biodata/ngs/Reference/iGenomes/Saccharomyces_cerevisiae/UCSC/sacCer3/Sequence/Bowtie2Index/genome",
		"mm9":     "/shared/biodata/ngs/Reference/iGenomes/Mus_musculus/UCSC/mm9/Sequence/Bowtie2Index/genome",
	}
}

// Merge возвращает копию таблицы, дополненную (и переопределённую) other.
//
// Ключи сравниваются без учёта регистра: viper приводит ключи
// конфигурации к нижнему регистру, и "saccer3" должен переопределить
// "sacCer3", а не добавить вторую сборку.
func (t Table) Merge(other map[string]string) Table {
	out := make(Table, len(t)+len(other))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range other {
		if existing, ok := out.lookupKey(k); ok {
			k = existing
		}
		out[k] = v
	}
	return out
}

// Resolve возвращает индекс для сборки.
// Префикс "~/" раскрывается в домашнюю директорию пользователя.
func (t Table) Resolve(build string) (domain.ReferenceIndex, error) {
	key, ok := t.lookupKey(build)
	path := t[key]
	if !ok || path == "" {
		return domain.ReferenceIndex{}, domain.NewError(domain.ErrUnknownReferenceBuild, build,
			fmt.Sprintf("bowtie2 index unavailable, known builds: %s", strings.Join(t.Builds(), ", ")), nil)
	}

	expanded, err := expandHome(path)
	if err != nil {
		return domain.ReferenceIndex{}, fmt.Errorf("expand index path for %s: %w", build, err)
	}

	return domain.ReferenceIndex{Build: build, Path: expanded}, nil
}

// lookupKey ищет сборку сначала точно, затем без учёта регистра.
func (t Table) lookupKey(build string) (string, bool) {
	if _, ok := t[build]; ok {
		return build, true
	}
	for k := range t {
		if strings.EqualFold(k, build) {
			return k, true
		}
	}
	return "", false
}

// Builds возвращает известные сборки в алфавитном порядке.
func (t Table) Builds() []string {
	builds := make([]string, 0, len(t))
	for b := range t {
		builds = append(builds, b)
	}
	sort.Strings(builds)
	return builds
}

// expandHome раскрывает "~" и "~/..." в домашнюю директорию.
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

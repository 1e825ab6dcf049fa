package pairing

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/shaiso/pairalign/internal/domain"
)

// Discover возвращает имена файлов формата format в директории workDir,
// отсортированные лексикографически.
//
// Возвращаются базовые имена, без пути. Директории и скрытые файлы
// (имя начинается с ".") игнорируются.
func Discover(workDir string, format domain.InputFormat) ([]string, error) {
	entries, err := os.ReadDir(workDir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", workDir, err)
	}

	ext := format.Extension()
	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if strings.HasSuffix(e.Name(), ext) {
			names = append(names, e.Name())
		}
	}

	if len(names) == 0 {
		return nil, domain.NewError(domain.ErrNoInputFilesFound, workDir,
			fmt.Sprintf("no *%s files, check input type", ext), nil)
	}

	sort.Strings(names)
	return names, nil
}

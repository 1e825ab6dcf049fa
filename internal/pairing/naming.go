package pairing

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shaiso/pairalign/internal/domain"
)

// samExtension — расширение основного выходного файла.
const samExtension = ".sam"

// NameRequest — параметры выбора имён выходных файлов.
type NameRequest struct {
	Manual     bool   // пары заданы вручную
	AlignSpike bool   // нужен ли spike-in файл
	Primary    string // явно заданное имя для основной сборки
	Spike      string // явно заданное имя для spike-in сборки
	Barcode    string // баркод образца, например "ATCACG"
	SpikeBuild string // сборка spike-in, входит в имя по умолчанию
}

// ResolveOutputNames возвращает имена выходных SAM файлов.
//
// Явно заданные имена имеют приоритет. В ручном режиме имена
// обязательны (spike-in — только если он включён). В автоматическом
// режиме недостающие имена выводятся из баркода через DeriveOutputNames.
// Если spike-in отключён, возвращается пустое имя spike-in.
func ResolveOutputNames(pairs []domain.ReadPair, req NameRequest) (primary, spike string, err error) {
	primary = req.Primary
	if req.AlignSpike {
		spike = req.Spike
	}

	needPrimary := primary == ""
	needSpike := req.AlignSpike && spike == ""
	if !needPrimary && !needSpike {
		return primary, spike, nil
	}

	if req.Manual {
		param := "data output name"
		if !needPrimary {
			param = "spike output name"
		}
		return "", "", domain.NewError(domain.ErrMissingOutputName, param,
			"output names must be specified with manual entry", nil)
	}

	derivedPrimary, derivedSpike, err := DeriveOutputNames(pairs, req.Barcode, req.SpikeBuild)
	if err != nil {
		return "", "", err
	}

	if needPrimary {
		primary = derivedPrimary
	}
	if needSpike {
		spike = derivedSpike
	}
	return primary, spike, nil
}

// DeriveOutputNames выводит имена по умолчанию из имён входных файлов.
//
// Префикс образца — часть базового имени до первого вхождения
// "_<barcode>_". Все файлы образца должны давать один и тот же префикс.
//
//	PS_HsDm_CTCF_1m_ATCACG_L001_R1_001.fastq, barcode ATCACG
//	→ PS_HsDm_CTCF_1m.sam и PS_HsDm_CTCF_1m.sam.dm6
func DeriveOutputNames(pairs []domain.ReadPair, barcode, spikeBuild string) (primary, spike string, err error) {
	if barcode == "" {
		return "", "", domain.NewError(domain.ErrMissingOutputName, "barcode",
			"barcode must be provided when output names are not specified", nil)
	}

	var prefix string
	for _, p := range pairs {
		for _, name := range []string{p.R1, p.R2} {
			got, err := samplePrefix(name, barcode)
			if err != nil {
				return "", "", err
			}
			if prefix == "" {
				prefix = got
				continue
			}
			if got != prefix {
				return "", "", domain.NewError(domain.ErrMissingOutputName, name,
					fmt.Sprintf("sample prefix %q differs from %q", got, prefix), nil)
			}
		}
	}

	if prefix == "" {
		return "", "", domain.NewError(domain.ErrMissingOutputName, "", "no input files to derive name from", nil)
	}

	primary = prefix + samExtension
	if spikeBuild != "" {
		spike = primary + "." + spikeBuild
	}
	return primary, spike, nil
}

// samplePrefix возвращает часть имени до "_<barcode>_".
func samplePrefix(name, barcode string) (string, error) {
	base := filepath.Base(name)
	idx := strings.Index(base, "_"+barcode+"_")
	if idx < 0 {
		return "", domain.NewError(domain.ErrMissingOutputName, name,
			fmt.Sprintf("barcode %q not found in filename", barcode), nil)
	}
	if idx == 0 {
		return "", domain.NewError(domain.ErrMissingOutputName, name,
			"empty sample prefix before barcode", nil)
	}
	return base[:idx], nil
}

package align

import "strconv"

// Preset — параметры bowtie2, одинаковые для всех вызовов прохода.
type Preset struct {
	Local           bool   `mapstructure:"local" json:"local"`
	Sensitivity     string `mapstructure:"sensitivity" json:"sensitivity"`
	NoUnal          bool   `mapstructure:"no_unal" json:"no_unal"`
	NoMixed         bool   `mapstructure:"no_mixed" json:"no_mixed"`
	NoDiscordant    bool   `mapstructure:"no_discordant" json:"no_discordant"`
	QualityEncoding string `mapstructure:"quality_encoding" json:"quality_encoding"`
	MinInsert       int    `mapstructure:"min_insert" json:"min_insert"`
	MaxInsert       int    `mapstructure:"max_insert" json:"max_insert"`
	Threads         int    `mapstructure:"threads" json:"threads"`
}

// DefaultPreset — стандартные параметры лаборатории для CUT&RUN:
// локальное выравнивание, только конкордантные пары, вставка 10–700.
func DefaultPreset() Preset {
	return Preset{
		Local:           true,
		Sensitivity:     "very-sensitive-local",
		NoUnal:          true,
		NoMixed:         true,
		NoDiscordant:    true,
		QualityEncoding: "phred33",
		MinInsert:       10,
		MaxInsert:       700,
		Threads:         12,
	}
}

// Args возвращает аргументы командной строки.
//
// Для DefaultPreset:
//
//	--local --very-sensitive-local --no-unal --no-mixed --no-discordant
//	-q --phred33 -I 10 -X 700 --threads 12
func (p Preset) Args() []string {
	var args []string
	if p.Local {
		args = append(args, "--local")
	}
	if p.Sensitivity != "" {
		args = append(args, "--"+p.Sensitivity)
	}
	if p.NoUnal {
		args = append(args, "--no-unal")
	}
	if p.NoMixed {
		args = append(args, "--no-mixed")
	}
	if p.NoDiscordant {
		args = append(args, "--no-discordant")
	}

	// входные файлы всегда FASTQ
	args = append(args, "-q")

	if p.QualityEncoding != "" {
		args = append(args, "--"+p.QualityEncoding)
	}
	if p.MinInsert > 0 {
		args = append(args, "-I", strconv.Itoa(p.MinInsert))
	}
	if p.MaxInsert > 0 {
		args = append(args, "-X", strconv.Itoa(p.MaxInsert))
	}
	if p.Threads > 0 {
		args = append(args, "--threads", strconv.Itoa(p.Threads))
	}
	return args
}

// Package config загружает настройки pairalign.
//
// Источники в порядке убывания приоритета:
//   - флаги командной строки (привязываются через BindFlag)
//   - переменные окружения PAIRALIGN_* (а также DB_URL, RABBITMQ_URL)
//   - YAML файл: --config, иначе ./pairalign.yaml или $HOME/.config/pairalign.yaml
//   - значения по умолчанию
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/shaiso/pairalign/internal/align"
	"github.com/shaiso/pairalign/internal/decompress"
	"github.com/shaiso/pairalign/internal/pairing"
	"github.com/shaiso/pairalign/internal/reference"
)

const (
	configName = "pairalign"
	envPrefix  = "PAIRALIGN"
)

// Config — настройки, общие для всех запусков.
type Config struct {
	// Aligner — путь к bowtie2.
	Aligner string `mapstructure:"aligner"`

	// Decompressor — "zcat", "builtin" или произвольная команда ("pigz -dc").
	Decompressor string `mapstructure:"decompressor"`

	// References — дополнительные сборки или переопределения путей.
	References map[string]string `mapstructure:"references"`

	// Preset — параметры bowtie2.
	Preset align.Preset `mapstructure:"preset"`

	// Markers — маркеры R1/R2 в именах файлов.
	Markers pairing.Markers `mapstructure:"markers"`

	// DatabaseURL — PostgreSQL для журнала запусков. Пусто — журнал отключён.
	DatabaseURL string `mapstructure:"database_url"`

	// AMQPURL — RabbitMQ для событий run. Пусто — события не публикуются.
	AMQPURL string `mapstructure:"amqp_url"`

	Metrics MetricsConfig `mapstructure:"metrics"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// File — прочитанный файл конфигурации, пусто если файла нет.
	File string `mapstructure:"-"`
}

// MetricsConfig — куда выгружать метрики после run.
type MetricsConfig struct {
	Textfile    string `mapstructure:"textfile"`
	Pushgateway string `mapstructure:"pushgateway"`
	Job         string `mapstructure:"job"`
}

// ReferenceTable возвращает таблицу по умолчанию с переопределениями из конфигурации.
func (c *Config) ReferenceTable() reference.Table {
	return reference.DefaultTable().Merge(c.References)
}

// DecompressCommand возвращает argv распаковщика.
func (c *Config) DecompressCommand() []string {
	return decompress.Command(c.Decompressor)
}

// Validate проверяет значения, которые нельзя проверить при разборе.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Aligner) == "" {
		errs = append(errs, errors.New("aligner: must not be empty"))
	}
	if c.Markers.R1 == "" || c.Markers.R2 == "" {
		errs = append(errs, errors.New("markers: r1 and r2 must not be empty"))
	}
	if c.Markers.R1 == c.Markers.R2 {
		errs = append(errs, fmt.Errorf("markers: r1 and r2 must differ, both are %q", c.Markers.R1))
	}
	if c.Preset.Threads < 0 {
		errs = append(errs, fmt.Errorf("preset.threads: must not be negative, got %d", c.Preset.Threads))
	}
	if c.Preset.MinInsert > c.Preset.MaxInsert && c.Preset.MaxInsert > 0 {
		errs = append(errs, fmt.Errorf("preset: min_insert %d exceeds max_insert %d",
			c.Preset.MinInsert, c.Preset.MaxInsert))
	}
	return errors.Join(errs...)
}

// Loader читает конфигурацию через viper.
type Loader struct {
	v *viper.Viper
}

// NewLoader создаёт Loader со значениями по умолчанию и переменными окружения.
func NewLoader() *Loader {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// переменные, общие с остальными сервисами
	_ = v.BindEnv("database_url", envPrefix+"_DATABASE_URL", "DB_URL")
	_ = v.BindEnv("amqp_url", envPrefix+"_AMQP_URL", "RABBITMQ_URL")
	_ = v.BindEnv("log_level", envPrefix+"_LOG_LEVEL", "LOG_LEVEL")
	_ = v.BindEnv("log_format", envPrefix+"_LOG_FORMAT", "LOG_FORMAT")

	return &Loader{v: v}
}

// BindFlag привязывает флаг к ключу конфигурации.
// Флаг переопределяет файл и окружение, только если задан явно.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("bind %s: flag not defined", key)
	}
	return l.v.BindPFlag(key, flag)
}

// Load читает файл конфигурации и возвращает итоговые настройки.
//
// Если path пуст, файл ищется в стандартных местах; его отсутствие
// не считается ошибкой. Явно указанный, но отсутствующий файл — ошибка.
func (l *Loader) Load(path string) (*Config, error) {
	if path != "" {
		l.v.SetConfigFile(path)
	} else {
		l.v.SetConfigName(configName)
		l.v.SetConfigType("yaml")
		l.v.AddConfigPath(".")
		l.v.AddConfigPath("$HOME/.config")
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = l.v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("aligner", align.DefaultAligner)
	v.SetDefault("decompressor", decompress.DefaultCommand)
	v.SetDefault("references", map[string]string{})

	p := align.DefaultPreset()
	v.SetDefault("preset.local", p.Local)
	v.SetDefault("preset.sensitivity", p.Sensitivity)
	v.SetDefault("preset.no_unal", p.NoUnal)
	v.SetDefault("preset.no_mixed", p.NoMixed)
	v.SetDefault("preset.no_discordant", p.NoDiscordant)
	v.SetDefault("preset.quality_encoding", p.QualityEncoding)
	v.SetDefault("preset.min_insert", p.MinInsert)
	v.SetDefault("preset.max_insert", p.MaxInsert)
	v.SetDefault("preset.threads", p.Threads)

	v.SetDefault("markers.r1", pairing.DefaultMarkers.R1)
	v.SetDefault("markers.r2", pairing.DefaultMarkers.R2)

	// пустые значения нужны, чтобы AutomaticEnv видел ключи при Unmarshal
	v.SetDefault("database_url", "")
	v.SetDefault("amqp_url", "")
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("metrics.pushgateway", "")
	v.SetDefault("metrics.job", "pairalign")
	v.SetDefault("log_level", "INFO")
	v.SetDefault("log_format", "json")
}

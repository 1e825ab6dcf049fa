package cli

import (
	"github.com/spf13/cobra"

	"github.com/shaiso/pairalign/internal/config"
	"github.com/shaiso/pairalign/internal/telemetry"
)

// NewRootCmd создаёт корневую команду pairalign со всеми подкомандами.
func NewRootCmd(version string) *cobra.Command {
	var configPath string
	var jsonOutput bool
	var env *Env

	rootCmd := &cobra.Command{
		Use:           "pairalign",
		Short:         "pairalign — paired-end bowtie2 alignment with spike-in",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loader := config.NewLoader()
			if err := loader.BindFlag("log_level", cmd.Flags().Lookup("log-level")); err != nil {
				return err
			}

			cfg, err := loader.Load(configPath)
			if err != nil {
				return err
			}

			logger := telemetry.SetupLogger(telemetry.LoggerOptions{
				Level:  cfg.LogLevel,
				Format: cfg.LogFormat,
				Output: cmd.ErrOrStderr(),
			})
			if cfg.File != "" {
				logger.Debug("config loaded", "file", cfg.File)
			}

			env = &Env{Config: cfg, Logger: logger}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ./pairalign.yaml or $HOME/.config/pairalign.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: DEBUG, INFO, WARN, ERROR")

	// env создаётся в PersistentPreRunE до вызова RunE любой подкоманды
	envFn := func() *Env { return env }
	outputFn := func() *Output {
		return NewOutput(jsonOutput, rootCmd.OutOrStdout(), rootCmd.ErrOrStderr())
	}

	rootCmd.AddCommand(
		NewRunCmd(envFn, outputFn),
		NewReferencesCmd(envFn, outputFn),
		NewHistoryCmd(envFn, outputFn),
		NewWatchCmd(envFn, outputFn),
	)

	return rootCmd
}

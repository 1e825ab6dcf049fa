package cli

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shaiso/pairalign/internal/repo"
)

// errNoJournal — журнал не настроен.
var errNoJournal = errors.New("run journal is not configured, set database_url")

// NewHistoryCmd создаёт группу команд для просмотра журнала запусков.
func NewHistoryCmd(envFn func() *Env, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show journaled runs",
	}

	cmd.AddCommand(
		newHistoryListCmd(envFn, outputFn),
		newHistoryShowCmd(envFn, outputFn),
	)

	return cmd
}

func newHistoryListCmd(envFn func() *Env, outputFn func() *Output) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envFn()
			out := outputFn()

			journal, err := openJournal(cmd, env)
			if err != nil {
				return err
			}
			defer journal.Close()

			runs, err := journal.Runs.ListRecent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			return out.Render(runList(runs))
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of results")

	return cmd
}

func newHistoryShowCmd(envFn func() *Env, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Show a run and its commands",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envFn()
			out := outputFn()

			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid run id %q: %w", args[0], err)
			}

			journal, err := openJournal(cmd, env)
			if err != nil {
				return err
			}
			defer journal.Close()

			run, err := journal.Runs.GetByID(cmd.Context(), id)
			if err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return fmt.Errorf("run %s: %w", id, err)
				}
				return err
			}

			invs, err := journal.Invocations.ListByRunID(cmd.Context(), id)
			if err != nil {
				return err
			}

			return out.Render(&runDetail{Run: run, Invocations: invs})
		},
	}
}

func openJournal(cmd *cobra.Command, env *Env) (*repo.Journal, error) {
	if env.Config.DatabaseURL == "" {
		return nil, errNoJournal
	}
	return repo.OpenJournal(cmd.Context(), env.Config.DatabaseURL)
}

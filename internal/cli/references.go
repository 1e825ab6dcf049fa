package cli

import (
	"github.com/spf13/cobra"
)

// NewReferencesCmd создаёт команду вывода таблицы сборок.
func NewReferencesCmd(envFn func() *Env, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "references",
		Short: "List known reference builds and their bowtie2 indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envFn()
			out := outputFn()

			table := env.Config.ReferenceTable()
			builds := table.Builds()

			indexes := make(referenceList, 0, len(builds))
			for _, b := range builds {
				idx, err := table.Resolve(b)
				if err != nil {
					return err
				}
				indexes = append(indexes, idx)
			}

			return out.Render(indexes)
		},
	}
}

package cmd

import (
	"github.com/spf13/cobra"

	"snipgraph.dev/pkg/snipgraph/internal/domain"
	m "snipgraph.dev/pkg/snipgraph/internal/model"
)

// checkCmd represents the check command.
var checkCmd = newCheckCmd()

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <document>",
		Short: "Load a document and report every snippet",
		Long: `Load every module and snippet of a document into the engine and print each
snippet's state, exports, dependencies and error. Exits non-zero when a
snippet ends up errored.

` + documentHelp,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.Check(cmd.Context(), domain.CheckArgs{
				EngineArgs: engineArgs(),
				Path:       m.Path(args[0]),
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

package cmd

import (
	"github.com/spf13/cobra"

	"snipgraph.dev/pkg/snipgraph/internal/domain"
)

var scanRawFlag bool

// scanCmd represents the scan command.
var scanCmd = newScanCmd()

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <file|document>...",
		Short: "Print the declarations found in snippet files",
		Long: `Print, as YAML, the exports, top-level declarations, default export
parameters and import bindings found in each file. Documents are scanned
snippet by snippet. Files are transpiled first unless --raw is set.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.Scan(cmd.Context(), domain.ScanArgs{
				Paths: parsePaths(args),
				Raw:   scanRawFlag,
			})
		},
	}

	cmd.Flags().BoolVar(&scanRawFlag, rawFlagName, false, "scan files as written, without transpiling")

	return cmd
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

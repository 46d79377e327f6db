package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"snipgraph.dev/pkg/snipgraph/internal/domain"
	m "snipgraph.dev/pkg/snipgraph/internal/model"
)

var buildOutputFlag string

// buildCmd represents the build command.
var buildCmd = newBuildCmd()

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <document>",
		Short: "Write every snippet's transformed code to disk",
		Long: `Load a document and write each snippet, with its hoisted imports rewritten
to the files of the snippets it depends on, into the output directory
together with a manifest.yaml.

` + documentHelp,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.Build(cmd.Context(), domain.BuildArgs{
				EngineArgs: engineArgs(),
				Path:       m.Path(args[0]),
				Output:     m.Path(viper.GetString(outputConfigKey)),
			})
		},
	}

	cmd.Flags().StringVarP(&buildOutputFlag, outputFlagName, "o", viper.GetString(outputConfigKey), "output directory for built snippets")
	bindFlagToConfig(cmd.Flags().Lookup(outputFlagName), outputConfigKey)

	return cmd
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

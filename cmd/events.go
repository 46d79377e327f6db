package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"snipgraph.dev/pkg/snipgraph/internal/domain"
	m "snipgraph.dev/pkg/snipgraph/internal/model"
)

// eventsCmd represents the events command.
var eventsCmd = newEventsCmd()

func newEventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "events [journal]",
		Short: "Print the events recorded by watch",
		Long:  "Print the engine events a watch session recorded. Without an argument the configured watch.journal is read.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			journal := viper.GetString(journalConfigKey)
			if len(args) == 1 {
				journal = args[0]
			}

			return workflow.Events(cmd.Context(), domain.EventsArgs{Journal: m.Path(journal)})
		},
	}
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}

package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"snipgraph.dev/pkg/snipgraph/internal/domain"
	m "snipgraph.dev/pkg/snipgraph/internal/model"
)

var watchDebounceFlag time.Duration
var watchJournalFlag string

// watchCmd represents the watch command.
var watchCmd = newWatchCmd()

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Keep a snippet directory wired up while it changes",
		Long: `Load a directory of snippet files and re-evaluate snippets as files are
written, renamed or removed. Engine events are recorded to a journal that
the events command prints.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return workflow.Watch(ctx, domain.WatchArgs{
				EngineArgs: engineArgs(),
				Dir:        m.Path(args[0]),
				Debounce:   viper.GetDuration(debounceConfigKey),
				Journal:    m.Path(viper.GetString(journalConfigKey)),
			})
		},
	}

	cmd.Flags().DurationVar(&watchDebounceFlag, debounceFlagName, viper.GetDuration(debounceConfigKey), "quiet period before a burst of file events is applied")
	bindFlagToConfig(cmd.Flags().Lookup(debounceFlagName), debounceConfigKey)

	cmd.Flags().StringVar(&watchJournalFlag, journalFlagName, viper.GetString(journalConfigKey), `event journal file ("" disables the journal)`)
	bindFlagToConfig(cmd.Flags().Lookup(journalFlagName), journalConfigKey)

	return cmd
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

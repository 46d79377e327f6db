// Package cmd provides the root command and CLI setup for snipgraph.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"snipgraph.dev/pkg/snipgraph/internal/adapter"
	"snipgraph.dev/pkg/snipgraph/internal/controller"
	"snipgraph.dev/pkg/snipgraph/internal/domain"
	m "snipgraph.dev/pkg/snipgraph/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var documentStore adapter.DocumentStore
var transpiler adapter.Transpiler
var workflow domain.Workflow
var ui controller.UI

var strictFlag bool
var maxPassesFlag int
var resolveFlag map[string]string
var verboseFlag bool
var logFileFlag string

func init() {
	configureRootFlags(rootCmd)

	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	documentStore = adapter.NewLocalDocumentStore(fsAdapter)

	var err error

	transpiler, err = newTranspiler()
	cobra.CheckErr(err)

	workflow = domain.NewWorkflow(
		fsAdapter,
		documentStore,
		ui,
		transpiler,
	)
}

const documentHelp = `A document is either a YAML file with "modules" and "snippets" lists of
{id, code} entries, or a directory of .js/.jsx/.ts/.tsx/.mjs snippet files
with an optional modules.yaml next to them.`

const rootLongDescription = `Snipgraph keeps a set of JavaScript and TypeScript snippets wired together.
Every name a snippet exports is imported into every other snippet, module
imports are hoisted in front of each snippet, and the dependency graph
between snippets is recomputed on every change.

` + documentHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "snipgraph",
		Short:         "Snippet dependency engine for JavaScript and TypeScript",
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(logFileFlag, verboseFlag)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVar(&strictFlag, strictFlagName, viper.GetBool(strictConfigKey), "stop the engine at the first snippet error")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(strictFlagName), strictConfigKey)

	cmd.PersistentFlags().IntVar(&maxPassesFlag, maxPassesFlagName, viper.GetInt(maxPassesConfigKey), "maximum recompute passes per change (0 picks a limit from the snippet count)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(maxPassesFlagName), maxPassesConfigKey)

	cmd.PersistentFlags().StringToStringVar(&resolveFlag, resolveFlagName, nil, "rewrite a module specifier in hoisted imports, e.g. react=https://esm.sh/react (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(resolveFlagName), resolveConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", false, "log at debug level")
	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, "", "log file (default from log.filename)")
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

func newTranspiler() (adapter.Transpiler, error) {
	esbuild := adapter.NewEsbuildTranspiler(adapter.EsbuildOptions{
		JSX:         adapter.JSXMode(viper.GetString(jsxConfigKey)),
		JSXFactory:  viper.GetString(jsxFactoryConfigKey),
		JSXFragment: viper.GetString(jsxFragmentConfigKey),
	})

	size := viper.GetInt(cacheSizeConfigKey)
	if size <= 0 {
		return esbuild, nil
	}

	cached, err := adapter.NewCachedTranspiler(esbuild, size)
	if err != nil {
		return nil, fmt.Errorf("transpile cache: %w", err)
	}

	return cached, nil
}

func engineArgs() domain.EngineArgs {
	return domain.EngineArgs{
		Strict:    viper.GetBool(strictConfigKey),
		MaxPasses: viper.GetInt(maxPassesConfigKey),
		Resolve:   viper.GetStringMapString(resolveConfigKey),
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}

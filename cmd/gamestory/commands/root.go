// Package commands implements the gamestory CLI subcommands.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gamestory/pkg/version"
)

const (
	binaryName = "gamestory"

	configFlag     = "config"
	logLevelFlag   = "log-level"
	logJSONFlag    = "log-json"
	storyFlag      = "story"
	themeFlag      = "theme"
	jsonFlag       = "json"
	noColorFlag    = "no-color"
	outputFlag     = "output"
	outputShort    = "o"
	addrFlag       = "addr"
	maxDatasetArgs = 1
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
	logJSON    bool
	storyPath  string
}

// NewRootCommand builds the gamestory command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   binaryName,
		Short: "Scrollytelling story of video game releases on Steam",
		Long: `gamestory turns a Steam games dataset into a four-scene narrative:
an overview of releases per year and three year-pair comparisons of
distinct developers and publishers.

Commands:
  render    Write the story as static HTML pages
  summary   Print the aggregations as terminal tables
  navigate  Replay navigation actions against the scene state machine
  serve     Serve the interactive story over HTTP
  mcp       Expose the aggregations as MCP tools on stdio`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, configFlag, "", "config file (default .gamestory.yaml in CWD or $HOME)")
	flags.StringVar(&opts.logLevel, logLevelFlag, "", "log level: debug, info, warn, error")
	flags.BoolVar(&opts.logJSON, logJSONFlag, false, "emit JSON logs")
	flags.StringVar(&opts.storyPath, storyFlag, "", "story YAML file (default embedded story)")

	rootCmd.AddCommand(
		newRenderCommand(opts),
		newSummaryCommand(opts),
		newNavigateCommand(opts),
		newServeCommand(opts),
		newMCPCommand(opts),
		newVersionCommand(),
	)

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String(binaryName))
		},
	}
}

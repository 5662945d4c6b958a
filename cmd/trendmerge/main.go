// Package main provides the entry point for the trendmerge CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/trendmerge/cmd/trendmerge/commands"
	"github.com/Sumatoshi-tech/trendmerge/pkg/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "trendmerge",
		Short: "Merge search-interest exports into monthly trend tables",
		Long: `trendmerge ingests time_series_*.csv popularity exports, joins them on
their common timestamps and writes wide and long tables plus a chart.

Commands:
  run       Merge the exports found in the input directory`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "trendmerge %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}

// ABOUTME: Root CLI command with global flags shared by all subcommands
// ABOUTME: Wires serve, route, and version under one cobra tree
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose bool
	quiet   bool
)

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aqroute",
		Short: "Air quality query routing service",
		Long: `aqroute routes natural-language air quality questions to the
right backend: structured report APIs for precise data questions,
a general query backend for everything else.

Run the HTTP service with "aqroute serve", or classify a single
question offline with "aqroute route".`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewRouteCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

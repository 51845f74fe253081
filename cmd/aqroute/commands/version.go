// ABOUTME: Version command printing the build stamp
// ABOUTME: Values are injected at link time through SetVersion
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Build stamp, overwritten by SetVersion before any command runs
var buildVersion, buildCommit, buildDate = "dev", "none", "unknown"

// SetVersion records the release stamp (called from main)
func SetVersion(version, commit, date string) {
	buildVersion, buildCommit, buildDate = version, commit, date
}

// NewVersionCmd creates the version command
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "aqroute %s (commit %s, built %s)\n",
				buildVersion, buildCommit, buildDate)
		},
	}
}

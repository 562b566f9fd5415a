package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bixoto/bigbuy-go/bigbuy"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// SetVersion sets the build information reported by the version command
func SetVersion(v, built string) {
	version = v
	buildTime = built
	rootCmd.Version = v
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// No config or client is needed.
	PersistentPreRunE:  func(cmd *cobra.Command, args []string) error { return nil },
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "bigbuy %s (built %s, client %s)\n", version, buildTime, bigbuy.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

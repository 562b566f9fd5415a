package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// pingCmd represents the ping command
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Test the connection to BigBuy",
	Long:  `Test the app key against the BigBuy API and display basic information.`,
	RunE:  runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
}

func runPing(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Testing connection to BigBuy (%s)...\n", cfg.BigBuy.Mode)

	ctx := cmd.Context()
	languages, err := client.GetLanguages(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to get languages: %w", err)
	}
	fmt.Fprintln(out, "✓ Connection successful!")

	carriers, err := client.GetCarriers(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to get carriers: %w", err)
	}

	fmt.Fprintf(out, "\nBigBuy Statistics:\n")
	fmt.Fprintf(out, "- Languages: %d\n", len(languages))
	fmt.Fprintf(out, "- Carriers: %d\n", len(carriers))
	fmt.Fprintf(out, "- Retry on rate limit: %s\n", boolToStatus(cfg.BigBuy.RetryOnRateLimit))
	fmt.Fprintf(out, "- Circuit breaker: %s\n", boolToStatus(cfg.BigBuy.CircuitBreaker.Enabled))

	if presets := filters.ListFilters(); len(presets) > 0 {
		fmt.Fprintf(out, "\nFilter presets:\n")
		for _, name := range presets {
			f, _ := filters.GetFilter(name)
			fmt.Fprintf(out, "  • %s: %s\n", name, f.Expression())
		}
	}

	return nil
}

func boolToStatus(b bool) string {
	if b {
		return "Enabled"
	}
	return "Disabled"
}

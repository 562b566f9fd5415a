package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// shippingCmd represents the shipping command
var shippingCmd = &cobra.Command{
	Use:   "shipping",
	Short: "Query BigBuy shipping costs",
}

var shippingLowestCmd = &cobra.Command{
	Use:   "lowest <country> [reference]",
	Short: "Show the lowest shipping cost to a country",
	Long: `Show the lowest shipping cost of one product reference to a country, or
of every product when no reference is given. Country is an ISO code.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runShippingLowest,
}

func init() {
	rootCmd.AddCommand(shippingCmd)
	shippingCmd.AddCommand(shippingLowestCmd)
}

func runShippingLowest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	country := strings.ToUpper(args[0])

	if len(args) == 2 {
		cost, err := client.GetLowestShippingCostByCountry(ctx, args[1], country)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), cost)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s to %s: %s EUR with %s\n", args[1], country, cost.ShippingCost, cost.Carrier.Name)
		return nil
	}

	costs, err := client.GetLowestShippingCostsByCountry(ctx, country)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), costs)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REFERENCE\tCOST\tCARRIER")
	for _, c := range costs {
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.Reference, c.ShippingCost, c.Carrier.Name)
	}
	return w.Flush()
}

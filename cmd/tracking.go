package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// trackingCmd represents the tracking command
var trackingCmd = &cobra.Command{
	Use:   "tracking <order-id...>",
	Short: "Show the trackings of orders",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTracking,
}

func init() {
	rootCmd.AddCommand(trackingCmd)
}

func runTracking(cmd *cobra.Command, args []string) error {
	trackings, err := client.GetTrackingOrders(cmd.Context(), args, true)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), trackings)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER\tCARRIER\tTRACKING NUMBER\tSTATUS")
	for i, t := range trackings {
		if t == nil || len(t.Trackings) == 0 {
			fmt.Fprintf(w, "%s\t-\t-\tno tracking yet\n", args[i])
			continue
		}
		for _, tr := range t.Trackings {
			fmt.Fprintf(w, "%s\t%v\t%v\t%v\n", args[i], field(tr, "carrier", "name"), field(tr, "trackingNumber"), field(tr, "statusDescription"))
		}
	}
	return w.Flush()
}

// field digs a value out of nested records, or "-" when it is missing.
func field(record map[string]any, path ...string) any {
	var v any = record
	for _, key := range path {
		m, ok := v.(map[string]any)
		if !ok {
			return "-"
		}
		if v, ok = m[key]; !ok || v == nil {
			return "-"
		}
	}
	return v
}

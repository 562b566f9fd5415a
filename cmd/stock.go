package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	batchSize int
	workers   int
)

// stockCmd represents the stock command
var stockCmd = &cobra.Command{
	Use:   "stock <sku...>",
	Short: "Show the stock of products by SKU",
	Long: `Look up the stock of any number of SKUs. SKUs are sent in batches,
several batches at a time, as set by the concurrency section of the config.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runStock,
}

func init() {
	rootCmd.AddCommand(stockCmd)

	stockCmd.Flags().IntVar(&batchSize, "batch-size", 0, "SKUs per request (default from config)")
	stockCmd.Flags().IntVar(&workers, "workers", 0, "concurrent requests (default from config)")
}

func runStock(cmd *cobra.Command, args []string) error {
	size, n := cfg.Concurrency.BatchSize, cfg.Concurrency.Workers
	if batchSize > 0 {
		size = batchSize
	}
	if workers > 0 {
		n = workers
	}

	stock, err := client.GetProductsStockBySKUs(cmd.Context(), args, size, n)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), stock)
	}

	found := make(map[string]bool, len(stock))
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SKU\tQUANTITY\tWAREHOUSES")
	for _, ps := range stock {
		found[ps.SKU] = true
		warehouses := make([]string, 0, len(ps.Stocks))
		for _, s := range ps.Stocks {
			warehouses = append(warehouses, fmt.Sprintf("%d:%d", s.Warehouse, s.Quantity))
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", ps.SKU, ps.TotalQuantity(), strings.Join(warehouses, " "))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	var missing []string
	for _, sku := range args {
		if !found[sku] {
			missing = append(missing, sku)
		}
	}
	if len(missing) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "No stock returned for: %s\n", strings.Join(missing, ", "))
	}
	return nil
}

package bigbuy

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Batching defaults for stock lookups.
const (
	DefaultStockBatchSize = 100
	DefaultStockWorkers   = 4
)

// GetProductsStockBySKUs looks up the stock of any number of SKUs by
// splitting them into batches of batchSize and querying up to workers
// batches at a time. Results keep the order of the batches. The first
// failing batch cancels the others and its error is returned.
func (c *Client) GetProductsStockBySKUs(ctx context.Context, skus []string, batchSize, workers int) ([]ProductStock, error) {
	if len(skus) == 0 {
		return nil, nil
	}
	if batchSize <= 0 {
		batchSize = DefaultStockBatchSize
	}
	if workers <= 0 {
		workers = DefaultStockWorkers
	}

	batches := make([][]string, 0, (len(skus)+batchSize-1)/batchSize)
	for start := 0; start < len(skus); start += batchSize {
		batches = append(batches, skus[start:min(start+batchSize, len(skus))])
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	// Each goroutine writes only its own slot.
	results := make([][]ProductStock, len(batches))
	for i, batch := range batches {
		g.Go(func() error {
			stock, err := c.GetProductsStockByReference(ctx, batch)
			if err != nil {
				return fmt.Errorf("stock batch %d/%d: %w", i+1, len(batches), err)
			}
			results[i] = stock
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Int("skus", len(skus)).
		Int("batches", len(batches)).
		Msg("Retrieved product stock from BigBuy")

	var all []ProductStock
	for _, stock := range results {
		all = append(all, stock...)
	}
	return all, nil
}

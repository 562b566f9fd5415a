package bigbuy

import (
	"context"
	"encoding/json"
	"net/url"
)

// API defines the main BigBuy operations, so callers can substitute a fake
type API interface {
	// Dispatch sends a raw request and classifies the response
	Dispatch(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error)

	// GetProductsStockBySKUs looks up stock in concurrent batches
	GetProductsStockBySKUs(ctx context.Context, skus []string, batchSize, workers int) ([]ProductStock, error)

	// GetLowestShippingCostByCountry returns the cheapest shipping for one product
	GetLowestShippingCostByCountry(ctx context.Context, reference, countryCode string) (*ShippingCost, error)

	// GetLowestShippingCostsByCountry returns the cheapest shipping for every product
	GetLowestShippingCostsByCountry(ctx context.Context, countryCode string) ([]ShippingCost, error)

	// CheckOrder simulates an order
	CheckOrder(ctx context.Context, order *Order) (Record, error)

	// CreateOrder submits an order
	CreateOrder(ctx context.Context, order *Order) (*CreatedOrder, error)

	// GetTrackingOrders returns the trackings of several orders
	GetTrackingOrders(ctx context.Context, orderIDs []string, matchIDs bool) ([]*Tracking, error)
}

var _ API = (*Client)(nil)

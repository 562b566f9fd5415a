package bigbuy

import (
	"context"
	"net/url"
)

// GetCarriers lists the shipping carriers.
func (c *Client) GetCarriers(ctx context.Context, params url.Values) ([]Record, error) {
	return c.getRecords(ctx, "shipping/carriers", params)
}

// GetShippingOrder returns the available shipping options, with weight in
// kg and cost in euros, for a prospective order.
func (c *Client) GetShippingOrder(ctx context.Context, req *ShippingRequest) ([]Record, error) {
	var options []Record
	if err := c.postJSON(ctx, "shipping/orders", orderEnvelope[*ShippingRequest]{Order: req}, &options); err != nil {
		return nil, err
	}
	return options, nil
}

// GetLowestShippingCostByCountry returns the lowest shipping cost of one
// product reference sent to countryCode.
func (c *Client) GetLowestShippingCostByCountry(ctx context.Context, reference, countryCode string) (*ShippingCost, error) {
	payload := map[string]any{
		"product_country": map[string]string{
			"reference":      reference,
			"countryIsoCode": countryCode,
		},
	}
	var cost ShippingCost
	if err := c.postJSON(ctx, "shipping/lowest-shipping-cost-by-country", payload, &cost); err != nil {
		return nil, err
	}
	return &cost, nil
}

// GetLowestShippingCostsByCountry returns the lowest shipping cost of every
// product sent to countryCode.
func (c *Client) GetLowestShippingCostsByCountry(ctx context.Context, countryCode string) ([]ShippingCost, error) {
	var costs []ShippingCost
	if err := c.getJSON(ctx, "shipping/lowest-shipping-costs-by-country/"+url.PathEscape(countryCode), nil, &costs); err != nil {
		return nil, err
	}
	return costs, nil
}

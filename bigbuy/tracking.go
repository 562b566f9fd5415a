package bigbuy

import (
	"context"
	"net/url"
)

// GetTrackingCarriers lists the carriers that provide tracking.
func (c *Client) GetTrackingCarriers(ctx context.Context, params url.Values) ([]Record, error) {
	return c.getRecords(ctx, "tracking/carriers", params)
}

// GetTrackingOrder returns the trackings of one order.
func (c *Client) GetTrackingOrder(ctx context.Context, orderID string, params url.Values) ([]Record, error) {
	return c.getRecords(ctx, "tracking/order/"+url.PathEscape(orderID), params)
}

// GetTrackingOrders returns the trackings of the given orders.
//
// When matchIDs is true the result has the same length as orderIDs, with a
// nil entry for each order BigBuy has no tracking for. Otherwise the result
// follows BigBuy's order and may be shorter.
func (c *Client) GetTrackingOrders(ctx context.Context, orderIDs []string, matchIDs bool) ([]*Tracking, error) {
	type orderRef struct {
		ID string `json:"id"`
	}
	refs := make([]orderRef, 0, len(orderIDs))
	for _, id := range orderIDs {
		refs = append(refs, orderRef{ID: id})
	}
	payload := map[string]any{
		"track": map[string]any{"orders": refs},
	}

	var trackings []*Tracking
	if err := c.postJSON(ctx, "tracking/orders", payload, &trackings); err != nil {
		return nil, err
	}
	if !matchIDs {
		return trackings, nil
	}

	byID := make(map[string]*Tracking, len(trackings))
	for _, t := range trackings {
		if t != nil {
			byID[t.ID.String()] = t
		}
	}
	matched := make([]*Tracking, len(orderIDs))
	for i, id := range orderIDs {
		matched[i] = byID[id]
	}
	return matched, nil
}

package bigbuy

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// GetOrderAddresses returns the shipping address structure for new orders.
func (c *Client) GetOrderAddresses(ctx context.Context, params url.Values) (Record, error) {
	return c.getRecord(ctx, "order/addresses/new", params)
}

// GetOrderCarriers returns the carriers available for new orders.
func (c *Client) GetOrderCarriers(ctx context.Context, params url.Values) (Record, error) {
	return c.getRecord(ctx, "order/carriers/new", params)
}

// CheckOrder simulates an order and returns the total to be paid.
func (c *Client) CheckOrder(ctx context.Context, order *Order) (Record, error) {
	if order == nil {
		return nil, fmt.Errorf("order is required")
	}
	var result Record
	if err := c.postJSON(ctx, "order/check", orderEnvelope[*Order]{Order: order}, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// CreateOrder submits an order. BigBuy answers with an empty body and the
// new order's URL in the Location header.
func (c *Client) CreateOrder(ctx context.Context, order *Order) (*CreatedOrder, error) {
	if order == nil {
		return nil, fmt.Errorf("order is required")
	}
	resp, _, err := c.dispatch(ctx, http.MethodPost, "order/create", nil, orderEnvelope[*Order]{Order: order})
	if err != nil {
		return nil, err
	}

	created := newCreatedOrder(resp.Header.Get("Location"))
	c.logger.Info().
		Str("internal_reference", order.InternalReference).
		Str("order_id", created.ID).
		Msg("Created BigBuy order")
	return created, nil
}

// GetOrderByCustomerReference gets an order by the caller's internal reference.
func (c *Client) GetOrderByCustomerReference(ctx context.Context, reference string) (Record, error) {
	return c.getRecord(ctx, "order/reference/"+url.PathEscape(reference), nil)
}

// GetOrderByID gets an order.
func (c *Client) GetOrderByID(ctx context.Context, orderID string, params url.Values) (Record, error) {
	if orderID == "" {
		return nil, fmt.Errorf("order ID is required")
	}
	return c.getRecord(ctx, "order/"+url.PathEscape(orderID), params)
}

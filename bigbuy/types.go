package bigbuy

import (
	"encoding/json"
	"path"
	"strings"
)

// Record is an untyped BigBuy catalog object. Most catalog endpoints return
// wide, loosely specified objects, so they are left as JSON maps.
type Record map[string]any

// Stock is the stock of a product in one warehouse.
type Stock struct {
	Quantity        int `json:"quantity"`
	MinHandlingDays int `json:"minHandlingDays"`
	MaxHandlingDays int `json:"maxHandlingDays"`
	Warehouse       int `json:"warehouse"`
}

// ProductStock is an entry of the stock-by-reference endpoint.
type ProductStock struct {
	ID     int64   `json:"id"`
	SKU    string  `json:"sku"`
	Stocks []Stock `json:"stocks"`
}

// TotalQuantity sums the stock over all warehouses.
func (ps *ProductStock) TotalQuantity() int {
	total := 0
	for _, s := range ps.Stocks {
		total += s.Quantity
	}
	return total
}

// Carrier identifies a shipping carrier.
type Carrier struct {
	ID   json.Number `json:"id"`
	Name string      `json:"name"`
}

// ShippingCost is the lowest shipping cost of a product to a country.
type ShippingCost struct {
	Reference    string      `json:"reference,omitempty"`
	ShippingCost json.Number `json:"shippingCost"`
	Carrier      Carrier     `json:"carrier"`
}

// Delivery is the destination of a shipping quote.
type Delivery struct {
	IsoCountry string `json:"isoCountry"`
	Postcode   string `json:"postcode"`
}

// OrderProduct is one order line.
type OrderProduct struct {
	Reference string `json:"reference"`
	Quantity  int    `json:"quantity"`
}

// ShippingRequest asks for the shipping options of a prospective order.
type ShippingRequest struct {
	Delivery Delivery       `json:"delivery"`
	Products []OrderProduct `json:"products"`
}

// CarrierChoice names an acceptable carrier for an order.
type CarrierChoice struct {
	Name string `json:"name"`
}

// Address is an order shipping address.
type Address struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Country     string `json:"country"`
	Postcode    string `json:"postcode"`
	Town        string `json:"town"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Comment     string `json:"comment"`
	VatNumber   string `json:"vatNumber,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
}

// Order is the payload of the order check and create endpoints.
type Order struct {
	InternalReference string          `json:"internalReference"`
	Language          string          `json:"language"`
	PaymentMethod     string          `json:"paymentMethod"`
	CashOnDelivery    *float64        `json:"cashOnDelivery,omitempty"`
	Carriers          []CarrierChoice `json:"carriers"`
	ShippingAddress   Address         `json:"shippingAddress"`
	Products          []OrderProduct  `json:"products"`
	DateAdd           string          `json:"dateAdd,omitempty"`
}

// orderEnvelope is how BigBuy expects orders to be wrapped.
type orderEnvelope[T any] struct {
	Order T `json:"order"`
}

// CreatedOrder is the result of a successful order creation.
type CreatedOrder struct {
	// Location is the Location header of the response.
	Location string
	// ID is the order ID taken from Location; empty when it was missing.
	ID string
}

func newCreatedOrder(location string) *CreatedOrder {
	co := &CreatedOrder{Location: location}
	if location != "" {
		co.ID = path.Base(strings.TrimRight(location, "/"))
		co.ID = strings.TrimSuffix(co.ID, ".json")
	}
	return co
}

// Tracking holds the trackings of one order.
type Tracking struct {
	ID        json.Number `json:"id"`
	Trackings []Record    `json:"trackings"`
}

// Package bigbuy provides a client for the BigBuy dropshipping REST API.
//
// Most of the package maps BigBuy endpoints to methods. The part worth
// reading is how responses are classified: BigBuy reports failures in
// several shapes, some of them malformed, and the client turns every
// response into either a payload or exactly one typed error.
//
// # Usage
//
//	logger := zerolog.New(os.Stdout)
//	client, err := bigbuy.NewClient(
//		"your-app-key",
//		logger,
//		bigbuy.WithMode(bigbuy.ModeProduction),
//		bigbuy.WithRetryOnRateLimit(true),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	stock, err := client.GetProductsStockByReference(ctx, []string{"S5001344"})
//
// # Error Handling
//
// Failed responses produce one of:
//
//   - ValidationError: the payload was rejected; Fields maps dotted field
//     paths such as "shippingAddress.lastName" to messages
//   - ProductError: some referenced SKUs are invalid or inactive
//   - RateLimitError: the caller is throttled; ResetTime tells until when
//   - ResponseError: BigBuy declared an error code without more detail,
//     including 409 codes sent with HTTP 200
//   - ServerError: a 5xx, a 200 whose body embeds a 5xx response, or an
//     unparseable body
//
// Each type can be matched with errors.As, or with errors.Is against its
// sentinel (ErrValidation, ErrProduct, ...). All of them match ErrAPI.
//
//	var rateErr *bigbuy.RateLimitError
//	if errors.As(err, &rateErr) {
//		if wait, ok := rateErr.ResetTimedelta(time.Now()); ok {
//			// back off for wait
//		}
//	}
//
// # Rate Limits
//
// With WithRetryOnRateLimit(true), a request that is rate limited with a
// reset time in the future is retried once after that time. A second rate
// limit is returned to the caller. The wait honours context cancellation.
package bigbuy

package client

import (
	"context"
	"encoding/json"
	"net/http"
)

// HTTPDoer is the interface for executing HTTP requests.
// Both httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// ProductStatus classifies the outcome of a product lookup.
type ProductStatus int

const (
	// ProductFound means the product service returned a payload.
	ProductFound ProductStatus = iota
	// ProductNotFound means the product service answered with its
	// not-found signal.
	ProductNotFound
	// ProductError means the product service answered with a non-2xx
	// status other than not-found.
	ProductError
)

// ProductResult is the status-classified outcome of a product lookup. Payload
// is the raw product document when Status is ProductFound; the caller
// validates and normalizes it.
type ProductResult struct {
	Status  ProductStatus
	Payload json.RawMessage
}

// ProductClient fetches raw product data from the product service.
// A non-nil error means the call itself failed (transport level); remote
// not-found and remote rejection are reported through ProductResult.Status.
type ProductClient interface {
	GetProduct(ctx context.Context, productID string) (*ProductResult, error)
}

// TransferLineItem is one (product, quantity) pair sent to the cart service.
type TransferLineItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CartClient pushes line items into a user's cart and returns the resulting
// cart line items as decoded by CartResponse.
type CartClient interface {
	AddToCart(ctx context.Context, userID string, items []TransferLineItem) (*CartResponse, error)
}

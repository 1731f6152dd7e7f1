package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/VishalYadav30301/wishlist-service/pkg/httpclient"
)

// CartHTTPClient implements CartClient against the cart service's REST API.
type CartHTTPClient struct {
	httpClient HTTPDoer
	baseURL    string
}

// NewCartHTTPClient creates an HTTP cart client.
func NewCartHTTPClient(httpClient HTTPDoer, baseURL string) *CartHTTPClient {
	return &CartHTTPClient{
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

// addToCartRequest is the wire shape of a cart transfer request.
type addToCartRequest struct {
	Items []TransferLineItem `json:"items"`
}

// AddToCart pushes line items into the user's cart. A non-2xx status from the
// cart service is translated through the standard downstream error mapping;
// a 2xx response body is decoded into a CartResponse for the caller's
// validation gate.
func (c *CartHTTPClient) AddToCart(ctx context.Context, userID string, items []TransferLineItem) (*CartResponse, error) {
	body, err := json.Marshal(addToCartRequest{Items: items})
	if err != nil {
		return nil, fmt.Errorf("marshal cart request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/cart/items", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create cart request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", userID)

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("call cart service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, httpclient.ParseResponseError(resp, "cart")
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read cart response: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		// An empty body and an explicit null are the same "no response"
		// signal to the caller.
		raw = []byte("null")
	}

	var cartResp CartResponse
	if err := json.Unmarshal(raw, &cartResp); err != nil {
		return nil, fmt.Errorf("decode cart response: %w", err)
	}

	return &cartResp, nil
}

package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"context"
)

// ProductHTTPClient implements ProductClient against the product service's
// REST API.
type ProductHTTPClient struct {
	httpClient HTTPDoer
	baseURL    string
}

// NewProductHTTPClient creates an HTTP product client.
func NewProductHTTPClient(httpClient HTTPDoer, baseURL string) *ProductHTTPClient {
	return &ProductHTTPClient{
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

// productEnvelope mirrors the product service's response envelope.
type productEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// GetProduct fetches the raw product document by ID. HTTP 404 is reported as
// ProductNotFound; any other non-2xx status as ProductError. Transport-level
// failures are returned as errors.
func (c *ProductHTTPClient) GetProduct(ctx context.Context, productID string) (*ProductResult, error) {
	reqURL := c.baseURL + "/api/v1/products/" + url.PathEscape(productID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create product request: %w", err)
	}

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("call product service: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return &ProductResult{Status: ProductNotFound}, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		_, _ = io.Copy(io.Discard, resp.Body)
		return &ProductResult{Status: ProductError}, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read product response: %w", err)
	}

	// Unwrap the standard envelope when present; fall back to the raw body
	// so the client also works against services that return bare documents.
	var envelope productEnvelope
	if json.Unmarshal(body, &envelope) == nil && len(envelope.Data) > 0 {
		return &ProductResult{Status: ProductFound, Payload: envelope.Data}, nil
	}

	return &ProductResult{Status: ProductFound, Payload: body}, nil
}

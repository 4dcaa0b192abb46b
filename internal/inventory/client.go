package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/joao-fontenele/orderflow-placement/internal/domain"
)

// Checker is satisfied by Client and by the decorators in this package.
type Checker interface {
	CheckStock(ctx context.Context, skuCodes []string) ([]domain.InventoryAvailability, error)
}

var ErrMalformedResponse = errors.New("malformed inventory response")

// Client queries the inventory service over HTTP. The time budget of a call
// is the timeout of the supplied http.Client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) CheckStock(ctx context.Context, skuCodes []string) ([]domain.InventoryAvailability, error) {
	query := url.Values{}
	for _, code := range skuCodes {
		query.Add("sku_code", code)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/inventory?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create inventory request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("inventory service returned status %d", resp.StatusCode)
	}

	var availability []domain.InventoryAvailability
	if err := json.NewDecoder(resp.Body).Decode(&availability); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if availability == nil {
		return nil, fmt.Errorf("%w: null body", ErrMalformedResponse)
	}

	return availability, nil
}

// Package catalog is the client for the catalog collaborator. The core only
// reads from it, and only when a line is first added to a cart.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
)

var ErrProductNotFound = errors.New("product not found")

type SizeStock struct {
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

type Product struct {
	ID             string      `json:"productId"`
	Name           string      `json:"name"`
	Images         []string    `json:"images"`
	Price          float64     `json:"price"`
	AvailableSizes []SizeStock `json:"availableSizes"`
}

type Lookup interface {
	GetProduct(ctx context.Context, productID string) (*Product, error)
}

type Client struct {
	baseURL string
	httpc   *http.Client
	cb      *gobreaker.CircuitBreaker[*Product]
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 5 * time.Second},
		cb: gobreaker.NewCircuitBreaker[*Product](gobreaker.Settings{
			Name:    "catalog",
			Timeout: 30 * time.Second,
			// A missing product is an answer, not an outage.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, ErrProductNotFound)
			},
		}),
	}
}

func (c *Client) GetProduct(ctx context.Context, productID string) (*Product, error) {
	return c.cb.Execute(func() (*Product, error) {
		return c.fetch(ctx, productID)
	})
}

func (c *Client) fetch(ctx context.Context, productID string) (*Product, error) {
	endpoint := c.baseURL + "/api/products/" + url.PathEscape(productID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call catalog: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrProductNotFound
	default:
		return nil, fmt.Errorf("catalog responded %d", resp.StatusCode)
	}

	var p Product
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode product: %w", err)
	}
	if p.ID == "" {
		p.ID = productID
	}
	return &p, nil
}

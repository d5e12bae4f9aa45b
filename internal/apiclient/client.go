// Package apiclient is the storefront's HTTP client for the catalog and cart API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ajinkyamaster/storefront/internal/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

var (
	ErrFetchProducts = errors.New("failed to fetch products")
	ErrSubmitCart    = errors.New("failed to submit cart")
)

// StatusError is returned when the API answers with a non-2xx status.
// Message is the API's own message, if it sent one.
type StatusError struct {
	Op         error
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%v: status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%v: status %d", e.Op, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return e.Op
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client for the API at baseURL. Requests carry no timeout
// of their own; callers bound them with the context.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		logger:     logger,
	}
}

// BaseURL is the address image references are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type productRecord struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
}

// FetchProducts lists the catalog. Every failure wraps ErrFetchProducts.
func (c *Client) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/products", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchProducts, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("catalog request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFetchProducts, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{Op: ErrFetchProducts, StatusCode: resp.StatusCode, Message: readMessage(resp.Body)}
		c.logger.Warn("catalog request rejected", zap.Int("status", resp.StatusCode), zap.String("message", statusErr.Message))
		return nil, statusErr
	}

	var records []productRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		c.logger.Warn("decode catalog response", zap.Error(err))
		return nil, fmt.Errorf("%w: decode: %w", ErrFetchProducts, err)
	}

	products := make([]domain.Product, len(records))
	for i, r := range records {
		products[i] = domain.Product{
			ID:    r.ID,
			Name:  r.Name,
			Price: r.Price,
			Image: r.Image,
		}
	}
	return products, nil
}

type submitRequest struct {
	Items []domain.SubmittedItem `json:"items"`
}

type submitResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    *domain.Receipt `json:"data"`
}

// SubmitCart posts items for checkout and returns the server's receipt.
// Every failure wraps ErrSubmitCart.
func (c *Client) SubmitCart(ctx context.Context, items []domain.SubmittedItem) (*domain.Receipt, error) {
	body, err := json.Marshal(submitRequest{Items: items})
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %w", ErrSubmitCart, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/cart", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSubmitCart, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("cart submission failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrSubmitCart, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{Op: ErrSubmitCart, StatusCode: resp.StatusCode, Message: readMessage(resp.Body)}
		c.logger.Warn("cart submission rejected", zap.Int("status", resp.StatusCode), zap.String("message", statusErr.Message))
		return nil, statusErr
	}

	var out submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrSubmitCart, err)
	}
	if !out.Success || out.Data == nil {
		return nil, fmt.Errorf("%w: unexpected response", ErrSubmitCart)
	}
	return out.Data, nil
}

func readMessage(r io.Reader) string {
	var payload struct {
		Message string `json:"message"`
	}
	data, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || json.Unmarshal(data, &payload) != nil {
		return ""
	}
	return payload.Message
}

package directus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
)

// Default configuration values.
const (
	DefaultTimeout           = 10 * time.Second
	DefaultRequestsPerSecond = 5.0
	DefaultBurst             = 5
)

// Config holds configuration for the Directus client.
type Config struct {
	// URL is the Directus base URL (required).
	URL string

	// Token is an optional static bearer token.
	Token string

	// RequestsPerSecond is the sustained outbound rate (default: 5).
	RequestsPerSecond float64

	// Timeout bounds a single request (default: 10s).
	Timeout time.Duration
}

// Client talks to the Directus items API.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	limiter *rate.Limiter
}

// New creates a Directus client.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("directus: URL is required: %w", domain.ErrInvalidInput)
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("directus: invalid URL: %w", err)
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.URL, "/"),
		token:   cfg.Token,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), DefaultBurst),
	}, nil
}

// NewFromSettings creates a client from application settings.
// It returns nil without error when no URL is configured.
func NewFromSettings(s domain.CatalogueSettings) (*Client, error) {
	if !s.IsConfigured() {
		return nil, nil
	}
	return New(Config{URL: s.URL, Token: s.Token, RequestsPerSecond: s.RequestsPerSecond})
}

// itemsResponse is the envelope of every items endpoint.
type itemsResponse[T any] struct {
	Data T `json:"data"`
}

// getItems reads a collection with the given query into out.
func (c *Client) getItems(ctx context.Context, collection string, query url.Values, out any) error {
	endpoint := c.baseURL + "/items/" + collection
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("directus: create request: %w", err)
	}
	return c.do(req, out)
}

// createItem posts one item to a collection.
func (c *Client) createItem(ctx context.Context, collection string, item any) error {
	body, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("directus: marshal item: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/items/"+collection, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("directus: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

func (c *Client) do(req *http.Request, out any) error {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return fmt.Errorf("directus: rate limiter: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("directus: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(resp)
	}
	if out == nil {
		return nil
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("directus: decode %s: %w", req.URL.Path, err)
	}
	return nil
}

// number reads a Directus numeric field, which may arrive as a JSON number
// or as a decimal string.
func number(v any) float64 {
	if f := domain.SanitizeNumber(v); f != nil {
		return *f
	}
	return 0
}

// optionalNumber is number that keeps null as nil.
func optionalNumber(v any) *float64 {
	if v == nil {
		return nil
	}
	f := number(v)
	return &f
}

// identifier renders a primary key of any Directus type.
func identifier(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case json.Number:
		return id.String()
	default:
		return fmt.Sprint(id)
	}
}

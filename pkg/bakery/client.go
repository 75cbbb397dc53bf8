package bakery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/ovenlight/crumb-checkout/pkg/errors"
	"github.com/ovenlight/crumb-checkout/pkg/types"
)

const (
	defaultTimeout             = 10 * time.Second
	errorBodyReadLimit   int64 = 1024
	idempotencyKeyHeader       = "Idempotency-Key"
)

var errBaseURLRequired = errors.New("storefront base url is required")

// Client wraps the remote storefront REST API consumed by checkout.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// NewClient builds the storefront API client.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, errBaseURLRequired
	}

	client := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return client, nil
}

// Calculate asks the backend to price the current checkout state.
func (c *Client) Calculate(ctx context.Context, req CalculateRequest) (*CalculateData, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "storefront client not configured")
	}
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "calculate requires at least one item")
	}

	var payload struct {
		envelope
		Data *CalculateData `json:"data"`
	}
	if err := c.post(ctx, "/orders/calculate", "", req, &payload); err != nil {
		return nil, err
	}
	if !payload.Success || payload.Data == nil {
		return nil, apiFailure(payload.envelope, "order calculation rejected")
	}
	return payload.Data, nil
}

// ValidatePromo checks a promo code against the current order total and
// returns the validated promo descriptor.
func (c *Client) ValidatePromo(ctx context.Context, req PromoValidationRequest) (*types.PromoCode, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "storefront client not configured")
	}
	if strings.TrimSpace(req.Code) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo code is required")
	}

	var payload struct {
		envelope
		Data promoValidationData `json:"data"`
	}
	if err := c.post(ctx, "/promos/validate", "", req, &payload); err != nil {
		return nil, err
	}
	promo := payload.Data.promo()
	if !payload.Success || promo == nil {
		return nil, apiFailure(payload.envelope, "promo code rejected")
	}
	return promo, nil
}

// CheckBranchAvailability verifies items can be fulfilled at the requested
// branch or branches.
func (c *Client) CheckBranchAvailability(ctx context.Context, req AvailabilityRequest) (*AvailabilityData, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "storefront client not configured")
	}
	if req.BranchID == nil && len(req.BranchIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch id is required")
	}
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "availability check requires items")
	}

	var payload struct {
		envelope
		Data *AvailabilityData `json:"data"`
	}
	if err := c.post(ctx, "/branches/availability", "", req, &payload); err != nil {
		return nil, err
	}
	// Some backend revisions return the branches array without an envelope
	// success flag; tolerate it as long as data decoded.
	if payload.Data == nil {
		return nil, apiFailure(payload.envelope, "availability check rejected")
	}
	return payload.Data, nil
}

// CreateOrder submits the final order. The idempotency key must stay fixed
// across retries of the same logical submission.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest, idempotencyKey string) (*CreatedOrder, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "storefront client not configured")
	}
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}

	var payload struct {
		envelope
		Data *OrderData `json:"data"`
	}
	if err := c.post(ctx, "/orders", idempotencyKey, req, &payload); err != nil {
		return nil, err
	}
	if !payload.Success || payload.Data == nil {
		return nil, apiFailure(payload.envelope, "order rejected")
	}
	return &payload.Data.Order, nil
}

func (c *Client) post(ctx context.Context, path, idempotencyKey string, body, dest any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		httpReq.Header.Set(idempotencyKeyHeader, idempotencyKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "request failed")
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response")
	}
	return nil
}

func apiFailure(env envelope, fallback string) error {
	msg := strings.TrimSpace(env.Message)
	if msg == "" {
		msg = fallback
	}
	return pkgerrors.New(pkgerrors.CodeConflict, msg)
}

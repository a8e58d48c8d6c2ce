package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.stripe.com"

// Client talks to the hosted-checkout provider. Only the session endpoint is
// used; the rest of the payment lifecycle arrives through webhooks.
type Client struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a checkout client with the given API key.
func NewClient(secretKey string) *Client {
	return &Client{
		secretKey:  secretKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// WithBaseURL overrides the provider endpoint (tests).
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = strings.TrimRight(base, "/")
	return c
}

// CheckoutLineItem is one purchasable line on the hosted checkout page.
type CheckoutLineItem struct {
	Name        string
	Description string
	// Amount is the unit amount in the currency's smallest unit.
	Amount   int64
	Quantity int
}

// CheckoutSessionParams describes a checkout session to create.
type CheckoutSessionParams struct {
	Currency      string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	LineItems     []CheckoutLineItem
	Metadata      map[string]string
}

// CheckoutSession is the provider's session representation.
type CheckoutSession struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	PaymentStatus string `json:"payment_status"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// CreateCheckoutSession creates a hosted checkout session and returns its id
// and redirect URL.
func (c *Client) CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	if params.CustomerEmail != "" {
		form.Set("customer_email", params.CustomerEmail)
	}
	form.Add("payment_method_types[]", "card")

	for i, item := range params.LineItems {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[price_data][currency]", params.Currency)
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
		if item.Description != "" {
			form.Set(prefix+"[price_data][product_data][description]", item.Description)
		}
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(item.Amount, 10))
		qty := item.Quantity
		if qty <= 0 {
			qty = 1
		}
		form.Set(prefix+"[quantity]", strconv.Itoa(qty))
	}

	for key, value := range params.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", key), value)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build checkout request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read checkout response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if jsonErr := json.Unmarshal(body, &apiErr); jsonErr == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("checkout session rejected: %s", apiErr.Error.Message)
		}
		return nil, fmt.Errorf("checkout session rejected: status %d", resp.StatusCode)
	}

	var session CheckoutSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	return &session, nil
}

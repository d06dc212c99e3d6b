package paypal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api-m.sandbox.paypal.com"

	fetchAttempts = 3
	retryBackoff  = 200 * time.Millisecond
)

// Remote order statuses accepted as payable.
const (
	StatusApproved  = "APPROVED"
	StatusCompleted = "COMPLETED"
)

// Client talks to the PayPal Orders v2 API using client-credentials OAuth.
type Client struct {
	clientID     string
	clientSecret string
	baseURL      string
	client       *http.Client
}

func NewClient(clientID, clientSecret, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      baseURL,
		client:       &http.Client{Timeout: 5 * time.Second},
	}
}

// Order is the subset of the remote order resource the verifier needs.
// Amounts arrive as decimal strings and are parsed by the caller.
type Order struct {
	ID            string         `json:"id"`
	Status        string         `json:"status"`
	PurchaseUnits []PurchaseUnit `json:"purchase_units"`
}

type PurchaseUnit struct {
	Amount Amount `json:"amount"`
}

type Amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost,
		c.baseURL+"/v1/oauth2/token",
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("paypal token: %s", resp.Status)
	}

	var out tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("paypal token decode: %w", err)
	}
	return out.AccessToken, nil
}

// FetchOrder retrieves the authoritative order resource by id. Idempotent
// read, retried with backoff on transient failures.
func (c *Client) FetchOrder(ctx context.Context, orderID string) (*Order, error) {
	var lastErr error
	for attempt := 0; attempt < fetchAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryBackoff << attempt):
			}
		}

		o, retryable, err := c.fetchOnce(ctx, orderID)
		if err == nil {
			return o, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, orderID string) (*Order, bool, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, true, err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet,
		fmt.Sprintf("%s/v2/checkout/orders/%s", c.baseURL, orderID),
		nil,
	)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, true, fmt.Errorf("paypal order fetch: %s", resp.Status)
	default:
		return nil, false, fmt.Errorf("paypal order fetch: %s", resp.Status)
	}

	var o Order
	if err := json.NewDecoder(resp.Body).Decode(&o); err != nil {
		return nil, false, fmt.Errorf("paypal order decode: %w", err)
	}
	return &o, false, nil
}

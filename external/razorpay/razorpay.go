package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://api.razorpay.com/v1"

	fetchAttempts = 3
	retryBackoff  = 200 * time.Millisecond
)

// Client talks to the Razorpay REST API with basic auth.
type Client struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
}

func NewClient(keyID, keySecret, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 5 * time.Second},
	}
}

// Payment is the subset of the gateway's payment resource the verifier needs.
// Amount is in minor units (paise).
type Payment struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	OrderID  string `json:"order_id"`
	Method   string `json:"method"`
}

// VerifySignature checks the checkout signature: HMAC-SHA256 over
// "{orderID}|{paymentID}" with the key secret. Comparison is constant-time.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// FetchPayment retrieves the authoritative payment resource by id. The read is
// idempotent, so transient failures are retried with backoff.
func (c *Client) FetchPayment(ctx context.Context, paymentID string) (*Payment, error) {
	url := fmt.Sprintf("%s/payments/%s", c.baseURL, paymentID)

	var lastErr error
	for attempt := 0; attempt < fetchAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryBackoff << attempt):
			}
		}

		p, retryable, err := c.fetchOnce(ctx, url)
		if err == nil {
			return p, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, url string) (*Payment, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, true, fmt.Errorf("razorpay payment fetch: %s", resp.Status)
	default:
		return nil, false, fmt.Errorf("razorpay payment fetch: %s", resp.Status)
	}

	var p Payment
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, false, fmt.Errorf("razorpay payment decode: %w", err)
	}
	return &p, false, nil
}

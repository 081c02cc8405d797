package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// ErrUnavailable marks failures that may succeed on another attempt:
// transport errors and 5xx responses.
var ErrUnavailable = errors.New("payment gateway unavailable")

// Client creates remote orders on a Razorpay-compatible REST API.
type Client struct {
	baseURL     string
	keyID       string
	keySecret   string
	client      *http.Client
	maxAttempts int
	backoff     time.Duration
}

type Option func(*Client)

// WithHTTPClient replaces the default client, mostly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.client = c }
}

// WithRetry allows up to attempts calls for a single order, spaced by backoff.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(cl *Client) {
		if attempts < 1 {
			attempts = 1
		}

		cl.maxAttempts = attempts
		cl.backoff = backoff
	}
}

func NewClient(baseURL, keyID, keySecret string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		keyID:       keyID,
		keySecret:   keySecret,
		client:      &http.Client{Timeout: timeout},
		maxAttempts: 1,
		backoff:     500 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// KeyID is the public key handed to the client-side checkout widget.
func (c *Client) KeyID() string {
	return c.keyID
}

type createOrderRequest struct {
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt"`
	PaymentCapture int    `json:"payment_capture"`
}

type createOrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder registers a remote order for amount minor units. The receipt is
// sent on every attempt so the gateway can correlate retries.
func (c *Client) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error) {
	body, err := json.Marshal(createOrderRequest{
		Amount:         amount,
		Currency:       currency,
		Receipt:        receipt,
		PaymentCapture: 1,
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			slog.Warn("retrying gateway order", "receipt", receipt, "attempt", attempt, "error", lastErr)

			select {
			case <-time.After(c.backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		id, err := c.createOrder(ctx, body)
		if err == nil {
			return id, nil
		}

		lastErr = err

		if !errors.Is(err, ErrUnavailable) {
			break
		}
	}

	return "", lastErr
}

func (c *Client) createOrder(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		if json.Unmarshal(raw, &e) == nil && e.Error.Description != "" {
			return "", fmt.Errorf("gateway rejected order: %s: %s", e.Error.Code, e.Error.Description)
		}

		return "", fmt.Errorf("gateway rejected order: status %d", resp.StatusCode)
	}

	var out createOrderResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if out.ID == "" {
		return "", fmt.Errorf("gateway returned no order id")
	}

	return out.ID, nil
}

// Signature is the hex HMAC-SHA256 of "orderID|paymentID" keyed by secret.
func Signature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))

	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature was produced with secret.
// An empty secret never verifies.
func VerifySignature(secret, orderID, paymentID, signature string) bool {
	if secret == "" {
		return false
	}

	expected := Signature(secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifySignature checks a checkout callback against the client's key secret.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(c.keySecret, orderID, paymentID, signature)
}

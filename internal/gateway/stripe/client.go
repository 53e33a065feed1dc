package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pcamara21/Checkout-Backend/internal/order/application"
)

const defaultBaseURL = "https://api.stripe.com"

// Error is a payment error reported by the gateway. The reconciler treats it
// as a business outcome (the order goes to "failed"), never as a system fault.
type Error struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("stripe: %s (%s)", e.Message, e.Code)
	}
	return "stripe: " + e.Message
}

// Client talks to the Stripe HTTP API. Only the two calls the checkout flow
// needs are implemented.
type Client struct {
	log       *slog.Logger
	http      *http.Client
	baseURL   string
	secretKey string
}

func NewClient(log *slog.Logger, secretKey string) *Client {
	return &Client{
		log:       log,
		http:      &http.Client{Timeout: 30 * time.Second},
		baseURL:   defaultBaseURL,
		secretKey: secretKey,
	}
}

// WithBaseURL points the client at a different API host. Used by tests.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = strings.TrimRight(base, "/")
	return c
}

// CreateCharge issues a single charge-creation call. The caller's idempotency
// key is forwarded in the Idempotency-Key header so the gateway collapses
// concurrent calls sharing it into one charge.
func (c *Client) CreateCharge(ctx context.Context, p application.ChargeParams) (application.Charge, error) {
	form := url.Values{}
	form.Set("source", p.SourceID)
	form.Set("amount", strconv.FormatInt(p.Amount, 10))
	form.Set("currency", p.Currency)
	form.Set("receipt_email", p.ReceiptEmail)

	var out struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := c.post(ctx, "/v1/charges", form, p.IdempotencyKey, &out); err != nil {
		return application.Charge{}, err
	}
	return application.Charge{ID: out.ID, Status: out.Status}, nil
}

// CreatePaymentIntent opens a payment intent carrying the order ID in its
// metadata, which is how payment_intent webhooks find their way back to the
// order.
func (c *Client) CreatePaymentIntent(ctx context.Context, amount int64, currency, orderID string) (application.PaymentIntent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("currency", currency)
	form.Set("metadata[order]", orderID)

	var out application.PaymentIntent
	if err := c.post(ctx, "/v1/payment_intents", form, "", &out); err != nil {
		return application.PaymentIntent{}, err
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, form url.Values, idempotencyKey string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error Error `json:"error"`
		}
		if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Error.Message == "" {
			return fmt.Errorf("stripe: %s returned %d", path, resp.StatusCode)
		}
		return &apiErr.Error
	}
	return json.Unmarshal(body, out)
}

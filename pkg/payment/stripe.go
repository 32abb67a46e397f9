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

	"velora/pkg/retry"
)

// StripeProvider creates Checkout Sessions against the Stripe REST API using
// form-encoded requests.
type StripeProvider struct {
	BaseURL string
	APIKey  string
	client  *http.Client
}

func NewStripeProvider(apiKey string) *StripeProvider {
	return &StripeProvider{
		BaseURL: "https://api.stripe.com",
		APIKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *StripeProvider) Name() string { return "stripe" }

type stripeSession struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	Status        string `json:"status"`         // open, complete, expired
	PaymentStatus string `json:"payment_status"` // paid, unpaid
	ExpiresAt     int64  `json:"expires_at"`
}

func (p *StripeProvider) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutResponse, error) {
	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = "usd"
	}
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", req.SuccessURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", currency)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(req.AmountCents, 10))
	form.Set("line_items[0][price_data][product_data][name]", req.Description)
	if req.ExpiresIn > 0 {
		form.Set("expires_at", strconv.FormatInt(time.Now().Add(req.ExpiresIn).Unix(), 10))
	}
	for k, v := range req.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}
	form.Set("metadata[user_id]", strconv.FormatUint(uint64(req.UserID), 10))

	var session stripeSession
	err := retry.Do(ctx, retry.DefaultAttempts, retry.DefaultDelay, func() error {
		return p.postForm(ctx, "/v1/checkout/sessions", form, &session)
	})
	if err != nil {
		return nil, fmt.Errorf("stripe checkout: %w", err)
	}
	return &CheckoutResponse{
		Reference:   session.ID,
		Status:      "PENDING",
		CheckoutURL: session.URL,
		ExpiresAt:   time.Unix(session.ExpiresAt, 0),
	}, nil
}

// VerifyPayment fetches the session and reports whether it was paid. Used as
// a fallback when webhook delivery is in doubt.
func (p *StripeProvider) VerifyPayment(ctx context.Context, reference string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/v1/checkout/sessions/"+reference, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+p.APIKey)
	resp, err := p.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("stripe verify: status %d: %s", resp.StatusCode, string(data))
	}
	var session stripeSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return false, err
	}
	return session.PaymentStatus == "paid", nil
}

func (p *StripeProvider) postForm(ctx context.Context, path string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.APIKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(data))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

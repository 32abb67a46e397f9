package payment

import (
	"context"
	"time"
)

type CheckoutRequest struct {
	UserID      uint
	AmountCents int64
	Currency    string
	Description string
	Metadata    map[string]string
	ExpiresIn   time.Duration
	SuccessURL  string
	CancelURL   string
}

type CheckoutResponse struct {
	Reference   string // provider session id, stored as payments.provider_ref
	Status      string
	CheckoutURL string
	ExpiresAt   time.Time
}

type Provider interface {
	Name() string
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutResponse, error)
	VerifyPayment(ctx context.Context, reference string) (bool, error)
}

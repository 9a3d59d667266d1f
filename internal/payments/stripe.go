package payments

import (
	"context"

	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
)

// PaymentProcessor abstracts the PaymentIntent create/capture flow so the
// handler and tests are not tied to stripe-go directly.
type PaymentProcessor interface {
	// CreateIntent opens a manual-capture PaymentIntent and returns its ID
	// and client secret. Amount is in minor currency units.
	CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string, receiptEmail string) (id, clientSecret string, err error)

	// Capture finalizes a previously created PaymentIntent.
	Capture(ctx context.Context, paymentIntentID string) error

	// Cancel releases an uncaptured PaymentIntent.
	Cancel(ctx context.Context, paymentIntentID string) error
}

// StripeClient is a thin wrapper around stripe-go PaymentIntents.
type StripeClient struct{}

// NewStripeClient initializes the stripe client with the given API key.
func NewStripeClient(apiKey string) *StripeClient {
	stripe.Key = apiKey
	return &StripeClient{}
}

// CreateIntent creates a PaymentIntent with capture_method=manual so the
// rental total plus deposit is held until the owner confirms.
func (s *StripeClient) CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string, receiptEmail string) (string, string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
	}
	params.CaptureMethod = stripe.String(string(stripe.PaymentIntentCaptureMethodManual))
	if receiptEmail != "" {
		params.ReceiptEmail = stripe.String(receiptEmail)
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", "", err
	}
	return pi.ID, pi.ClientSecret, nil
}

// Capture finalizes a previously-held PaymentIntent.
func (s *StripeClient) Capture(ctx context.Context, paymentIntentID string) error {
	_, err := paymentintent.Capture(paymentIntentID, nil)
	return err
}

// Cancel releases the hold on a PaymentIntent.
func (s *StripeClient) Cancel(ctx context.Context, paymentIntentID string) error {
	_, err := paymentintent.Cancel(paymentIntentID, nil)
	return err
}

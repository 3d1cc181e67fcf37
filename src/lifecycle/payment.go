package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/v82"
)

// Confirmation is what the payment provider hands back after a successful
// charge. TransactionID is forwarded to the server as the de-duplication key.
type Confirmation struct {
	TransactionID string `json:"transactionId"`
}

type PaymentProvider interface {
	ConfirmCardPayment(ctx context.Context, clientSecret string, paymentMethod string) (Confirmation, error)
}

// StripeProvider confirms PaymentIntents directly against the Stripe API.
// The client carries the account's secret key, so this provider belongs to
// trusted callers only: back-office tools, server-side jobs and tests. A
// browser or mobile client confirms with its publishable key in Stripe's own
// SDK and hands the resulting intent id to ConfirmPayment.
type StripeProvider struct {
	client *stripe.Client
}

func NewStripeProvider(c *stripe.Client) *StripeProvider {
	return &StripeProvider{client: c}
}

// IntentIDFromSecret extracts "pi_123" from a "pi_123_secret_abc" client secret.
func IntentIDFromSecret(clientSecret string) string {
	id, _, found := strings.Cut(clientSecret, "_secret_")
	if !found || !strings.HasPrefix(id, "pi_") {
		return ""
	}
	return id
}

func (p *StripeProvider) ConfirmCardPayment(ctx context.Context, clientSecret string, paymentMethod string) (Confirmation, error) {
	intentID := IntentIDFromSecret(clientSecret)
	if intentID == "" {
		return Confirmation{}, fmt.Errorf("%w: malformed client secret", ErrInvalidRequest)
	}
	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(paymentMethod),
	}
	pi, err := p.client.V1PaymentIntents.Confirm(ctx, intentID, params)
	if err != nil {
		log.Printf("[Stripe] error confirming %s: %s\n", intentID, err.Error())
		return Confirmation{}, classifyStripeError(err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return Confirmation{}, fmt.Errorf("%w: payment intent is %s", ErrPaymentDeclined, pi.Status)
	}
	return Confirmation{TransactionID: pi.ID}, nil
}

func classifyStripeError(err error) error {
	var serr *stripe.Error
	if !errors.As(err, &serr) {
		return fmt.Errorf("%w: %s", ErrNetworkFailure, err.Error())
	}
	switch {
	case serr.Type == stripe.ErrorTypeCard:
		return fmt.Errorf("%w: %s", ErrPaymentDeclined, serr.Msg)
	case serr.HTTPStatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthenticated, serr.Msg)
	case serr.HTTPStatusCode == http.StatusTooManyRequests || serr.HTTPStatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %s", ErrNetworkFailure, serr.Msg)
	}
	return fmt.Errorf("%w: %s", ErrPaymentDeclined, serr.Msg)
}

package lib

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"ticketbari/src/lifecycle"
	"ticketbari/src/types"
	"ticketbari/src/utils"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
)

var stripeClient *stripe.Client

func GetStripeClient() *stripe.Client {
	if stripeClient != nil {
		return stripeClient
	}
	apiKey := os.Getenv("STRIPE_SECRET_KEY")
	sc := stripe.NewClient(apiKey)
	stripeClient = sc

	return sc
}

func NewStripeClient(c *stripe.Client) {
	stripeClient = c
}

// StripeGateway issues and verifies PaymentIntents for bookings.
type StripeGateway struct {
	client *stripe.Client
}

func NewStripeGateway(c *stripe.Client) *StripeGateway {
	return &StripeGateway{client: c}
}

func toPaymentIntent(pi *stripe.PaymentIntent) *types.PaymentIntent {
	out := &types.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		AmountMinor:  pi.Amount,
		Currency:     string(pi.Currency),
		Succeeded:    pi.Status == stripe.PaymentIntentStatusSucceeded,
	}
	if raw, ok := pi.Metadata["bookingId"]; ok {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			out.BookingID = uint(id)
		}
	}
	return out
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, bookingID uint, amount decimal.Decimal, currency string) (*types.PaymentIntent, error) {
	minor := utils.ToMinorUnits(amount)
	params := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(minor),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("bookingId", strconv.FormatUint(uint64(bookingID), 10))
	// retries for the same booking and amount return the same intent
	params.SetIdempotencyKey(fmt.Sprintf("booking-%d-intent-%d-%s", bookingID, minor, currency))
	pi, err := g.client.V1PaymentIntents.Create(ctx, params)
	if err != nil {
		log.Printf("[Stripe] Error creating PaymentIntent for booking %d: %s\n", bookingID, err.Error())
		return nil, err
	}
	return toPaymentIntent(pi), nil
}

func (g *StripeGateway) RetrievePaymentIntent(ctx context.Context, id string) (*types.PaymentIntent, error) {
	pi, err := g.client.V1PaymentIntents.Retrieve(ctx, id, &stripe.PaymentIntentRetrieveParams{})
	if err != nil {
		log.Printf("[Stripe] Error retrieving PaymentIntent %s: %s\n", id, err.Error())
		var se *stripe.Error
		if errors.As(err, &se) && se.HTTPStatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("payment intent %s: %w", id, lifecycle.ErrInvalidRequest)
		}
		return nil, err
	}
	return toPaymentIntent(pi), nil
}

// PaymentIntentFromEvent decodes the object of a payment_intent.* webhook event.
func PaymentIntentFromEvent(raw []byte) (*types.PaymentIntent, error) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(raw, &pi); err != nil {
		return nil, err
	}
	return toPaymentIntent(&pi), nil
}

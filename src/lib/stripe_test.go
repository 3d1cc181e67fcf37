package lib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentIntentFromEvent(t *testing.T) {
	raw := []byte(`{
		"id": "pi_3Q",
		"object": "payment_intent",
		"amount": 165000,
		"currency": "bdt",
		"status": "succeeded",
		"client_secret": "pi_3Q_secret_abc",
		"metadata": {"bookingId": "17"}
	}`)
	pi, err := PaymentIntentFromEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, "pi_3Q", pi.ID)
	assert.EqualValues(t, 165000, pi.AmountMinor)
	assert.Equal(t, "bdt", pi.Currency)
	assert.True(t, pi.Succeeded)
	assert.EqualValues(t, 17, pi.BookingID)
}

func TestPaymentIntentFromEventWithoutBooking(t *testing.T) {
	pi, err := PaymentIntentFromEvent([]byte(`{"id":"pi_1","status":"requires_payment_method","metadata":{"bookingId":"abc"}}`))
	require.NoError(t, err)
	assert.False(t, pi.Succeeded)
	assert.Zero(t, pi.BookingID)

	_, err = PaymentIntentFromEvent([]byte(`not json`))
	assert.Error(t, err)
}

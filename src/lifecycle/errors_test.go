package lifecycle

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeAndStatus(t *testing.T) {
	wrapped := fmt.Errorf("booking 7: %w", ErrBookingExpired)
	assert.Equal(t, "booking_expired", Code(wrapped))
	assert.Equal(t, http.StatusGone, HTTPStatus(wrapped))

	assert.Equal(t, "internal", Code(fmt.Errorf("boom")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(fmt.Errorf("boom")))

	te := &TransitionError{BookingID: 1}
	assert.Equal(t, "invalid_transition", Code(te))
}

func TestFromCodeRoundTrip(t *testing.T) {
	for _, entry := range errorTable {
		assert.ErrorIs(t, FromCode(entry.code, entry.status), entry.err, entry.code)
		assert.ErrorIs(t, FromCode(Code(entry.err), HTTPStatus(entry.err)), entry.err, entry.code)
	}
}

func TestFromCodeFallsBackOnStatus(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthenticated},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrInvalidTransition},
		{http.StatusGone, ErrBookingExpired},
		{http.StatusPaymentRequired, ErrPaymentDeclined},
		{http.StatusInternalServerError, ErrNetworkFailure},
		{http.StatusBadGateway, ErrNetworkFailure},
		{http.StatusTeapot, ErrInvalidRequest},
	}
	for _, tt := range tests {
		assert.ErrorIs(t, FromCode("", tt.status), tt.want, "status %d", tt.status)
	}
	assert.ErrorIs(t, FromCode("internal", http.StatusInternalServerError), ErrNetworkFailure)
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(fmt.Errorf("x: %w", ErrNetworkFailure)))
	assert.False(t, Retryable(ErrPaymentDeclined))
	assert.False(t, Retryable(ErrInvalidTransition))
}

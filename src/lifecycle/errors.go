package lifecycle

import (
	"errors"
	"net/http"
)

var (
	ErrInsufficientInventory = errors.New("requested quantity exceeds available inventory")
	ErrInvalidTransition     = errors.New("transition is not legal for the booking's current status")
	ErrBookingExpired        = errors.New("booking departure time has elapsed")
	ErrPaymentDeclined       = errors.New("payment was declined by the provider")
	ErrUnauthenticated       = errors.New("missing or expired credentials")
	ErrNetworkFailure        = errors.New("network failure")

	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrAdvertiseLimit    = errors.New("advertised ticket limit reached")
	ErrTicketUnavailable = errors.New("ticket is not available for booking")
	ErrAmountMismatch    = errors.New("amount does not match booking total")
	ErrInvalidRequest    = errors.New("invalid request")
	// ErrBusy is returned while another operation on the same booking is in flight.
	ErrBusy = errors.New("operation already in progress")
)

type errorEntry struct {
	err    error
	code   string
	status int
}

var errorTable = []errorEntry{
	{ErrInsufficientInventory, "insufficient_inventory", http.StatusConflict},
	{ErrInvalidTransition, "invalid_transition", http.StatusConflict},
	{ErrBookingExpired, "booking_expired", http.StatusGone},
	{ErrPaymentDeclined, "payment_declined", http.StatusPaymentRequired},
	{ErrUnauthenticated, "unauthenticated", http.StatusUnauthorized},
	{ErrForbidden, "forbidden", http.StatusForbidden},
	{ErrNotFound, "not_found", http.StatusNotFound},
	{ErrAdvertiseLimit, "advertise_limit", http.StatusConflict},
	{ErrTicketUnavailable, "ticket_unavailable", http.StatusUnprocessableEntity},
	{ErrAmountMismatch, "amount_mismatch", http.StatusUnprocessableEntity},
	{ErrInvalidRequest, "invalid_request", http.StatusBadRequest},
	{ErrBusy, "busy", http.StatusTooManyRequests},
	{ErrNetworkFailure, "network_failure", http.StatusServiceUnavailable},
}

// Code returns the wire code for err, or "internal" when err is not part of
// the taxonomy.
func Code(err error) string {
	for _, entry := range errorTable {
		if errors.Is(err, entry.err) {
			return entry.code
		}
	}
	return "internal"
}

func HTTPStatus(err error) int {
	for _, entry := range errorTable {
		if errors.Is(err, entry.err) {
			return entry.status
		}
	}
	return http.StatusInternalServerError
}

// FromCode maps an error response back onto the taxonomy. The code wins when
// present; otherwise the status decides. Server errors are reported as
// network failures because no state change can be assumed.
func FromCode(code string, status int) error {
	for _, entry := range errorTable {
		if code != "" && entry.code == code {
			return entry.err
		}
	}
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthenticated
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusConflict:
		return ErrInvalidTransition
	case status == http.StatusGone:
		return ErrBookingExpired
	case status == http.StatusPaymentRequired:
		return ErrPaymentDeclined
	case status >= http.StatusInternalServerError:
		return ErrNetworkFailure
	}
	return ErrInvalidRequest
}

// Retryable reports whether the caller may safely retry the same call.
func Retryable(err error) bool {
	return errors.Is(err, ErrNetworkFailure)
}

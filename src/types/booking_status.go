package types

import (
	"fmt"
	"strings"
	"time"
)

type BookingStatus string

const (
	BOOKING_PENDING  BookingStatus = "pending"
	BOOKING_ACCEPTED BookingStatus = "accepted"
	BOOKING_REJECTED BookingStatus = "rejected"
	BOOKING_PAID     BookingStatus = "paid"
	// BOOKING_EXPIRED is derived from the departure time and never persisted.
	BOOKING_EXPIRED BookingStatus = "expired"
)

var validTransitions = map[BookingStatus][]BookingStatus{
	BOOKING_PENDING:  {BOOKING_ACCEPTED, BOOKING_REJECTED},
	BOOKING_ACCEPTED: {BOOKING_PAID},
	BOOKING_REJECTED: {},
	BOOKING_PAID:     {},
	BOOKING_EXPIRED:  {},
}

func (s BookingStatus) String() string {
	return string(s)
}

func (s BookingStatus) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// Effective overlays the derived expired state on an accepted booking whose
// departure is not after now.
func (s BookingStatus) Effective(departure, now time.Time) BookingStatus {
	if s == BOOKING_ACCEPTED && !now.Before(departure) {
		return BOOKING_EXPIRED
	}
	return s
}

// ParseBookingStatus is case-insensitive so "Pending" from older clients parses.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %q", s)
	}
	return status, nil
}

// Decision is a vendor's response to a pending booking.
type Decision string

const (
	DECISION_ACCEPT Decision = "accept"
	DECISION_REJECT Decision = "reject"
)

func (d Decision) Target() (BookingStatus, error) {
	switch d {
	case DECISION_ACCEPT:
		return BOOKING_ACCEPTED, nil
	case DECISION_REJECT:
		return BOOKING_REJECTED, nil
	}
	return "", fmt.Errorf("invalid decision: %q", d)
}

// DecisionFromStatus maps the wire status of PATCH /bookings/:id/status.
func DecisionFromStatus(s string) (Decision, error) {
	status, err := ParseBookingStatus(s)
	if err != nil {
		return "", err
	}
	switch status {
	case BOOKING_ACCEPTED:
		return DECISION_ACCEPT, nil
	case BOOKING_REJECTED:
		return DECISION_REJECT, nil
	}
	return "", fmt.Errorf("status %q is not a vendor decision", s)
}

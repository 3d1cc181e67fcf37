package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransitionTo(t *testing.T) {
	all := []BookingStatus{BOOKING_PENDING, BOOKING_ACCEPTED, BOOKING_REJECTED, BOOKING_PAID, BOOKING_EXPIRED}
	legal := map[[2]BookingStatus]bool{
		{BOOKING_PENDING, BOOKING_ACCEPTED}: true,
		{BOOKING_PENDING, BOOKING_REJECTED}: true,
		{BOOKING_ACCEPTED, BOOKING_PAID}:    true,
	}
	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, legal[[2]BookingStatus{from, to}], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
	assert.True(t, BOOKING_PAID.IsTerminal())
	assert.True(t, BOOKING_REJECTED.IsTerminal())
	assert.False(t, BOOKING_ACCEPTED.IsTerminal())
}

func TestEffectiveStatus(t *testing.T) {
	departure := time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)
	before, after := departure.Add(-time.Second), departure.Add(time.Second)

	assert.Equal(t, BOOKING_ACCEPTED, BOOKING_ACCEPTED.Effective(departure, before))
	assert.Equal(t, BOOKING_EXPIRED, BOOKING_ACCEPTED.Effective(departure, departure))
	assert.Equal(t, BOOKING_EXPIRED, BOOKING_ACCEPTED.Effective(departure, after))
	assert.Equal(t, BOOKING_PENDING, BOOKING_PENDING.Effective(departure, after))
	assert.Equal(t, BOOKING_PAID, BOOKING_PAID.Effective(departure, after))
}

func TestParseBookingStatus(t *testing.T) {
	s, err := ParseBookingStatus(" Pending ")
	require.NoError(t, err)
	assert.Equal(t, BOOKING_PENDING, s)

	_, err = ParseBookingStatus("cancelled")
	assert.Error(t, err)
}

func TestDecisionFromStatus(t *testing.T) {
	d, err := DecisionFromStatus("accepted")
	require.NoError(t, err)
	assert.Equal(t, DECISION_ACCEPT, d)
	target, err := d.Target()
	require.NoError(t, err)
	assert.Equal(t, BOOKING_ACCEPTED, target)

	d, err = DecisionFromStatus("Rejected")
	require.NoError(t, err)
	assert.Equal(t, DECISION_REJECT, d)

	_, err = DecisionFromStatus("paid")
	assert.Error(t, err)
	_, err = Decision("later").Target()
	assert.Error(t, err)
}

func TestRoleAndTransportValid(t *testing.T) {
	assert.True(t, ROLE_VENDOR.Valid())
	assert.False(t, Role("superuser").Valid())
	assert.True(t, TRANSPORT_LAUNCH.Valid())
	assert.False(t, TransportMode("rickshaw").Valid())
}

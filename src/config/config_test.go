package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvFallbacks(t *testing.T) {
	t.Setenv("TB_STRING", "")
	t.Setenv("TB_INT", "x")
	t.Setenv("TB_BOOL", "true")
	t.Setenv("TB_DURATION", "90s")

	assert.Equal(t, "fallback", GetEnv("TB_STRING", "fallback"))
	assert.Equal(t, 7, GetEnvInt("TB_INT", 7))
	assert.True(t, GetEnvBool("TB_BOOL", false))
	assert.Equal(t, 90*time.Second, GetEnvDuration("TB_DURATION", time.Minute))
}

func TestParseDepartureUsesTicketTimezone(t *testing.T) {
	t.Setenv("TICKET_TIMEZONE", "Asia/Dhaka")
	at, err := ParseDeparture("2026-12-16", " 07:45")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 12, 16, 1, 45, 0, 0, time.UTC), at.UTC())

	_, err = ParseDeparture("16/12/2026", "07:45")
	assert.Error(t, err)
}

func TestPaymentCurrency(t *testing.T) {
	t.Setenv("PAYMENT_CURRENCY", "BDT")
	assert.Equal(t, "bdt", PaymentCurrency())
}

package lib

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage(t *testing.T) {
	msg, err := BuildMessage(&SendMailInput{
		From:     "noreply@ticketbari.test",
		FromName: "TicketBari",
		To:       []string{"rahim@example.com"},
		Subject:  "Booking accepted",
		Body:     "<p>Booking #4 was accepted.</p>",
		Text:     "Booking #4 was accepted.",
		Html:     true,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Subject: Booking accepted")
	assert.Contains(t, out, "<rahim@example.com>")
	assert.Contains(t, out, "text/html")
	assert.Contains(t, out, "text/plain")
}

func TestBuildMessageRejectsBadInput(t *testing.T) {
	_, err := BuildMessage(&SendMailInput{From: "noreply@ticketbari.test", Subject: "x"})
	assert.Error(t, err)

	_, err = BuildMessage(&SendMailInput{From: "not an address", To: []string{"a@b.c"}})
	assert.Error(t, err)
}

func TestSMTPEnabled(t *testing.T) {
	t.Setenv("SMTP_HOST", "")
	assert.False(t, SMTPEnabled())
	t.Setenv("SMTP_HOST", "smtp.example.com")
	assert.True(t, SMTPEnabled())
}

package aws

import (
	"testing"
	"ticketbari/src/lib"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSESInput(t *testing.T) {
	in := SESInput(&lib.SendMailInput{
		From:     "noreply@ticketbari.test",
		FromName: "TicketBari",
		To:       []string{"karim@example.com"},
		Subject:  "Payment received",
		Body:     "Booking #3 is paid.",
	})
	assert.Equal(t, "TicketBari <noreply@ticketbari.test>", aws.ToString(in.Source))
	assert.Equal(t, []string{"karim@example.com"}, in.Destination.ToAddresses)
	require.NotNil(t, in.Message.Body.Text)
	assert.Nil(t, in.Message.Body.Html)
	assert.Equal(t, "Payment received", aws.ToString(in.Message.Subject.Data))

	html := SESInput(&lib.SendMailInput{From: "a@b.c", Html: true, Body: "<p>hi</p>"})
	assert.Equal(t, "a@b.c", aws.ToString(html.Source))
	require.NotNil(t, html.Message.Body.Html)
}

func TestEnabledFlags(t *testing.T) {
	t.Setenv("MAIL_TRANSPORT", "ses")
	t.Setenv("S3_ASSETS_BUCKET", "")
	assert.True(t, SESEnabled())
	assert.False(t, S3Enabled())
}

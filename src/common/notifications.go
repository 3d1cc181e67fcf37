package common

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"ticketbari/src/lib"
	awslib "ticketbari/src/lib/aws"
	"ticketbari/src/types"

	"github.com/tidwall/gjson"
)

const bookingEventsGroup = "ticketbari-notifications"

// BookingMail builds the email for a booking event. It returns nil when the
// event has no recipient or no mail is sent for that type.
func BookingMail(event *types.BookingEvent) *lib.SendMailInput {
	if event.Email == "" {
		return nil
	}
	var subject, body string
	switch event.Type {
	case types.EVENT_BOOKING_REQUESTED:
		subject = fmt.Sprintf("New booking request for %s", event.TicketTitle)
		body = fmt.Sprintf("Booking #%d is waiting for your response.", event.BookingID)
	case types.EVENT_BOOKING_ACCEPTED:
		subject = fmt.Sprintf("Your booking for %s was accepted", event.TicketTitle)
		body = fmt.Sprintf("Booking #%d was accepted. Pay %s before departure to confirm your seats.", event.BookingID, event.Amount)
	case types.EVENT_BOOKING_REJECTED:
		subject = fmt.Sprintf("Your booking for %s was rejected", event.TicketTitle)
		body = fmt.Sprintf("Booking #%d was rejected by the vendor.", event.BookingID)
	case types.EVENT_BOOKING_PAID:
		subject = fmt.Sprintf("Payment received for %s", event.TicketTitle)
		body = fmt.Sprintf("We received %s for booking #%d. Your e-ticket is ready.", event.Amount, event.BookingID)
	default:
		return nil
	}
	return &lib.SendMailInput{
		From:     os.Getenv("MAIL_FROM"),
		FromName: "TicketBari",
		To:       []string{event.Email},
		Subject:  subject,
		Body:     body,
	}
}

// HandleBookingEvent decodes one message from the booking events topic and
// mails the recipient. send is lib.SendMail outside tests.
func HandleBookingEvent(payload []byte, send func(*lib.SendMailInput) error) {
	if !gjson.ValidBytes(payload) {
		log.Printf("[Notifications] dropping malformed event: %s\n", string(payload))
		return
	}
	var event types.BookingEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		log.Printf("[Notifications] error decoding event: %s\n", err.Error())
		return
	}
	input := BookingMail(&event)
	if input == nil {
		return
	}
	if err := send(input); err != nil {
		log.Printf("[Notifications] error mailing %s for booking %d: %s\n", event.Type, event.BookingID, err.Error())
	}
}

// MailSender picks the configured mail transport, or nil when mail is off.
func MailSender() func(*lib.SendMailInput) error {
	switch {
	case awslib.SESEnabled():
		return awslib.SESSendMail
	case lib.SMTPEnabled():
		return lib.SendMail
	}
	return nil
}

func BookingEventsConsumer(ctx context.Context) error {
	send := MailSender()
	if send == nil {
		log.Println("[Notifications] no mail transport configured, booking emails disabled")
		return nil
	}
	return lib.KafkaConsume(ctx, bookingEventsGroup, []string{lib.BookingEventsTopic}, func(payload []byte) {
		HandleBookingEvent(payload, send)
	})
}

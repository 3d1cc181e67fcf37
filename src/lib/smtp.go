package lib

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/wneessen/go-mail"
)

// SendMailInput is a transport-neutral outgoing mail. The SES sender in
// lib/aws consumes the same struct.
type SendMailInput struct {
	From     string
	FromName string
	To       []string
	Subject  string
	Body     string
	// Text is sent as the plain alternative when Html is set
	Text string
	Html bool
}

func SMTPEnabled() bool {
	return os.Getenv("SMTP_HOST") != ""
}

func GetSMTPClient() (*mail.Client, error) {
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = mail.DefaultPortTLS
	}
	policy := mail.TLSMandatory
	if os.Getenv("SMTP_TLS") == "opportunistic" {
		policy = mail.TLSOpportunistic
	}
	c, err := mail.NewClient(
		os.Getenv("SMTP_HOST"),
		mail.WithPort(port),
		mail.WithTLSPortPolicy(policy),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(os.Getenv("SMTP_USERNAME")),
		mail.WithPassword(os.Getenv("SMTP_PASSWORD")),
		mail.WithTimeout(15*time.Second),
	)
	if err != nil {
		log.Printf("Could not initialize smtp client: %s\n", err.Error())
		return nil, err
	}
	return c, nil
}

// BuildMessage converts a SendMailInput into a go-mail message.
func BuildMessage(input *SendMailInput) (*mail.Msg, error) {
	if len(input.To) == 0 {
		return nil, fmt.Errorf("mail has no recipients")
	}
	msg := mail.NewMsg()
	if err := msg.FromFormat(input.FromName, input.From); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(input.To...); err != nil {
		return nil, fmt.Errorf("invalid to address: %w", err)
	}
	msg.Subject(input.Subject)
	msg.SetDate()
	if !input.Html {
		msg.SetBodyString(mail.TypeTextPlain, input.Body)
		return msg, nil
	}
	msg.SetBodyString(mail.TypeTextHTML, input.Body)
	if input.Text != "" {
		msg.AddAlternativeString(mail.TypeTextPlain, input.Text)
	}
	return msg, nil
}

func SendMail(input *SendMailInput) error {
	msg, err := BuildMessage(input)
	if err != nil {
		log.Printf("Error building mail: %s\n", err.Error())
		return err
	}
	c, err := GetSMTPClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return c.DialAndSendWithContext(ctx, msg)
}

package aws

import (
	"context"
	"fmt"
	"log"
	"os"
	"ticketbari/src/lib"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

var sesClient *ses.Client

// SESEnabled reports whether booking mail goes through SES instead of SMTP.
func SESEnabled() bool {
	return os.Getenv("MAIL_TRANSPORT") == "ses"
}

func GetSESClient(ctx context.Context) (*ses.Client, error) {
	if sesClient != nil {
		return sesClient, nil
	}
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Printf("Could not load default config: %s\n", err.Error())
		return nil, err
	}
	sesClient = ses.NewFromConfig(cfg)
	return sesClient, nil
}

// SESInput converts a mail into an SES request.
func SESInput(input *lib.SendMailInput) *ses.SendEmailInput {
	content := &types.Content{Data: aws.String(input.Body), Charset: aws.String("UTF-8")}
	body := &types.Body{Text: content}
	if input.Html {
		body = &types.Body{Html: content}
		if input.Text != "" {
			body.Text = &types.Content{Data: aws.String(input.Text), Charset: aws.String("UTF-8")}
		}
	}
	from := input.From
	if input.FromName != "" {
		from = fmt.Sprintf("%s <%s>", input.FromName, input.From)
	}
	return &ses.SendEmailInput{
		Source:      aws.String(from),
		Destination: &types.Destination{ToAddresses: input.To},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(input.Subject), Charset: aws.String("UTF-8")},
			Body:    body,
		},
	}
}

func SESSendMail(input *lib.SendMailInput) error {
	ctx := context.Background()
	c, err := GetSESClient(ctx)
	if err != nil {
		return err
	}
	out, err := c.SendEmail(ctx, SESInput(input))
	if err != nil {
		log.Printf("Error sending email: %s\n", err.Error())
		return err
	}
	log.Printf("Sent email with id: %s\n", aws.ToString(out.MessageId))
	return nil
}

package otp

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendgridTransport posts messages to the SendGrid v3 mail API.
type SendgridTransport struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewSendgridTransport(apiKey, fromEmail, fromName string) *SendgridTransport {
	return &SendgridTransport{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (t *SendgridTransport) Name() string { return "sendgrid" }

func (t *SendgridTransport) Send(ctx context.Context, msg *EmailMessage) error {
	from := mail.NewEmail(t.fromName, t.fromEmail)
	to := mail.NewEmail("", msg.To)
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.Html)

	res, err := t.client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if res.StatusCode >= 300 {
		return fmt.Errorf("sendgrid responded %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

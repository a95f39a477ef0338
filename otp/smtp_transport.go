package otp

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
)

type SmtpConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

// SmtpTransport relays through an SMTP server, upgrading to TLS before auth.
type SmtpTransport struct {
	config SmtpConfig
}

func NewSmtpTransport(config SmtpConfig) *SmtpTransport {
	return &SmtpTransport{config: config}
}

func (t *SmtpTransport) Name() string { return "smtp" }

func (t *SmtpTransport) Send(ctx context.Context, msg *EmailMessage) error {
	if t.config.Username == "" || t.config.Password == "" {
		return fmt.Errorf("SMTP credentials not configured")
	}

	addr := net.JoinHostPort(t.config.Host, strconv.Itoa(t.config.Port))

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to dial SMTP: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, t.config.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to open SMTP session: %w", err)
	}
	defer client.Close()

	if err = client.StartTLS(&tls.Config{ServerName: t.config.Host}); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	auth := smtp.PlainAuth("", t.config.Username, t.config.Password, t.config.Host)
	if err = client.Auth(auth); err != nil {
		return fmt.Errorf("failed to auth: %w", err)
	}

	if err = client.Mail(t.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set MAIL FROM: %w", err)
	}
	if err = client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("failed to set RCPT TO: %w", err)
	}

	body, err := t.compose(msg)
	if err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open DATA: %w", err)
	}
	if _, err = w.Write(body); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}

	if err = client.Quit(); err != nil {
		return fmt.Errorf("failed to quit SMTP: %w", err)
	}
	return nil
}

// compose builds a multipart/alternative message with text and html parts.
func (t *SmtpTransport) compose(msg *EmailMessage) ([]byte, error) {
	var parts bytes.Buffer
	writer := multipart.NewWriter(&parts)

	for _, part := range []struct{ contentType, body string }{
		{"text/plain; charset=UTF-8", msg.Text},
		{"text/html; charset=UTF-8", msg.Html},
	} {
		w, err := writer.CreatePart(textproto.MIMEHeader{"Content-Type": {part.contentType}})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(part.body)); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	from := t.config.FromEmail
	if t.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", t.config.FromName, t.config.FromEmail)
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, "From: %s\r\n", from)
	fmt.Fprintf(&out, "To: %s\r\n", msg.To)
	fmt.Fprintf(&out, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&out, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&out, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", writer.Boundary())
	out.Write(parts.Bytes())
	return out.Bytes(), nil
}

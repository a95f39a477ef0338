package otp

import (
	"context"
	"sync"

	"github.com/Kotlang/clinicAuthGo/logger"
	"go.uber.org/zap"
)

type EmailMessage struct {
	To      string
	Subject string
	Html    string
	Text    string
}

// EmailTransport delivers a message or reports why it could not.
type EmailTransport interface {
	Name() string
	Send(ctx context.Context, msg *EmailMessage) error
}

// DevTransport never leaves the process. It logs the plain-text body and
// keeps the last message per recipient, for local runs and tests.
type DevTransport struct {
	mu     sync.Mutex
	outbox map[string]EmailMessage
}

func NewDevTransport() *DevTransport {
	return &DevTransport{outbox: map[string]EmailMessage{}}
}

func (t *DevTransport) Name() string { return "dev" }

func (t *DevTransport) Send(ctx context.Context, msg *EmailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	t.outbox[msg.To] = *msg
	t.mu.Unlock()

	logger.Info("Dev email", zap.String("to", msg.To), zap.String("subject", msg.Subject), zap.String("body", msg.Text))
	return nil
}

// LastMessage returns the most recent message sent to address.
func (t *DevTransport) LastMessage(address string) (EmailMessage, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	msg, ok := t.outbox[address]
	return msg, ok
}

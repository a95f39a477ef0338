package otp

import (
	"context"
	"time"

	"github.com/Kotlang/clinicAuthGo/autherr"
	"github.com/Kotlang/clinicAuthGo/logger"
	"github.com/Kotlang/clinicAuthGo/metrics"
	"github.com/Kotlang/clinicAuthGo/models"
	"go.uber.org/zap"
)

type EmailClientInterface interface {
	IsValid(email string) bool
	SendOtp(ctx context.Context, to, code string) error
}

// EmailClient formats code emails and hands them to a single transport.
type EmailClient struct {
	transport EmailTransport
	clinic    string
	ttl       time.Duration
}

func ProvideEmailClient(transport EmailTransport, clinic string, ttl time.Duration) *EmailClient {
	return &EmailClient{transport: transport, clinic: clinic, ttl: ttl}
}

func (c *EmailClient) IsValid(email string) bool {
	return models.IsValidEmail(email)
}

func (c *EmailClient) SendOtp(ctx context.Context, to, code string) error {
	if !c.IsValid(to) {
		return autherr.ErrInvalidAddress
	}

	msg, err := BuildMessage(c.clinic, to, code, c.ttl)
	if err != nil {
		logger.Error("Failed rendering otp email", zap.Error(err))
		return autherr.New(autherr.DeliveryFailed, "", err)
	}

	if err := c.transport.Send(ctx, msg); err != nil {
		metrics.EmailDelivery.WithLabelValues(c.transport.Name(), "failed").Inc()
		logger.Error("Failed sending otp email",
			zap.String("transport", c.transport.Name()),
			zap.String("email", to),
			zap.Error(err))
		return autherr.New(autherr.DeliveryFailed, "", err)
	}

	metrics.EmailDelivery.WithLabelValues(c.transport.Name(), "sent").Inc()
	logger.Info("Sent otp email", zap.String("transport", c.transport.Name()), zap.String("email", to))
	return nil
}

package otp_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Kotlang/clinicAuthGo/autherr"
	"github.com/Kotlang/clinicAuthGo/mocks"
	"github.com/Kotlang/clinicAuthGo/otp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailClient_IsValid(t *testing.T) {
	client := otp.ProvideEmailClient(&mocks.TransportMock{}, "Clinic", otp.DefaultTTL)

	cases := []struct {
		address string
		want    bool
	}{
		{"user@example.com", true},
		{"first.last+tag@clinic.co.in", true},
		{"", false},
		{"user", false},
		{"user@", false},
		{"@example.com", false},
		{"user example@example.com", false},
	}

	for _, c := range cases {
		t.Run(c.address, func(t *testing.T) {
			assert.Equal(t, c.want, client.IsValid(c.address))
		})
	}
}

func TestEmailClient_SendOtp(t *testing.T) {
	var sendTestCases = []struct {
		desc          string
		to            string
		transportErr  error
		expectedError error
		expectedSent  int
	}{
		{
			desc:         "Valid address",
			to:           "user@example.com",
			expectedSent: 1,
		},
		{
			desc:          "Invalid address fails before transport",
			to:            "not-an-email",
			expectedError: autherr.ErrInvalidAddress,
		},
		{
			desc:          "Transport failure is surfaced",
			to:            "user@example.com",
			transportErr:  errors.New("421 service not available"),
			expectedError: autherr.ErrDeliveryFailed,
		},
	}

	for _, testData := range sendTestCases {
		t.Run(testData.desc, func(t *testing.T) {
			transport := &mocks.TransportMock{Err: testData.transportErr}
			client := otp.ProvideEmailClient(transport, "Sunrise Clinic", otp.DefaultTTL)

			err := client.SendOtp(context.Background(), testData.to, "482913")
			if testData.expectedError != nil {
				assert.ErrorIs(t, err, testData.expectedError)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, testData.expectedSent, transport.Count())
		})
	}
}

func TestEmailClient_SendOtp_MessageContent(t *testing.T) {
	transport := &mocks.TransportMock{}
	client := otp.ProvideEmailClient(transport, "Sunrise Clinic", otp.DefaultTTL)

	require.NoError(t, client.SendOtp(context.Background(), "user@example.com", "482913"))
	require.Equal(t, 1, transport.Count())

	msg := transport.Sent[0]
	assert.Equal(t, "user@example.com", msg.To)
	assert.Contains(t, msg.Subject, "Sunrise Clinic")
	assert.Contains(t, msg.Html, "4 8 2 9 1 3")
	assert.Contains(t, msg.Html, "valid for 3 minutes")
	assert.Contains(t, msg.Text, "482913")
	assert.Contains(t, msg.Text, "valid for 3 minutes")
}

func TestEmailClient_SendOtp_Timeout(t *testing.T) {
	transport := &mocks.TransportMock{}
	transport.Hold()
	defer transport.Release()

	client := otp.ProvideEmailClient(transport, "Clinic", otp.DefaultTTL)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := client.SendOtp(ctx, "user@example.com", "482913")
	assert.ErrorIs(t, err, autherr.ErrDeliveryFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDevTransport_KeepsLastMessage(t *testing.T) {
	transport := otp.NewDevTransport()
	client := otp.ProvideEmailClient(transport, "Clinic", otp.DefaultTTL)

	require.NoError(t, client.SendOtp(context.Background(), "user@example.com", "111111"))
	require.NoError(t, client.SendOtp(context.Background(), "user@example.com", "222222"))

	msg, ok := transport.LastMessage("user@example.com")
	require.True(t, ok)
	assert.Contains(t, msg.Text, "222222")
}

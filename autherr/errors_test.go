package autherr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs_MatchesByReason(t *testing.T) {
	err := New(Expired, "custom copy", nil)

	assert.ErrorIs(t, err, ErrExpired)
	assert.NotErrorIs(t, err, ErrMismatch)
	assert.ErrorIs(t, fmt.Errorf("verify: %w", err), ErrExpired)
}

func TestNew_DefaultMessage(t *testing.T) {
	assert.Equal(t, defaultMessages[DeliveryFailed], New(DeliveryFailed, "", nil).Message)
	assert.Equal(t, "custom", New(DeliveryFailed, "custom", nil).Message)
}

func TestNew_UnwrapsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := New(StoreUnavailable, "", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(StoreUnavailable, nil))

	tagged := New(NotFound, "", nil)
	assert.Same(t, tagged, Wrap(StoreUnavailable, tagged))

	assert.ErrorIs(t, Wrap(StoreUnavailable, errors.New("boom")), ErrStoreUnavailable)
}

func TestReasonOf(t *testing.T) {
	var cases = []struct {
		desc   string
		err    error
		reason Reason
	}{
		{"nil", nil, ""},
		{"tagged", ErrMismatch, Mismatch},
		{"wrapped", fmt.Errorf("x: %w", ErrAlreadyConsumed), AlreadyConsumed},
		{"deadline", context.DeadlineExceeded, StoreUnavailable},
		{"canceled", context.Canceled, StoreUnavailable},
		{"plain", errors.New("boom"), Unknown},
	}

	for _, testData := range cases {
		t.Run(testData.desc, func(t *testing.T) {
			assert.Equal(t, testData.reason, ReasonOf(testData.err))
		})
	}
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "custom", MessageOf(New(Mismatch, "custom", nil)))
	assert.Equal(t, defaultMessages[Unknown], MessageOf(errors.New("boom")))
	assert.Equal(t, defaultMessages[StoreUnavailable], MessageOf(context.DeadlineExceeded))
}

func TestRetryable(t *testing.T) {
	for _, reason := range []Reason{DeliveryFailed, StoreUnavailable, Unknown, Busy} {
		assert.True(t, Retryable(reason), reason)
	}
	for _, reason := range []Reason{InvalidAddress, NotFound, Expired, Mismatch, AlreadyConsumed, CooldownActive, InvalidState} {
		assert.False(t, Retryable(reason), reason)
	}
}

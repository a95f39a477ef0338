// Package autherr holds the failure taxonomy shared by the OTP, email,
// session and login components. Callers match reasons with errors.Is.
package autherr

import (
	"context"
	"errors"
)

type Reason string

const (
	InvalidAddress   Reason = "InvalidAddress"
	DeliveryFailed   Reason = "DeliveryFailed"
	NotFound         Reason = "NotFound"
	Expired          Reason = "Expired"
	Mismatch         Reason = "Mismatch"
	AlreadyConsumed  Reason = "AlreadyConsumed"
	StoreUnavailable Reason = "StoreUnavailable"
	Unknown          Reason = "Unknown"

	// controller guards
	CooldownActive Reason = "CooldownActive"
	Busy           Reason = "Busy"
	InvalidState   Reason = "InvalidState"

	// profile and appointment operations
	InvalidInput Reason = "InvalidInput"
	Unauthorized Reason = "Unauthorized"
)

var defaultMessages = map[Reason]string{
	InvalidAddress:   "Please enter a valid email address.",
	DeliveryFailed:   "We could not send the code. Please try again.",
	NotFound:         "No code was requested for this email. Please request a new one.",
	Expired:          "The code has expired. Please request a new one.",
	Mismatch:         "Incorrect code. Please check and try again.",
	AlreadyConsumed:  "This code was already used. Please request a new one.",
	StoreUnavailable: "Service is unavailable right now. Please try again.",
	Unknown:          "Something went wrong. Please try again.",
	CooldownActive:   "Please wait for the timer to finish before requesting a new code.",
	Busy:             "A request is already in progress.",
	InvalidState:     "This action is not available right now.",
	InvalidInput:     "Some details are invalid. Please review and try again.",
	Unauthorized:     "Your session is no longer valid. Please sign in again.",
}

type Error struct {
	Reason  Reason
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Reason) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Reason) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error carrying the same reason, so the sentinels below
// work with errors.Is regardless of message or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Reason == e.Reason
}

var (
	ErrInvalidAddress   = &Error{Reason: InvalidAddress, Message: defaultMessages[InvalidAddress]}
	ErrDeliveryFailed   = &Error{Reason: DeliveryFailed, Message: defaultMessages[DeliveryFailed]}
	ErrNotFound         = &Error{Reason: NotFound, Message: defaultMessages[NotFound]}
	ErrExpired          = &Error{Reason: Expired, Message: defaultMessages[Expired]}
	ErrMismatch         = &Error{Reason: Mismatch, Message: defaultMessages[Mismatch]}
	ErrAlreadyConsumed  = &Error{Reason: AlreadyConsumed, Message: defaultMessages[AlreadyConsumed]}
	ErrStoreUnavailable = &Error{Reason: StoreUnavailable, Message: defaultMessages[StoreUnavailable]}
	ErrUnknown          = &Error{Reason: Unknown, Message: defaultMessages[Unknown]}
	ErrCooldownActive   = &Error{Reason: CooldownActive, Message: defaultMessages[CooldownActive]}
	ErrBusy             = &Error{Reason: Busy, Message: defaultMessages[Busy]}
	ErrInvalidState     = &Error{Reason: InvalidState, Message: defaultMessages[InvalidState]}
	ErrInvalidInput     = &Error{Reason: InvalidInput, Message: defaultMessages[InvalidInput]}
	ErrUnauthorized     = &Error{Reason: Unauthorized, Message: defaultMessages[Unauthorized]}
)

// New builds an error for reason wrapping cause. An empty message falls back
// to the default user-facing copy for that reason.
func New(reason Reason, message string, cause error) *Error {
	if message == "" {
		message = defaultMessages[reason]
	}
	return &Error{Reason: reason, Message: message, Err: cause}
}

// Wrap attaches reason to cause unless cause already carries a reason.
func Wrap(reason Reason, cause error) error {
	if cause == nil {
		return nil
	}
	var e *Error
	if errors.As(cause, &e) {
		return cause
	}
	return New(reason, "", cause)
}

// ReasonOf classifies err. Errors without a reason become Unknown, except
// context timeouts which are reported as StoreUnavailable.
func ReasonOf(err error) Reason {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return StoreUnavailable
	}
	return Unknown
}

// MessageOf returns the user-facing message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return defaultMessages[ReasonOf(err)]
}

// Retryable reports whether the user may simply try the same action again.
func Retryable(reason Reason) bool {
	switch reason {
	case DeliveryFailed, StoreUnavailable, Unknown, Busy:
		return true
	}
	return false
}

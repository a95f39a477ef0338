package service

import (
	"time"

	"github.com/Kotlang/clinicAuthGo/autherr"
	"github.com/Kotlang/clinicAuthGo/models"
)

type State string

const (
	Idle                 State = "Idle"
	CodeSent             State = "CodeSent"
	Verifying            State = "Verifying"
	Authenticated        State = "Authenticated"
	RegistrationRequired State = "RegistrationRequired"
)

// Action hints which control the screen should offer after a failure.
type Action string

const (
	NoAction      Action = ""
	ResendAction  Action = "resend"
	ReenterAction Action = "reenter"
)

// Result is what every login operation returns. On failure Reason and
// Message are set; Message is meant to be shown as is.
type Result struct {
	Success   bool
	Reason    autherr.Reason
	Message   string
	Action    Action
	Retryable bool

	State     State
	Email     string
	Token     string
	Patient   *models.PatientModel
	ExpiresAt time.Time
	Remaining time.Duration
}

func failure(err error, state State) Result {
	reason := autherr.ReasonOf(err)
	return Result{
		Success:   false,
		Reason:    reason,
		Message:   autherr.MessageOf(err),
		Action:    actionFor(reason),
		Retryable: autherr.Retryable(reason),
		State:     state,
	}
}

func actionFor(reason autherr.Reason) Action {
	switch reason {
	case autherr.Expired, autherr.NotFound, autherr.AlreadyConsumed:
		return ResendAction
	case autherr.Mismatch:
		return ReenterAction
	}
	return NoAction
}

package mocks

import (
	"context"
	"sync"

	"github.com/Kotlang/clinicAuthGo/otp"
)

// TransportMock records every message. Err fails sends; Block makes Send
// wait until the context is done or Release is called.
type TransportMock struct {
	mu    sync.Mutex
	Sent  []otp.EmailMessage
	Err   error
	Block chan struct{}
}

func (t *TransportMock) Name() string { return "mock" }

func (t *TransportMock) Send(ctx context.Context, msg *otp.EmailMessage) error {
	t.mu.Lock()
	block := t.Block
	t.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Err != nil {
		return t.Err
	}
	t.Sent = append(t.Sent, *msg)
	return nil
}

func (t *TransportMock) SetErr(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Err = err
}

// Hold makes subsequent sends block until Release.
func (t *TransportMock) Hold() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Block = make(chan struct{})
}

func (t *TransportMock) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Block != nil {
		close(t.Block)
		t.Block = nil
	}
}

func (t *TransportMock) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.Sent)
}

package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAwaitOn(t *testing.T) {
	t.Run("result", func(t *testing.T) {
		resultChan, errChan := resultPair[int]()
		resultChan <- 7

		got, err := AwaitOn(resultChan, errChan)(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, 7, got)
	})

	t.Run("error", func(t *testing.T) {
		resultChan, errChan := resultPair[int]()
		errChan <- errors.New("connection reset")

		got, err := AwaitOn(resultChan, errChan)(context.Background())
		assert.EqualError(t, err, "connection reset")
		assert.Zero(t, got)
	})

	t.Run("context done", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := AwaitOn(resultPair[int]())(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestAwaitErr(t *testing.T) {
	errChan := make(chan error, 1)
	errChan <- nil
	assert.NoError(t, AwaitErr(context.Background(), errChan))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, AwaitErr(ctx, make(chan error)), context.Canceled)
}

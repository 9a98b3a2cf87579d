package graceful

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/abhissng/nhwr-mediator/adapters/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinator_RunsPhasesInOrder(t *testing.T) {
	var order []string
	failure := errors.New("flush failed")

	c := NewCoordinator(log.NewNopLogger(), time.Second)
	c.Add("first", ShutdownFunc(func(context.Context) error {
		order = append(order, "first")
		return failure
	}))
	c.Add("skipped", nil)
	c.Add("second", ShutdownFunc(func(ctx context.Context) error {
		order = append(order, "second")
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return nil
	}))

	err := c.Run(context.Background())
	assert.ErrorIs(t, err, failure)
	assert.Equal(t, []string{"first", "second"}, order)

	require.NoError(t, c.Run(context.Background()))
	assert.Len(t, order, 2)
}

func TestNotifyContext_CancelledBySignal(t *testing.T) {
	ctx, stop := NotifyContext(context.Background())
	defer stop()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not cancelled by SIGTERM")
	}
}

package interrupt

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/repofetch/pkg/errors"
)

func TestArmDisarm(t *testing.T) {
	g, err := Arm(context.Background())
	require.NoError(t, err)
	require.NotNil(t, g)

	assert.False(t, g.Interrupted())
	assert.NoError(t, g.Context().Err())

	g.Disarm()

	// Disarm is idempotent.
	g.Disarm()
	assert.False(t, g.Interrupted())
}

func TestArmRejectsConcurrentGuards(t *testing.T) {
	g, err := Arm(context.Background())
	require.NoError(t, err)
	defer g.Disarm()

	_, err = Arm(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrSignalSetup)
}

func TestArmAfterDisarm(t *testing.T) {
	g, err := Arm(context.Background())
	require.NoError(t, err)
	g.Disarm()

	g2, err := Arm(context.Background())
	require.NoError(t, err)
	g2.Disarm()
}

func TestInterruptSetsFlagAndCancelsContext(t *testing.T) {
	g, err := Arm(context.Background())
	require.NoError(t, err)
	defer g.Disarm()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGINT))

	select {
	case <-g.Context().Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context was not cancelled after SIGINT")
	}
	assert.True(t, g.Interrupted())
}

func TestParentCancellationIsNotAnInterrupt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	g, err := Arm(ctx)
	require.NoError(t, err)
	defer g.Disarm()

	cancel()

	select {
	case <-g.Context().Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context was not cancelled with its parent")
	}
	assert.False(t, g.Interrupted())
}

package backoff

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExponential(t *testing.T) {
	req := require.New(t)

	b := NewExponential(time.Millisecond, 4*time.Millisecond)
	req.Equal(time.Millisecond, b.NextDuration)
	req.NoError(b.Backoff(context.Background()))
	req.Equal(2*time.Millisecond, b.NextDuration)
	req.NoError(b.Backoff(context.Background()))
	req.Equal(4*time.Millisecond, b.NextDuration)
	req.NoError(b.Backoff(context.Background()))
	// capped by limit
	req.Equal(4*time.Millisecond, b.NextDuration)
}

func TestConstant(t *testing.T) {
	req := require.New(t)

	b := NewConstant(time.Millisecond)
	req.Equal(time.Millisecond, b.NextDuration)
	req.NoError(b.Backoff(context.Background()))
	req.Equal(time.Millisecond, b.NextDuration)
}

func TestBackoffCancelled(t *testing.T) {
	req := require.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := NewConstant(time.Minute)
	req.ErrorIs(b.Backoff(ctx), context.Canceled)
}

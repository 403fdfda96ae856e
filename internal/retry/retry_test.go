package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSucceedsFirstAttempt(t *testing.T) {
	p := NewPolicy(3, time.Millisecond, nil)

	calls := 0
	err := p.Do(context.Background(), "fetch", func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	p := NewPolicy(4, time.Millisecond, nil)

	calls := 0
	err := p.Do(context.Background(), "fetch", func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	p := NewPolicy(3, time.Millisecond, nil)

	cause := errors.New("permanent")
	calls := 0
	err := p.Do(context.Background(), "fetch", func() error {
		calls++
		return cause
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestDoRespectsContextCancellation(t *testing.T) {
	p := NewPolicy(10, 50*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := p.Do(ctx, "fetch", func() error {
		calls++
		return errors.New("transient")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.LessOrEqual(t, calls, 2)
}

func TestNewPolicyEnforcesMinimumAttempts(t *testing.T) {
	p := NewPolicy(0, time.Millisecond, nil)
	assert.Equal(t, 1, p.MaxAttempts)
}

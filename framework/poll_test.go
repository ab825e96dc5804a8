package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestPollReturnsWhenPredicateBecomesTrue(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		succeedOn := rapid.IntRange(1, 5).Draw(rt, "succeedOn")
		calls := 0
		err := Poll(context.Background(), "counter", time.Second*5, time.Millisecond, func(context.Context) (bool, error) {
			calls++
			return calls >= succeedOn, nil
		})
		if err != nil {
			rt.Fatalf("unexpected error: %s", err)
		}
		if calls != succeedOn {
			rt.Fatalf("expected %d calls, got %d", succeedOn, calls)
		}
	})
}

func TestPollTimesOut(t *testing.T) {
	predicateErr := errors.New("element not found")
	err := Poll(context.Background(), "the impossible", time.Millisecond*50, time.Millisecond*5, func(context.Context) (bool, error) {
		return false, predicateErr
	})
	require.Error(t, err)
	var te *TimeoutError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "the impossible", te.Condition)
	assert.True(t, errors.Is(err, predicateErr))
	assert.Contains(t, err.Error(), "timed out after 50ms waiting for the impossible")
}

func TestPollStopsWhenParentContextIsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Poll(ctx, "anything", time.Second, time.Millisecond, func(context.Context) (bool, error) {
		return false, nil
	})
	assert.Equal(t, context.Canceled, err)
}

func TestConsistentlySucceedsWhenPredicateHolds(t *testing.T) {
	calls := 0
	err := Consistently(context.Background(), "stable", time.Millisecond*30, time.Millisecond*5, func(context.Context) (bool, error) {
		calls++
		return true, nil
	})
	assert.NoError(t, err)
	assert.Greater(t, calls, 1)
}

func TestConsistentlyFailsAsSoonAsPredicateFails(t *testing.T) {
	calls := 0
	err := Consistently(context.Background(), "count unchanged", time.Second, time.Millisecond, func(context.Context) (bool, error) {
		calls++
		return calls < 3, nil
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "count unchanged")
}

func TestPollReportsLastErrorBeforeTimeout(t *testing.T) {
	notReady := errors.New("not ready")
	err := Poll(context.Background(), "service", time.Millisecond*50, time.Millisecond*5, func(ctx context.Context) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		time.Sleep(time.Millisecond)
		return false, notReady
	})
	var te *TimeoutError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, notReady, te.LastErr)
}

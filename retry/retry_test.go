package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy(maxAttempts int) Policy {
	return Policy{MaxAttempts: maxAttempts, BaseDelay: 10 * time.Millisecond}
}

func TestPolicy_Do_Success(t *testing.T) {
	attempts := 0
	operation := func() error {
		attempts++
		return nil
	}

	err := testPolicy(3).Do(context.Background(), operation)
	require.NoError(t, err)
	assert.Equal(t, 1, attempts, "should succeed on first try")
}

func TestPolicy_Do_EventualSuccess(t *testing.T) {
	attempts := 0
	operation := func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	}

	err := testPolicy(5).Do(context.Background(), operation)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts, "should succeed on third attempt")
}

func TestPolicy_Do_AllAttemptsFail(t *testing.T) {
	attempts := 0
	expectedErr := errors.New("persistent error")
	operation := func() error {
		attempts++
		return expectedErr
	}

	err := testPolicy(3).Do(context.Background(), operation)
	require.Error(t, err)
	assert.Equal(t, expectedErr, err, "should return the original error")
	assert.Equal(t, 3, attempts, "should attempt exactly MaxAttempts times")
}

func TestPolicy_Do_NonRetryable(t *testing.T) {
	permanent := errors.New("permanent error")
	policy := Policy{
		MaxAttempts: 5,
		BaseDelay:   10 * time.Millisecond,
		Retryable:   func(err error) bool { return !errors.Is(err, permanent) },
	}

	attempts := 0
	err := policy.Do(context.Background(), func() error {
		attempts++
		return permanent
	})

	require.Error(t, err)
	assert.Equal(t, permanent, err)
	assert.Equal(t, 1, attempts, "non-retryable error should not be retried")
}

func TestPolicy_Do_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	operation := func() error {
		attempts++
		if attempts == 2 {
			cancel() // Cancel after second attempt
		}
		return errors.New("error")
	}

	err := testPolicy(10).Do(ctx, operation)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled, "should return context.Canceled")
	assert.LessOrEqual(t, attempts, 2, "should stop when context is canceled")
}

func TestPolicy_Do_InvalidMaxAttempts(t *testing.T) {
	err := Policy{}.Do(context.Background(), func() error { return nil })
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
}

func TestDefaultPolicy(t *testing.T) {
	policy := DefaultPolicy()
	assert.Equal(t, 3, policy.MaxAttempts)
	assert.Equal(t, time.Second, policy.BaseDelay)
	assert.Nil(t, policy.Retryable)
}

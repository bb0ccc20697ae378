package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff_SucceedsWithoutRetry(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestRetryWithBackoff_RetriesTransientError(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestRetryWithBackoff_DoesNotRetryValidationError(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(func() error {
		calls++
		return &ValidationError{Entity: "Event", Field: "source_action_ids", Reason: "empty"}
	})
	require.Error(t, err)
	require.Equal(t, 1, calls)
}

func TestIsRetryableError(t *testing.T) {
	require.True(t, isRetryableError(errors.New("database is locked")))
	require.False(t, isRetryableError(errors.New("UNIQUE constraint failed: actions.id")))
	require.False(t, isRetryableError(&DuplicateColumnError{Table: "a", Column: "b"}))
}

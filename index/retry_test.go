package index

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff(t *testing.T) {
	t.Run("succeeds first attempt", func(t *testing.T) {
		attempts := 0
		err := RetryWithBackoff(context.Background(), func() error {
			attempts++
			return nil
		}, 3, time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("succeeds after retries", func(t *testing.T) {
		attempts := 0
		err := RetryWithBackoff(context.Background(), func() error {
			attempts++
			if attempts < 3 {
				return errors.New("transient")
			}
			return nil
		}, 5, time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("returns last error when exhausted", func(t *testing.T) {
		wantErr := errors.New("permanent")
		attempts := 0
		err := RetryWithBackoff(context.Background(), func() error {
			attempts++
			return wantErr
		}, 3, time.Millisecond)

		assert.ErrorIs(t, err, wantErr)
		assert.Equal(t, 3, attempts)
	})

	t.Run("rejects invalid maxAttempts", func(t *testing.T) {
		err := RetryWithBackoff(context.Background(), func() error { return nil }, 0, time.Millisecond)
		assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		attempts := 0
		err := RetryWithBackoff(ctx, func() error {
			attempts++
			return errors.New("transient")
		}, 3, time.Millisecond)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, attempts)
	})
}

func TestProgressTracker(t *testing.T) {
	t.Run("reports at intervals", func(t *testing.T) {
		var buf strings.Builder
		tracker := NewProgressTracker(&buf, 10, 5)

		tracker.Start()
		tracker.Increment(5)
		tracker.Increment(5)
		tracker.Finish()

		output := buf.String()
		assert.Contains(t, output, "5/10")
		assert.Contains(t, output, "10/10")
		assert.Contains(t, output, "100.0%")
	})

	t.Run("ignores updates before start", func(t *testing.T) {
		var buf strings.Builder
		tracker := NewProgressTracker(&buf, 10, 1)

		tracker.Increment(5)
		tracker.Finish()

		assert.Empty(t, buf.String())
	})

	t.Run("caps at total", func(t *testing.T) {
		var buf strings.Builder
		tracker := NewProgressTracker(&buf, 10, 1)

		tracker.Start()
		tracker.Increment(25)
		tracker.Finish()

		assert.Contains(t, buf.String(), "10/10")
		assert.NotContains(t, buf.String(), "25")
	})
}

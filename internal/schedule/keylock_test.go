package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutormatch/internal/model"
)

func TestKeyLockSerializesSameKey(t *testing.T) {
	l := NewKeyLock(50 * time.Millisecond)
	ctx := context.Background()

	release, err := l.Acquire(ctx, "python|2025-06-10")
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "python|2025-06-10")
	assert.True(t, errors.Is(err, model.ErrBusy))

	release()

	release2, err := l.Acquire(ctx, "python|2025-06-10")
	require.NoError(t, err)
	release2()
}

func TestKeyLockDifferentKeysIndependent(t *testing.T) {
	l := NewKeyLock(50 * time.Millisecond)
	ctx := context.Background()

	r1, err := l.Acquire(ctx, "python|2025-06-10")
	require.NoError(t, err)
	defer r1()

	r2, err := l.Acquire(ctx, "java|2025-06-10")
	require.NoError(t, err)
	defer r2()

	r3, err := l.Acquire(ctx, "python|2025-06-11")
	require.NoError(t, err)
	defer r3()
}

func TestKeyLockWaitsForRelease(t *testing.T) {
	l := NewKeyLock(time.Second)
	ctx := context.Background()

	release, err := l.Acquire(ctx, "react|2025-07-01")
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r, err := l.Acquire(ctx, "react|2025-07-01")
		assert.NoError(t, err)
		if err == nil {
			r()
		}
	}()

	time.Sleep(20 * time.Millisecond)
	release()
	wg.Wait()
}

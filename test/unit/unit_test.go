//go:build !integration

package unit

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nvidia/go-uthread"
)

// These tests exercise the package-level convenience API (the per-OS-thread
// registry), as opposed to the direct *uthread.Scheduler tests in the root
// package — they run without requiring more than one OS thread.

func TestPackageLevelCreateAndYield(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	counter := 0
	require.NoError(t, uthread.Create(func(any) { counter++ }, nil))
	require.NoError(t, uthread.Create(func(any) { counter++ }, nil))
	uthread.Yield()

	require.Equal(t, 2, counter)
	require.Equal(t, 0, uthread.QueueSize())
	require.Equal(t, 2, uthread.PoolSize())

	require.NoError(t, uthread.FreeUnused())
	require.Equal(t, 0, uthread.PoolSize())
}

func TestPackageLevelPreallocate(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	require.NoError(t, uthread.FreeUnused())
	require.NoError(t, uthread.Preallocate(5))
	require.Equal(t, 5, uthread.PoolSize())
	require.NoError(t, uthread.FreeUnused())
	require.Equal(t, 0, uthread.PoolSize())
}

func TestPackageLevelThisIDOutsideUthreadIsZero(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	require.EqualValues(t, 0, uthread.ThisID())
	require.EqualValues(t, 0, uthread.ThisRunCount())
}

func TestErrorCodesImplementError(t *testing.T) {
	var err error = uthread.NewAllocError("create", nil)
	require.Error(t, err)
	require.True(t, uthread.IsCode(err, uthread.ErrCodeAlloc))
}

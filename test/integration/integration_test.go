//go:build integration

package integration

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nvidia/go-uthread"
)

// These tests exercise genuine per-OS-thread isolation (spec §5): several
// real OS threads, each pinned with runtime.LockOSThread, each driving its
// own independent uthread population with zero coordination between them.
// Gated behind a build tag because they are heavier and schedule real OS
// threads rather than running inline.

func TestConcurrentSchedulersAcrossOSThreads(t *testing.T) {
	const numThreads = 8
	const usThreadsPerOS = 20

	var total atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < numThreads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()

			s, err := uthread.New(uthread.Options{})
			require.NoError(t, err)
			defer s.FreeUnused()

			var local int
			for j := 0; j < usThreadsPerOS; j++ {
				require.NoError(t, s.Create(uthread.YieldingBody(&local, 2), s))
			}
			s.Yield()

			require.Equal(t, usThreadsPerOS*3, local)
			require.Equal(t, 0, s.QueueSize())
			total.Add(int64(local))
		}()
	}

	wg.Wait()
	require.EqualValues(t, numThreads*usThreadsPerOS*3, total.Load())
}

func TestStressManyUthreadsOneScheduler(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	s, err := uthread.New(uthread.Options{})
	require.NoError(t, err)
	defer s.FreeUnused()

	const n = 2000
	counter := 0
	for i := 0; i < n; i++ {
		require.NoError(t, s.Create(uthread.CountingBody(&counter), s))
	}
	s.Yield()

	require.Equal(t, n, counter)
	require.Equal(t, n, s.PoolSize())
}

//go:build !cgo

package ctx

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// These tests pass a nil stack-top pointer, which is safe only on the
// portable fallback backend (it never switches SP, every uthread still
// runs on a real Go stack). See ctx_cgo_test.go for the cgo backend's
// equivalent, which allocates a real mmap'd stack before launching.

// TestLaunchFirstAndRestoreHost exercises the simplest round trip: launch a
// handle that immediately hands control back to the host.
func TestLaunchFirstAndRestoreHost(t *testing.T) {
	var ran atomic.Bool
	var hostSave SaveArea

	SetEntry(func(handle uintptr) {
		ran.Store(true)
		require.EqualValues(t, 42, handle)
		RestoreHost(&hostSave)
	})

	LaunchFirst(42, nil, &hostSave)

	require.True(t, ran.Load(), "entry function must run before LaunchFirst returns")
}

// TestBackupAndLaunchThenResume mirrors the scheduler's own retire path: A
// runs, backs itself up while launching B, B runs and resumes A without
// saving itself (it is retiring), A continues and hands back to host. The
// recorded order must reflect strict alternation with no step skipped.
func TestBackupAndLaunchThenResume(t *testing.T) {
	var order []string
	var hostSave, aSave SaveArea

	SetEntry(func(handle uintptr) {
		switch handle {
		case 1:
			order = append(order, "a1")
			BackupAndLaunch(2, nil, &aSave)
			order = append(order, "a2")
			RestoreHost(&hostSave)
		case 2:
			order = append(order, "b1")
			RestoreUthread(&aSave)
		default:
			t.Fatalf("unexpected handle %d", handle)
		}
	})

	LaunchFirst(1, nil, &hostSave)

	require.Equal(t, []string{"a1", "b1", "a2"}, order)
}

package uthread

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s, err := New(Options{})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.FreeUnused()) })
	return s
}

func TestPreallocateCycle(t *testing.T) {
	for _, n := range []int{0, 7, 14, 21} {
		s := newTestScheduler(t)

		require.NoError(t, s.Preallocate(n))
		require.Equal(t, n, s.PoolSize())
		require.Equal(t, 0, s.QueueSize())

		require.NoError(t, s.FreeUnused())
		require.Equal(t, 0, s.PoolSize())
		require.Equal(t, 0, s.QueueSize())
	}
}

func TestEmptyYieldIsNoOp(t *testing.T) {
	s := newTestScheduler(t)
	s.Yield()
	require.Equal(t, 0, s.QueueSize())
}

func TestSingleUthreadNoInternalYield(t *testing.T) {
	s := newTestScheduler(t)
	counter := 0

	require.NoError(t, s.Create(CountingBody(&counter), s))
	s.Yield()

	require.Equal(t, 1, counter)
	require.Equal(t, 0, s.QueueSize())
	require.Equal(t, 1, s.PoolSize())
}

func TestThirteenUthreadsNoInternalYield(t *testing.T) {
	s := newTestScheduler(t)
	counter := 0

	for i := 0; i < 13; i++ {
		require.NoError(t, s.Create(CountingBody(&counter), s))
	}
	s.Yield()

	require.Equal(t, 13, counter)
	require.Equal(t, 0, s.QueueSize())
	require.Equal(t, 13, s.PoolSize())
}

func TestSingleUthreadWithTwoInternalYields(t *testing.T) {
	s := newTestScheduler(t)
	counter := 0
	var observedRunCounts []uint64

	body := func(arg any) {
		sched := arg.(*Scheduler)
		for i := 0; i < 3; i++ {
			observedRunCounts = append(observedRunCounts, sched.ThisRunCount())
			counter++
			if i < 2 {
				sched.Yield()
			}
		}
	}

	require.NoError(t, s.Create(body, s))
	s.Yield()

	require.Equal(t, 3, counter)
	require.Equal(t, []uint64{1, 2, 3}, observedRunCounts)
	require.Equal(t, 0, s.QueueSize())
}

func TestThirteenUthreadsEachWithTwoInternalYields(t *testing.T) {
	s := newTestScheduler(t)
	counter := 0

	for i := 0; i < 13; i++ {
		require.NoError(t, s.Create(YieldingBody(&counter, 2), s))
	}
	s.Yield()

	require.Equal(t, 39, counter)
	require.Equal(t, 0, s.QueueSize())
	require.Equal(t, 13, s.PoolSize())
}

func TestDynamicSubThreadCreation(t *testing.T) {
	s := newTestScheduler(t)
	counter := 0

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Create(SpawningBody(&counter, 2), s))
	}
	s.Yield()

	require.Equal(t, 0, s.QueueSize())
	require.Equal(t, 15, s.PoolSize())
	require.Equal(t, 15, counter)
}

func TestCreateFromInsideBodyRunsAfterCurrentRotation(t *testing.T) {
	s := newTestScheduler(t)
	var order []string

	second := func(any) { order = append(order, "second") }
	first := func(arg any) {
		sched := arg.(*Scheduler)
		order = append(order, "first")
		require.NoError(t, sched.Create(second, sched))
	}

	require.NoError(t, s.Create(first, s))
	s.Yield()

	require.Equal(t, []string{"first", "second"}, order)
}

func TestThisIDAndThisRunCountOutsideUthreadReturnZero(t *testing.T) {
	s := newTestScheduler(t)
	require.EqualValues(t, 0, s.ThisID())
	require.EqualValues(t, 0, s.ThisRunCount())
}

func TestIDsAreUniqueAndMonotoneAcrossRecycling(t *testing.T) {
	s := newTestScheduler(t)
	var ids []uint64

	body := func(arg any) {
		sched := arg.(*Scheduler)
		ids = append(ids, sched.ThisID())
	}

	require.NoError(t, s.Create(body, s))
	require.NoError(t, s.Create(body, s))
	s.Yield()
	require.Equal(t, []uint64{1, 2}, ids)

	// Recycling from the pool preserves id. The pool is LIFO, so the most
	// recently retired TCB (id 2) is the one handed back out here.
	require.NoError(t, s.Create(body, s))
	s.Yield()
	require.Equal(t, []uint64{1, 2, 2}, ids)
}

func TestPoolSizePlusQueueSizeAccountsForEveryLiveTCB(t *testing.T) {
	s := newTestScheduler(t)
	counter := 0

	require.NoError(t, s.Preallocate(3))
	require.Equal(t, 3, s.PoolSize()+s.QueueSize())

	require.NoError(t, s.Create(CountingBody(&counter), s))
	require.Equal(t, 3, s.PoolSize()+s.QueueSize())

	s.Yield()
	require.Equal(t, 3, s.PoolSize()+s.QueueSize())
}

func TestObserverSeesFullLifecycleForOneUthread(t *testing.T) {
	rec := &RecordingObserver{}
	s, err := New(Options{Observer: rec})
	require.NoError(t, err)
	defer s.FreeUnused()

	counter := 0
	require.NoError(t, s.Create(CountingBody(&counter), s))
	s.Yield()

	require.Equal(t, []uint64{1}, rec.Creates)
	require.Len(t, rec.Dispatches, 1)
	require.True(t, rec.Dispatches[0].Fresh)
	require.Equal(t, []uint64{1}, rec.Retires)
	require.Equal(t, 1, rec.HostDrains)
	require.Empty(t, rec.Yields)
}

func TestObserverSeesYieldsAndResumes(t *testing.T) {
	rec := &RecordingObserver{}
	s, err := New(Options{Observer: rec})
	require.NoError(t, err)
	defer s.FreeUnused()

	counter := 0
	require.NoError(t, s.Create(YieldingBody(&counter, 1), s))
	require.NoError(t, s.Create(YieldingBody(&counter, 1), s))
	s.Yield()

	require.Len(t, rec.Yields, 2)

	var resumed int
	for _, d := range rec.Dispatches {
		if !d.Fresh {
			resumed++
		}
	}
	require.Equal(t, 2, resumed)
}

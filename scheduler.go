package uthread

import (
	"github.com/nvidia/go-uthread/internal/constants"
	"github.com/nvidia/go-uthread/internal/ctx"
	"github.com/nvidia/go-uthread/internal/logging"
	"github.com/nvidia/go-uthread/internal/runq"
	"github.com/nvidia/go-uthread/internal/tcb"
)

func init() {
	ctx.SetEntry(dispatchTrampoline)
}

// dispatchTrampoline is the single process-wide entry point every freshly
// launched uthread stack calls into; resumed uthreads continue from where
// they were saved instead. handle identifies the TCB; the TCB's
// Owner identifies which Scheduler to hand completion back to.
func dispatchTrampoline(handle uintptr) {
	self := tcb.HandleToTCB(handle)
	sched := self.Owner.(*Scheduler)
	sched.runAndRetire(self)
}

// Options configures a new Scheduler.
type Options struct {
	// StackSize overrides the default 2 MiB per-TCB stack when non-zero.
	StackSize int
	// GuardPage makes the page below each TCB's stack inaccessible.
	GuardPage bool
	// Preallocate pushes this many TCBs onto the pool at construction time.
	Preallocate int
	// Logger receives lifecycle diagnostics. Defaults to logging.Default().
	Logger *logging.Logger
	// Observer receives lifecycle callbacks. Defaults to NoOpObserver.
	Observer Observer
}

// DefaultOptions returns the zero-value-equivalent Options a Scheduler
// starts with when none are given explicitly.
func DefaultOptions() Options {
	return Options{Preallocate: constants.DefaultPreallocate}
}

// Scheduler owns one OS-thread's worth of uthread state: the run queue, the
// free pool, the id counter, and the saved host context. A Scheduler must
// never be copied and must be driven by exactly one goroutine for its
// entire life (see package doc).
type Scheduler struct {
	nextID uint64
	pool   runq.Pool
	queue  runq.Queue

	hostSave   ctx.SaveArea
	hostActive bool

	opts     Options
	logger   *logging.Logger
	observer Observer
}

// New constructs a Scheduler. If Options.Preallocate is non-zero and
// allocation fails partway through, New returns the resulting *Error and a
// nil Scheduler — there is no partially-constructed Scheduler to hand back.
func New(opts Options) (*Scheduler, error) {
	s := &Scheduler{opts: opts}

	s.logger = opts.Logger
	if s.logger == nil {
		s.logger = logging.Default()
	}
	s.observer = opts.Observer
	if s.observer == nil {
		s.observer = NoOpObserver{}
	}

	if opts.Preallocate > 0 {
		if err := s.Preallocate(opts.Preallocate); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Scheduler) tcbOptions() tcb.Options {
	return tcb.Options{StackSize: s.opts.StackSize, GuardPage: s.opts.GuardPage}
}

// Create allocates (from the pool if possible, else fresh) a TCB for body
// and arg, and appends it to the run queue tail. Returns *Error with Code
// ErrCodeAlloc if a fresh TCB's stack could not be mapped.
func (s *Scheduler) Create(body tcb.Func, arg any) error {
	t := s.pool.Pop()
	if t == nil {
		next, err := tcb.New(s.nextID+1, s.tcbOptions())
		if err != nil {
			return NewAllocError("create", err)
		}
		s.nextID++
		t = next
	}
	t.Owner = s
	t.Reset(body, arg)
	s.queue.Append(t)
	s.logger.Debug("create", "id", t.ID)
	s.observer.ObserveCreate(t.ID)
	return nil
}

// Preallocate pushes n fresh TCBs onto the pool. On failure it returns
// *Error with Code ErrCodeAlloc and leaves whatever was already pushed in
// place — there is no rollback, matching the reference contract.
func (s *Scheduler) Preallocate(n int) error {
	for i := 0; i < n; i++ {
		t, err := tcb.New(s.nextID+1, s.tcbOptions())
		if err != nil {
			return NewAllocError("preallocate", err)
		}
		s.nextID++
		s.pool.Push(t)
	}
	return nil
}

// FreeUnused drains the pool, releasing every pooled TCB's stack.
func (s *Scheduler) FreeUnused() error {
	return s.pool.Drain(func(t *tcb.TCB) error {
		return t.Destroy()
	})
}

// PoolSize returns the number of TCBs currently in the free pool.
func (s *Scheduler) PoolSize() int {
	return s.pool.Size()
}

// QueueSize returns the number of queued-or-running TCBs.
func (s *Scheduler) QueueSize() int {
	return s.queue.Size()
}

// ThisID returns the currently-running uthread's id, or 0 if called outside
// a uthread (with a debug diagnostic logged in that case).
func (s *Scheduler) ThisID() uint64 {
	head := s.queue.Head()
	if head == nil {
		s.logger.Debug("this-id called outside a uthread", "err", newNotRunningError("this-id"))
		return 0
	}
	return head.ID
}

// ThisRunCount returns the currently-running uthread's run count, or 0 if
// called outside a uthread (with a debug diagnostic logged in that case).
func (s *Scheduler) ThisRunCount() uint64 {
	head := s.queue.Head()
	if head == nil {
		s.logger.Debug("this-run-count called outside a uthread", "err", newNotRunningError("this-run-count"))
		return 0
	}
	return head.RunCount
}

// Yield has two regimes. Called from the host (not yet inside the uthread
// regime): bootstraps the first queued uthread and blocks until the whole
// queue has drained, or returns immediately if the queue is empty. Called
// from inside a running uthread: rotates to the next queued member and
// returns once this uthread is re-dispatched.
func (s *Scheduler) Yield() {
	if !s.hostActive {
		if s.queue.Empty() {
			return
		}
		head := s.queue.Head()
		head.RunCount++
		s.hostActive = true
		s.logger.WithThread(head.ID).Debug("dispatch", "run_count", head.RunCount, "fresh", true)
		s.observer.ObserveDispatch(head.ID, head.RunCount, true)
		ctx.LaunchFirst(head.Handle(), head.StackTop(), &s.hostSave)
		return
	}

	cur := s.queue.Head()
	s.logger.WithThread(cur.ID).Debug("yield")
	s.observer.ObserveYield(cur.ID)

	s.queue.Advance()
	next := s.queue.Head()
	if next == cur {
		// Sole remaining uthread yielding to itself. The reference still
		// increments run_cnt here (it is a normal dispatch, just one whose
		// switch_uthread call happens to be a no-op since next_regs and
		// this_regs are the same save area); the portable backend cannot
		// actually perform that switch (it would have this goroutine send
		// to and receive from its own channel), so the switch itself is
		// skipped and this is a plain return after the bookkeeping.
		next.RunCount++
		s.logger.WithThread(next.ID).Debug("dispatch", "run_count", next.RunCount, "fresh", false)
		s.observer.ObserveDispatch(next.ID, next.RunCount, false)
		return
	}

	fresh := next.RunCount == 0
	next.RunCount++
	s.logger.WithThread(next.ID).Debug("dispatch", "run_count", next.RunCount, "fresh", fresh)
	s.observer.ObserveDispatch(next.ID, next.RunCount, fresh)
	if fresh {
		ctx.BackupAndLaunch(next.Handle(), next.StackTop(), &cur.Regs)
	} else {
		ctx.SwitchUthread(&next.Regs, &cur.Regs)
	}
}

// runAndRetire is dispatchTrampoline's per-Scheduler half: it runs self's
// body to completion, then retires self and hands control to whatever
// should run next (the queue's new head, or the host if the queue is now
// empty).
func (s *Scheduler) runAndRetire(self *tcb.TCB) {
	self.Body(self.Arg)

	s.queue.RemoveHead()
	s.pool.Push(self)
	s.logger.WithThread(self.ID).Debug("retire")
	s.observer.ObserveRetire(self.ID)

	if s.queue.Empty() {
		hostSave := s.hostSave
		s.hostActive = false
		s.logger.Debug("host-drain")
		s.observer.ObserveHostDrain()
		ctx.RestoreHost(&hostSave)
		return
	}

	next := s.queue.Head()
	fresh := next.RunCount == 0
	next.RunCount++
	s.logger.WithThread(next.ID).Debug("dispatch", "run_count", next.RunCount, "fresh", fresh)
	s.observer.ObserveDispatch(next.ID, next.RunCount, fresh)
	if fresh {
		// No-save variant of BackupAndLaunch: the retiring context is saved
		// into a throwaway SaveArea that nothing ever resumes. self.Regs is
		// not used, because self is already pooled and the next Create may
		// hand it out again; on the portable backend a save into it would
		// leave this goroutine parked on the channel the recycled TCB later
		// suspends on. The five primitives in internal/ctx cover this case
		// without a sixth "launch, don't save" leaf.
		var discard ctx.SaveArea
		ctx.BackupAndLaunch(next.Handle(), next.StackTop(), &discard)
	} else {
		ctx.RestoreUthread(&next.Regs)
	}
}

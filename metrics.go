package uthread

import "sync/atomic"

// Observer allows pluggable instrumentation of scheduler lifecycle events.
// All methods must be cheap and non-blocking — they are called from the
// single goroutine driving the scheduler, on the hot dispatch path.
type Observer interface {
	// ObserveCreate is called when Create appends a new TCB to the queue.
	ObserveCreate(id uint64)

	// ObserveDispatch is called every time the scheduler transfers control
	// into a uthread, whether freshly launched (fresh == true, run_cnt was
	// 0) or resumed (fresh == false).
	ObserveDispatch(id uint64, runCount uint64, fresh bool)

	// ObserveYield is called when a running uthread calls Yield, before the
	// next queue member is dispatched (which is the yielder itself when it is
	// the sole member).
	ObserveYield(id uint64)

	// ObserveRetire is called when a uthread's body returns and it is
	// unlinked from the queue and pushed onto the pool.
	ObserveRetire(id uint64)

	// ObserveHostDrain is called when the run queue empties and control
	// returns to the host OS-thread context.
	ObserveHostDrain()
}

// NoOpObserver discards every callback. It is the default when Options.
// Observer is nil.
type NoOpObserver struct{}

func (NoOpObserver) ObserveCreate(uint64)                 {}
func (NoOpObserver) ObserveDispatch(uint64, uint64, bool) {}
func (NoOpObserver) ObserveYield(uint64)                  {}
func (NoOpObserver) ObserveRetire(uint64)                  {}
func (NoOpObserver) ObserveHostDrain()                    {}

// Metrics accumulates counts of scheduler lifecycle events using atomics,
// so a *Metrics can be shared and read from outside the scheduler's owning
// goroutine (the counters themselves are the only thing safe to touch
// cross-thread; nothing else in this module is).
type Metrics struct {
	Creates    atomic.Uint64
	Dispatches atomic.Uint64
	Resumes    atomic.Uint64
	Yields     atomic.Uint64
	Retires    atomic.Uint64
	HostDrains atomic.Uint64
}

// NewMetrics returns a zeroed Metrics.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// MetricsSnapshot is a point-in-time copy of Metrics suitable for
// assertions or reporting.
type MetricsSnapshot struct {
	Creates    uint64
	Dispatches uint64
	Resumes    uint64
	Yields     uint64
	Retires    uint64
	HostDrains uint64
}

// Snapshot copies the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Creates:    m.Creates.Load(),
		Dispatches: m.Dispatches.Load(),
		Resumes:    m.Resumes.Load(),
		Yields:     m.Yields.Load(),
		Retires:    m.Retires.Load(),
		HostDrains: m.HostDrains.Load(),
	}
}

// MetricsObserver adapts a *Metrics to the Observer interface.
type MetricsObserver struct {
	metrics *Metrics
}

// NewMetricsObserver returns an Observer that records every callback onto m.
func NewMetricsObserver(m *Metrics) *MetricsObserver {
	return &MetricsObserver{metrics: m}
}

func (o *MetricsObserver) ObserveCreate(uint64) {
	o.metrics.Creates.Add(1)
}

func (o *MetricsObserver) ObserveDispatch(_ uint64, _ uint64, fresh bool) {
	if fresh {
		o.metrics.Dispatches.Add(1)
	} else {
		o.metrics.Resumes.Add(1)
	}
}

func (o *MetricsObserver) ObserveYield(uint64) {
	o.metrics.Yields.Add(1)
}

func (o *MetricsObserver) ObserveRetire(uint64) {
	o.metrics.Retires.Add(1)
}

func (o *MetricsObserver) ObserveHostDrain() {
	o.metrics.HostDrains.Add(1)
}

var (
	_ Observer = NoOpObserver{}
	_ Observer = (*MetricsObserver)(nil)
)

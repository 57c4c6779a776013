package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/nvidia/go-uthread"
	"github.com/nvidia/go-uthread/internal/logging"
)

func main() {
	var (
		count   = flag.Int("n", 13, "Number of uthreads to create")
		yields  = flag.Int("yields", 2, "Number of internal yields per uthread body")
		verbose = flag.Bool("v", false, "Verbose output")
	)
	flag.Parse()

	logConfig := logging.DefaultConfig()
	if *verbose {
		logConfig.Level = logging.LevelDebug
	}
	logger := logging.NewLogger(logConfig)
	logging.SetDefault(logger)

	// A Scheduler must be driven by exactly one goroutine that has pinned
	// itself to its OS thread before the first Create/Yield.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	metrics := uthread.NewMetrics()
	sched, err := uthread.New(uthread.Options{
		Logger:   logger,
		Observer: uthread.NewMetricsObserver(metrics),
	})
	if err != nil {
		log.Fatalf("creating scheduler: %v", err)
	}
	defer func() {
		if err := sched.FreeUnused(); err != nil {
			logger.Error("error draining pool", "error", err)
		}
	}()

	var counter int
	logger.Info("creating uthreads", "count", *count, "yields", *yields)
	for i := 0; i < *count; i++ {
		if err := sched.Create(uthread.YieldingBody(&counter, *yields), sched); err != nil {
			log.Fatalf("create: %v", err)
		}
	}

	logger.Info("entering uthread regime")
	sched.Yield()

	snap := metrics.Snapshot()
	fmt.Printf("counter:    %d\n", counter)
	fmt.Printf("creates:    %d\n", snap.Creates)
	fmt.Printf("dispatches: %d (fresh)\n", snap.Dispatches)
	fmt.Printf("resumes:    %d\n", snap.Resumes)
	fmt.Printf("yields:     %d\n", snap.Yields)
	fmt.Printf("retires:    %d\n", snap.Retires)
	fmt.Printf("pool size:  %d\n", sched.PoolSize())
	fmt.Printf("queue size: %d\n", sched.QueueSize())

	os.Exit(0)
}

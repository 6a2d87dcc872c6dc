// Package jobs runs data-parallel jobs with explicit completion dependencies
// on top of a dynamic worker pool.
package jobs

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// Handle tracks completion of a scheduled job. The zero Handle is complete.
type Handle struct {
	done <-chan struct{}
}

// Complete blocks until the job and everything it depends on has finished.
func (h Handle) Complete() {
	if h.done != nil {
		<-h.done
	}
}

func (h Handle) IsCompleted() bool {
	if h.done == nil {
		return true
	}
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// CombineDependencies returns a handle that completes once all handles have.
func CombineDependencies(handles ...Handle) Handle {
	pending := make([]Handle, 0, len(handles))
	for _, h := range handles {
		if !h.IsCompleted() {
			pending = append(pending, h)
		}
	}
	switch len(pending) {
	case 0:
		return Handle{}
	case 1:
		return pending[0]
	}
	done := make(chan struct{})
	go func() {
		for _, h := range pending {
			h.Complete()
		}
		close(done)
	}()
	return Handle{done: done}
}

func CompleteAll(handles ...Handle) {
	for _, h := range handles {
		h.Complete()
	}
}

// Scheduler dispatches job batches to a worker pool. A job waits for its
// dependency on a separate goroutine, so pool workers only ever run ready work.
type Scheduler struct {
	pool      worker.DynamicWorkerPool
	workers   int
	taskID    atomic.Int64
	scheduled atomic.Int64
}

// NewScheduler creates a scheduler with the given worker count; workers <= 0
// uses one less than the CPU count.
func NewScheduler(workers int) *Scheduler {
	if workers <= 0 {
		workers = max(runtime.NumCPU()-1, 1)
	}
	return &Scheduler{
		pool:    worker.NewDynamicWorkerPool(workers, 256, time.Second),
		workers: workers,
	}
}

func (s *Scheduler) Workers() int { return s.workers }

// Scheduled returns the number of jobs scheduled since creation.
func (s *Scheduler) Scheduled() int64 { return s.scheduled.Load() }

// Schedule runs fn once after dep completes.
func (s *Scheduler) Schedule(dep Handle, fn func()) Handle {
	return s.ScheduleParallel(1, 1, dep, func(int) { fn() })
}

// ScheduleParallel runs fn(i) for every i in [0,n) after dep completes, in
// batches of batchSize indices. n <= 0 schedules nothing and returns dep.
func (s *Scheduler) ScheduleParallel(n, batchSize int, dep Handle, fn func(i int)) Handle {
	return s.ScheduleBatches(n, batchSize, dep, func(start, end int) {
		for i := start; i < end; i++ {
			fn(i)
		}
	})
}

// ScheduleBatches is ScheduleParallel with fn called once per batch on the
// half-open range [start, end).
func (s *Scheduler) ScheduleBatches(n, batchSize int, dep Handle, fn func(start, end int)) Handle {
	if n <= 0 {
		return dep
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	s.scheduled.Add(1)

	done := make(chan struct{})
	go func() {
		dep.Complete()

		var wg sync.WaitGroup
		for start := 0; start < n; start += batchSize {
			end := min(start+batchSize, n)
			wg.Add(1)
			s.pool.SubmitTask(worker.Task{
				ID: int(s.taskID.Add(1)),
				Do: func() (any, error) {
					defer wg.Done()
					fn(start, end)
					return nil, nil
				},
			})
		}
		wg.Wait()
		close(done)
	}()
	return Handle{done: done}
}

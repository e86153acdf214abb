// Package batch fans function-level analyses out across a worker pool,
// one Matcher per function — the spec's "distinct functions are trivially
// parallelizable" callout. Grounded on the teacher's pkg/search/worker.go
// (WorkerPool, SearchTask, RunTasks): a buffered channel of tasks, N
// worker goroutines, sync/atomic counters, and a 10-second-ticker
// progress reporter.
package batch

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bbfold/bbfold/pkg/block"
	"github.com/bbfold/bbfold/pkg/inst"
	"github.com/bbfold/bbfold/pkg/match"
	"github.com/bbfold/bbfold/pkg/prime"
)

// Task is one function to analyze.
type Task struct {
	FuncAddr            uint64
	Decoder             inst.Decoder
	Builder             inst.CFGBuilder
	Primes              *prime.Table
	MinFunctionSize     int
	MinFunctionHeadSize int
}

// Outcome is the result of running one Task.
type Outcome struct {
	FuncAddr uint64
	Classes  []match.Class
	Err      error
}

// Config tunes a WorkerPool.
type Config struct {
	NumWorkers int
	Verbose    bool
}

// WorkerPool runs a slice of Tasks to completion, fanning them across
// NumWorkers goroutines.
type WorkerPool struct {
	NumWorkers int
	Verbose    bool

	analyzed     atomic.Int64
	classesFound atomic.Int64
	completed    atomic.Int64
}

// NewWorkerPool returns a pool sized per cfg (0 workers means
// runtime.NumCPU()).
func NewWorkerPool(cfg Config) *WorkerPool {
	n := cfg.NumWorkers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return &WorkerPool{NumWorkers: n, Verbose: cfg.Verbose}
}

// Stats returns the running totals so far.
func (wp *WorkerPool) Stats() (analyzed, classesFound, completed int64) {
	return wp.analyzed.Load(), wp.classesFound.Load(), wp.completed.Load()
}

// Run distributes tasks across the pool and returns one Outcome per task
// (order not guaranteed to match the input order).
func (wp *WorkerPool) Run(tasks []Task) []Outcome {
	total := int64(len(tasks))
	ch := make(chan Task, len(tasks))
	for _, t := range tasks {
		ch <- t
	}
	close(ch)

	outcomes := make(chan Outcome, len(tasks))
	done := make(chan struct{})
	start := time.Now()

	go wp.reportProgress(total, start, done)

	var wg sync.WaitGroup
	for i := 0; i < wp.NumWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range ch {
				outcomes <- wp.runOne(task)
				wp.completed.Add(1)
			}
		}()
	}
	wg.Wait()
	close(done)
	close(outcomes)

	out := make([]Outcome, 0, len(tasks))
	for o := range outcomes {
		out = append(out, o)
	}
	return out
}

func (wp *WorkerPool) runOne(task Task) Outcome {
	store, err := match.BuildFromCFG(task.Decoder, task.Builder, task.FuncAddr, task.Primes)
	if err != nil {
		return Outcome{FuncAddr: task.FuncAddr, Err: err}
	}

	m := match.New(store, block.NewFingerprinter(task.Decoder, task.Primes))
	if task.MinFunctionSize > 0 {
		m.MinFunctionSize = task.MinFunctionSize
	}
	m.MinFunctionHeadSize = task.MinFunctionHeadSize

	classes, err := m.Analyze()
	wp.analyzed.Add(1)
	if err != nil {
		return Outcome{FuncAddr: task.FuncAddr, Err: err}
	}
	wp.classesFound.Add(int64(len(classes)))

	if wp.Verbose {
		fmt.Printf("  %#x: %d classes\n", task.FuncAddr, len(classes))
	}
	return Outcome{FuncAddr: task.FuncAddr, Classes: classes}
}

func (wp *WorkerPool) reportProgress(total int64, start time.Time, done <-chan struct{}) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			comp := wp.completed.Load()
			elapsed := time.Since(start)
			pct := float64(comp) / float64(total) * 100
			var eta string
			if comp > 0 {
				remaining := time.Duration(float64(elapsed) * float64(total-comp) / float64(comp))
				eta = remaining.Round(time.Second).String()
			} else {
				eta = "..."
			}
			fmt.Printf("  [%s] %d/%d functions (%.1f%%) | %d classes | ETA %s\n",
				elapsed.Round(time.Second), comp, total, pct, wp.classesFound.Load(), eta)
		}
	}
}

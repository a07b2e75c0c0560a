// Package concurrency provides the bounded worker pool pattern used by
// every parallel stage (Grouper, WriteBack): a counting semaphore plus a
// fan-out/collector shape, generalized from the teacher's
// internal/types.Semaphore and its repeated use across scanner, verifier
// and deduper.
package concurrency

import (
	"runtime"
	"sync"
)

// Semaphore implements a counting semaphore using a buffered channel.
// It limits concurrent access to a resource by blocking when the limit
// is reached.
type Semaphore chan struct{}

// NewSemaphore creates a semaphore that allows up to n concurrent
// acquisitions.
func NewSemaphore(n int) Semaphore { return make(chan struct{}, n) }

// Acquire blocks until a slot is available, then claims it.
func (s Semaphore) Acquire() { s <- struct{}{} }

// Release frees a slot, unblocking one waiting Acquire call.
func (s Semaphore) Release() { <-s }

// DefaultWorkers returns min(logical_cpus, 16), the pool size spec.md §5
// mandates for hashing and write-back.
func DefaultWorkers() int {
	return min(runtime.NumCPU(), 16)
}

// Pool runs a bounded-concurrency fan-out over a slice of items, collecting
// one result per item via Run. Each item is processed by at most one
// worker; Run blocks until every item has been processed.
type Pool[T, R any] struct {
	Workers int
}

// New creates a Pool with the given worker count. A non-positive count is
// replaced with DefaultWorkers().
func New[T, R any](workers int) *Pool[T, R] {
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	return &Pool[T, R]{Workers: workers}
}

// Run applies fn to each item with bounded concurrency and returns results
// in the same order as items. fn is responsible for its own error handling
// (e.g. appending to a shared error-collection channel); a panic in fn is
// not recovered.
func (p *Pool[T, R]) Run(items []T, fn func(T) R) []R {
	results := make([]R, len(items))
	sem := NewSemaphore(p.Workers)
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Add(1)
		go func(i int, item T) {
			defer wg.Done()
			sem.Acquire()
			defer sem.Release()
			results[i] = fn(item)
		}(i, item)
	}
	wg.Wait()
	return results
}

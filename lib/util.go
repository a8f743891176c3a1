package lib

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// CatchPanic() catches any panic in the function call or child function calls
func CatchPanic(l LoggerI) {
	if r := recover(); r != nil {
		l.Errorf("recovered from panic: %v\n%s", r, string(debug.Stack()))
	}
}

// SafeGo() runs fn in a goroutine that logs instead of crashing the process on panic
func SafeGo(l LoggerI, fn func()) {
	go func() {
		defer CatchPanic(l)
		fn()
	}()
}

// NewBackoff() returns an exponential backoff bounded by maxRetries attempts
func NewBackoff(initial time.Duration, maxRetries uint64) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initial
	b.MaxElapsedTime = 0
	return backoff.WithMaxRetries(b, maxRetries)
}

// DeDuplicator is a generic structure that serves as a simple anti-duplication check
type DeDuplicator[T comparable] struct {
	m map[T]struct{}
}

// NewDeDuplicator constructs a new object reference to a DeDuplicator
func NewDeDuplicator[T comparable]() *DeDuplicator[T] {
	return &DeDuplicator[T]{m: make(map[T]struct{})}
}

// Found checks for an existing entry and adds it to the map if it's not present
func (d *DeDuplicator[T]) Found(k T) bool {
	// check if the key already exists
	if _, exists := d.m[k]; exists {
		return true // It's a duplicate
	}
	// add the key to the map
	d.m[k] = struct{}{}
	// not a duplicate
	return false
}

// TimeTrack() logs how long a function took, use as `defer TimeTrack(l, "name", time.Now())`
func TimeTrack(l LoggerI, name string, start time.Time) {
	l.Debug(fmt.Sprintf("%s took %s", name, time.Since(start)))
}

package app

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/artist-analytics/logger"
)

// Result is the settled outcome of one fan-out branch
type Result[T any] struct {
	Value T
	Err   error
	Ran   bool
}

func (r *Result[T]) Ok() bool {
	return r.Ran && r.Err == nil
}

// settle runs fn in its own goroutine and writes the outcome to slot. A panic becomes the branch error,
// siblings are never affected.
func settle[T any](wg *sync.WaitGroup, branch string, slot *Result[T], fn func() (T, error)) {
	wg.Add(1)
	slot.Ran = true

	go func() {
		defer wg.Done()

		// Recovery for the goroutine
		defer func() {
			if err := recover(); err != nil {
				logger.Logger.Errorf("An unknown error happened in branch %s - error: %v\n%s", branch, err, string(debug.Stack()))
				slot.Err = fmt.Errorf("%s branch panicked: %v", branch, err)
			}
		}()

		slot.Value, slot.Err = fn()
	}()
}

package execution

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// ErrInvalidEnqueue is returned when something that cannot be run is offered
// to a WorkQueue.
var ErrInvalidEnqueue = errors.New("only runnable units can be enqueued")

// Runnable is a unit of work the queue can drive to completion.
type Runnable interface {
	Start() error
	Wait() error
}

// WorkQueue holds units until Process drains them with a fixed number of
// workers.
type WorkQueue struct {
	mu    sync.Mutex
	units []Runnable
}

// NewWorkQueue creates an empty queue.
func NewWorkQueue() *WorkQueue {
	return &WorkQueue{}
}

// Put enqueues item when it is Runnable and rejects anything else.
func (q *WorkQueue) Put(item any) error {
	unit, ok := item.(Runnable)
	if !ok {
		return fmt.Errorf("%w: got %T", ErrInvalidEnqueue, item)
	}
	return q.Enqueue(unit)
}

// Enqueue adds a unit to the queue.
func (q *WorkQueue) Enqueue(unit Runnable) error {
	if isNil(unit) {
		return fmt.Errorf("%w: got nil", ErrInvalidEnqueue)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.units = append(q.units, unit)
	return nil
}

// Len returns the number of units waiting.
func (q *WorkQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.units)
}

// Process runs every queued unit to completion using workerCount workers and
// returns once all of them have finished. Each unit is executed by exactly one
// worker. Errors from individual units never stop the others; they are joined
// into the returned error.
func (q *WorkQueue) Process(workerCount int) error {
	q.mu.Lock()
	units := q.units
	q.units = nil
	q.mu.Unlock()

	if len(units) == 0 {
		return nil
	}
	if workerCount <= 0 {
		workerCount = 1
	}

	pending := make(chan Runnable, len(units))
	for _, unit := range units {
		pending <- unit
	}
	close(pending)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for i := 1; i <= workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for unit := range pending {
				if err := runUnit(unit); err != nil {
					mu.Lock()
					errs = append(errs, fmt.Errorf("worker %d: %w", workerID, err))
					mu.Unlock()
				}
			}
		}(i)
	}
	wg.Wait()

	return errors.Join(errs...)
}

// runUnit starts and waits for one unit. Wait is called even when Start
// fails so the unit can finish its own bookkeeping.
func runUnit(unit Runnable) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unit panicked: %v", r)
		}
	}()

	startErr := unit.Start()
	waitErr := unit.Wait()
	if startErr != nil {
		return startErr
	}
	return waitErr
}

func isNil(unit Runnable) bool {
	if unit == nil {
		return true
	}
	v := reflect.ValueOf(unit)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

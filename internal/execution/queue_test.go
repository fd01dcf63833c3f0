package execution

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingUnit struct {
	starts   atomic.Int32
	waits    atomic.Int32
	startErr error
	waitErr  error
	panics   bool
}

func (u *countingUnit) Start() error {
	u.starts.Add(1)
	if u.panics {
		panic("boom")
	}
	return u.startErr
}

func (u *countingUnit) Wait() error {
	u.waits.Add(1)
	return u.waitErr
}

func TestWorkQueue_EachUnitRunsOnce(t *testing.T) {
	const n = 20

	for _, workers := range []int{1, 2, 3, 8, n + 5} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			q := NewWorkQueue()
			units := make([]*countingUnit, n)
			for i := range units {
				units[i] = &countingUnit{}
				require.NoError(t, q.Enqueue(units[i]))
			}
			assert.Equal(t, n, q.Len())

			require.NoError(t, q.Process(workers))

			for i, u := range units {
				assert.Equal(t, int32(1), u.starts.Load(), "unit %d started", i)
				assert.Equal(t, int32(1), u.waits.Load(), "unit %d waited", i)
			}
			assert.Equal(t, 0, q.Len())
		})
	}
}

func TestWorkQueue_ProcessRealProcesses(t *testing.T) {
	q := NewWorkQueue()
	procs := make([]*Process, 5)
	for i := range procs {
		procs[i] = NewProcess(fmt.Sprintf("echo %d", i), t.TempDir(), nil)
		require.NoError(t, q.Put(procs[i]))
	}

	require.NoError(t, q.Process(2))

	for i, p := range procs {
		assert.Equal(t, fmt.Sprintf("%d\n", i), string(p.Stdout()))
		assert.Equal(t, 1, p.Waits())
	}
}

func TestWorkQueue_PutRejectsNonRunnable(t *testing.T) {
	q := NewWorkQueue()

	assert.ErrorIs(t, q.Put("echo moo"), ErrInvalidEnqueue)
	assert.ErrorIs(t, q.Put(42), ErrInvalidEnqueue)
	assert.ErrorIs(t, q.Put(nil), ErrInvalidEnqueue)
	assert.Equal(t, 0, q.Len())
}

func TestWorkQueue_EnqueueRejectsNil(t *testing.T) {
	q := NewWorkQueue()
	var unit *countingUnit

	assert.ErrorIs(t, q.Enqueue(nil), ErrInvalidEnqueue)
	assert.ErrorIs(t, q.Enqueue(unit), ErrInvalidEnqueue)
}

func TestWorkQueue_ProcessEmpty(t *testing.T) {
	assert.NoError(t, NewWorkQueue().Process(4))
}

func TestWorkQueue_ZeroWorkersMeansOne(t *testing.T) {
	q := NewWorkQueue()
	u := &countingUnit{}
	require.NoError(t, q.Enqueue(u))

	require.NoError(t, q.Process(0))
	assert.Equal(t, int32(1), u.starts.Load())
}

func TestWorkQueue_FailuresDoNotStopOthers(t *testing.T) {
	startErr := errors.New("start failed")
	waitErr := errors.New("wait failed")

	q := NewWorkQueue()
	failingStart := &countingUnit{startErr: startErr}
	failingWait := &countingUnit{waitErr: waitErr}
	panicking := &countingUnit{panics: true}
	ok := &countingUnit{}
	for _, u := range []*countingUnit{failingStart, failingWait, panicking, ok} {
		require.NoError(t, q.Enqueue(u))
	}

	err := q.Process(2)

	require.Error(t, err)
	assert.ErrorIs(t, err, startErr)
	assert.ErrorIs(t, err, waitErr)
	assert.Contains(t, err.Error(), "panicked")
	assert.Equal(t, int32(1), failingStart.waits.Load())
	assert.Equal(t, int32(1), ok.starts.Load())
	assert.Equal(t, int32(1), ok.waits.Load())
}

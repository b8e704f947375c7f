package parallel

import (
	"errors"
	"sync/atomic"
	"testing"

	"go.uber.org/goleak"
	"gotest.tools/v3/assert"
)

func TestManagerRunsAllTasks(t *testing.T) {
	defer goleak.VerifyNone(t)

	const numTasks = 64

	pm := New(4)
	defer pm.Close()

	waiter := NewWaiter()

	errDoneCh := make(chan struct{})
	go func() {
		defer close(errDoneCh)
		for range waiter.Err() {
		}
	}()

	var counter int64
	for i := 0; i < numTasks; i++ {
		pm.Run(func() error {
			atomic.AddInt64(&counter, 1)
			return nil
		}, waiter)
	}

	waiter.Wait()
	<-errDoneCh

	assert.Equal(t, int64(numTasks), atomic.LoadInt64(&counter))
}

func TestManagerCollectsTaskErrors(t *testing.T) {
	defer goleak.VerifyNone(t)

	errTask := errors.New("task failed")

	pm := New(2)
	defer pm.Close()

	waiter := NewWaiter()

	var got []error
	errDoneCh := make(chan struct{})
	go func() {
		defer close(errDoneCh)
		for err := range waiter.Err() {
			got = append(got, err)
		}
	}()

	pm.Run(func() error { return nil }, waiter)
	pm.Run(func() error { return errTask }, waiter)
	pm.Run(func() error { return errTask }, waiter)

	waiter.Wait()
	<-errDoneCh

	assert.Equal(t, 2, len(got))
	for _, err := range got {
		assert.Assert(t, errors.Is(err, errTask))
	}
}

func TestManagerBoundsConcurrency(t *testing.T) {
	defer goleak.VerifyNone(t)

	const size = 2

	pm := New(size)
	defer pm.Close()

	waiter := NewWaiter()

	errDoneCh := make(chan struct{})
	go func() {
		defer close(errDoneCh)
		for range waiter.Err() {
		}
	}()

	var active, peak int64
	for i := 0; i < 32; i++ {
		pm.Run(func() error {
			n := atomic.AddInt64(&active, 1)
			for {
				old := atomic.LoadInt64(&peak)
				if n <= old || atomic.CompareAndSwapInt64(&peak, old, n) {
					break
				}
			}
			atomic.AddInt64(&active, -1)
			return nil
		}, waiter)
	}

	waiter.Wait()
	<-errDoneCh

	assert.Assert(t, atomic.LoadInt64(&peak) <= size)
}

func TestErrorFullCommand(t *testing.T) {
	t.Parallel()

	original := errors.New("open failed")

	testcases := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "with destination",
			err:      &Error{Op: "sort", Src: "data/input", Dst: "data/output", Original: original},
			expected: "sort data/input data/output",
		},
		{
			name:     "without destination",
			err:      &Error{Op: "sort-chunk", Src: "data/input", Original: original},
			expected: "sort-chunk data/input",
		},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, tc.err.FullCommand())
			assert.Equal(t, "open failed", tc.err.Error())
			assert.Assert(t, errors.Is(tc.err, original))
		})
	}
}

package sorter

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/hashicorp/go-multierror"

	"github.com/eroshov/xsort/log"
	"github.com/eroshov/xsort/runio"
)

// mergeHeap orders (value, stream) entries by value ascending, ties broken
// by stream index. The tie-break only makes the order total; the key is the
// whole record, so there is no stability concern.
type mergeHeap []heapEntry

type heapEntry struct {
	value  uint32
	stream int
}

func (h mergeHeap) Len() int { return len(h) }

func (h mergeHeap) Less(i, j int) bool {
	if h[i].value != h[j].value {
		return h[i].value < h[j].value
	}
	return h[i].stream < h[j].stream
}

func (h mergeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *mergeHeap) Push(x interface{}) { *h = append(*h, x.(heapEntry)) }

func (h *mergeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// mergePass sweeps the run namespace 0..R-1 once, merging consecutive
// batches of up to maxFanout runs into single larger runs. Each batch writes
// its output under a "_"-prefixed temporary name, deletes its inputs, then
// renames the output into the sequential namespace. The pass returns the new
// run count ceil(R/maxFanout).
func (s *Sorter) mergePass(ctx context.Context) (int, error) {
	var first, batch int

	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		readers, err := s.openRuns(first)
		if err != nil {
			return 0, err
		}
		if len(readers) == 0 {
			return batch, nil
		}

		err = s.mergeBatch(readers, batch)
		if err != nil {
			closeAll(readers)
			return 0, err
		}

		// inputs must be gone before the rename: the output name batch is
		// below first once first >= maxFanout, so a surviving input would
		// collide with it
		if err := s.removeRuns(readers, first); err != nil {
			return 0, err
		}
		if err := os.Rename(s.tempPath(batch), s.runPath(batch)); err != nil {
			return 0, err
		}

		log.Trace(log.TraceMessage{
			Operation: "merge",
			Target:    s.runPath(batch),
			Message:   fmt.Sprintf("%d runs", len(readers)),
		})

		first += len(readers)
		batch++
	}
}

// openRuns opens up to maxFanout consecutive runs starting at id first. A
// missing run file ends the batch: the namespace is dense, so the first
// absent name means the remaining runs are fewer than the fan-out.
func (s *Sorter) openRuns(first int) ([]*runio.Reader, error) {
	var readers []*runio.Reader

	for i := 0; i < s.maxFanout; i++ {
		r, err := runio.NewReader(s.runPath(first+i), s.bufferSize)
		if errors.Is(err, fs.ErrNotExist) {
			break
		}
		if err != nil {
			closeAll(readers)
			return nil, err
		}
		readers = append(readers, r)
	}

	return readers, nil
}

// mergeBatch drains the given run streams into the batch's temporary output
// file in ascending order using a min-heap.
func (s *Sorter) mergeBatch(readers []*runio.Reader, batch int) error {
	// seed the heap with one record per stream, then heapify bottom-up in
	// O(k) rather than pushing k times
	entries := make(mergeHeap, len(readers))
	for i, r := range readers {
		v, err := r.Next()
		if err != nil {
			if err == io.EOF {
				err = fmt.Errorf("run %q is empty", r.Name())
			}
			return err
		}
		entries[i] = heapEntry{value: v, stream: i}
	}
	h := &entries
	heap.Init(h)

	w, err := runio.NewWriter(s.tempPath(batch), s.bufferSize)
	if err != nil {
		return err
	}

	for h.Len() > 0 {
		e := heap.Pop(h).(heapEntry)

		if err := w.Put(e.value); err != nil {
			w.Close()
			return err
		}

		v, err := readers[e.stream].Next()
		switch {
		case err == nil:
			heap.Push(h, heapEntry{value: v, stream: e.stream})
		case err == io.EOF:
		default:
			w.Close()
			return err
		}
	}

	return w.Close()
}

// removeRuns closes and deletes the batch's input runs first..first+k-1.
func (s *Sorter) removeRuns(readers []*runio.Reader, first int) error {
	var merror error

	for i, r := range readers {
		if err := r.Close(); err != nil {
			merror = multierror.Append(merror, err)
		}
		if err := os.Remove(s.runPath(first + i)); err != nil {
			merror = multierror.Append(merror, err)
		}
	}

	if merr, ok := merror.(*multierror.Error); ok {
		return merr.ErrorOrNil()
	}
	return merror
}

func closeAll(readers []*runio.Reader) {
	for _, r := range readers {
		r.Close()
	}
}

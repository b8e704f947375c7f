package sorter

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/exp/slices"

	"github.com/eroshov/xsort/log"
	"github.com/eroshov/xsort/parallel"
	"github.com/eroshov/xsort/runio"
)

// sortChunks reads the input in disjoint fixed-stride windows, sorts each
// window in memory and writes it as a run file. Windows are processed in
// rounds of ioWorkers concurrent workers; each round is a join barrier. It
// returns the number of runs produced, which names the dense run namespace
// 0..N-1: a worker that reads no records produces no file, and such workers
// only occur at the tail of the final round.
func (s *Sorter) sortChunks(ctx context.Context, input string) (int, error) {
	chunkElements := s.usableMemory / runio.RecordSize / int64(s.ioWorkers)
	if chunkElements == 0 {
		chunkElements = 1
	}

	// one element buffer per worker, reused across rounds; total resident
	// element memory stays within usableMemory
	buffers := make([][]uint32, s.ioWorkers)
	for i := range buffers {
		buffers[i] = make([]uint32, chunkElements)
	}

	pm := parallel.New(s.ioWorkers)
	defer pm.Close()

	var (
		nextOffset int64
		nextFileID int
		numRuns    int
	)
	stride := chunkElements * runio.RecordSize

	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		produced := make([]int, s.ioWorkers)
		waiter := parallel.NewWaiter()

		var (
			merror    error
			errDoneCh = make(chan struct{})
		)
		go func() {
			defer close(errDoneCh)
			for err := range waiter.Err() {
				merror = multierror.Append(merror, err)
			}
		}()

		for i := 0; i < s.ioWorkers; i++ {
			i, offset, id := i, nextOffset, nextFileID

			pm.Run(func() error {
				n, err := s.sortChunk(input, buffers[i], offset, id)
				if err != nil {
					return &parallel.Error{
						Op:       "sort-chunk",
						Src:      input,
						Dst:      s.runPath(id),
						Original: err,
					}
				}
				produced[i] = n
				return nil
			}, waiter)

			nextOffset += stride
			nextFileID++
		}

		waiter.Wait()
		<-errDoneCh

		if merror != nil {
			return 0, merror
		}

		roundTotal := 0
		for _, n := range produced {
			roundTotal += n
		}
		numRuns += roundTotal

		// a round that fills fewer runs than it has workers has consumed
		// all input
		if roundTotal < s.ioWorkers {
			return numRuns, nil
		}
	}
}

// sortChunk reads up to len(buf) records from input at the given byte
// offset, sorts them ascending and writes them as the run named by id. It
// returns the number of runs produced: 0 when the window is past EOF, 1
// otherwise.
func (s *Sorter) sortChunk(input string, buf []uint32, offset int64, id int) (int, error) {
	f, err := os.Open(input)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return 0, err
	}

	br := bufio.NewReaderSize(f, s.bufferSize)
	n, err := runio.ReadRecords(br, buf)
	if err != nil {
		return 0, fmt.Errorf("%q: offset %d: %w", input, offset, err)
	}
	if n == 0 {
		return 0, nil
	}

	records := buf[:n]
	slices.Sort(records)

	w, err := runio.NewWriter(s.runPath(id), s.bufferSize)
	if err != nil {
		return 0, err
	}
	if err := w.PutAll(records); err != nil {
		w.Close()
		return 0, err
	}
	if err := w.Close(); err != nil {
		return 0, err
	}

	log.Trace(log.TraceMessage{
		Operation: "chunk",
		Target:    w.Name(),
		Message:   fmt.Sprintf("%d records", n),
	})

	return 1, nil
}

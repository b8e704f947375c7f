// Package sorter implements an external merge sort for binary files of
// little-endian 32-bit unsigned integers. Inputs may exceed the memory
// budget by arbitrary factors; the sorter spills sorted runs to a scratch
// directory and merges them in passes. Every intermediate file is a sorted
// run, which is the invariant the whole design preserves.
package sorter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/termie/go-shutil"

	"github.com/eroshov/xsort/log"
	"github.com/eroshov/xsort/parallel/fdlimit"
	"github.com/eroshov/xsort/runio"
	"github.com/eroshov/xsort/strutil"
)

// ErrCorruptInput is returned when the input length is not a whole number of
// records. A stream that ends mid-record yields runio.ErrPartialRecord.
var ErrCorruptInput = errors.New("input is not a whole number of records")

// Config holds the sorter configuration.
type Config struct {
	// MemoryBudget is the upper bound in bytes on the resident working set.
	MemoryBudget int64

	// BufferSize is the per-stream I/O buffer size in bytes. It is uniform
	// across all open streams.
	BufferSize int

	// ScratchDir is the directory holding intermediate run files. Defaults
	// to the current working directory.
	ScratchDir string
}

// Sorter sorts binary u32 files within a fixed memory budget.
type Sorter struct {
	bufferSize int
	scratchDir string
	budget
}

// New creates a Sorter from the given configuration. It returns ErrBudget
// when the memory budget cannot admit at least one merge stream.
func New(cfg Config) (*Sorter, error) {
	b, err := solveBudget(cfg.MemoryBudget, cfg.BufferSize)
	if err != nil {
		return nil, err
	}

	// a wide merge holds one descriptor per input run
	_ = fdlimit.Raise()

	scratch := cfg.ScratchDir
	if scratch == "" {
		scratch = "."
	}

	return &Sorter{
		bufferSize: cfg.BufferSize,
		scratchDir: scratch,
		budget:     b,
	}, nil
}

// MaxFanout returns the derived merge fan-out upper bound.
func (s *Sorter) MaxFanout() int { return s.maxFanout }

// UsableMemory returns the derived byte count available for record buffers.
func (s *Sorter) UsableMemory() int64 { return s.usableMemory }

// IOWorkers returns the derived chunk-sort worker count.
func (s *Sorter) IOWorkers() int { return s.ioWorkers }

// Sort reads the file at input and writes its records in ascending order to
// output. It blocks until the sort completes or fails. On failure the
// scratch directory may contain orphan intermediate files; cleaning those up
// is the caller's responsibility.
func (s *Sorter) Sort(ctx context.Context, input, output string) error {
	fi, err := os.Stat(input)
	if err != nil {
		return err
	}
	if fi.Size()%runio.RecordSize != 0 {
		return fmt.Errorf("%q: size %d: %w", input, fi.Size(), ErrCorruptInput)
	}

	log.Debug(log.DebugMessage{
		Operation: "sort",
		Message: fmt.Sprintf(
			"usable memory %v, max fanout %d, io workers %d",
			strutil.HumanizeBytes(s.usableMemory), s.maxFanout, s.ioWorkers,
		),
	})

	numRuns, err := s.sortChunks(ctx, input)
	if err != nil {
		return err
	}

	// empty input implies empty output
	if numRuns == 0 {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		return f.Close()
	}

	for numRuns > 1 {
		numRuns, err = s.mergePass(ctx)
		if err != nil {
			return err
		}
	}

	return moveFile(s.runPath(0), output)
}

// runPath returns the path of the run with the given sequential id.
func (s *Sorter) runPath(id int) string {
	return filepath.Join(s.scratchDir, strconv.Itoa(id))
}

// tempPath returns the in-progress output path for the given merge batch.
func (s *Sorter) tempPath(batch int) string {
	return filepath.Join(s.scratchDir, "_"+strconv.Itoa(batch))
}

// moveFile renames src to dst. The rename may cross filesystems when the
// scratch and output directories differ; on EXDEV it falls back to
// copy-and-unlink.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}

	if _, err := shutil.Copy(src, dst, true); err != nil {
		return err
	}
	return os.Remove(src)
}

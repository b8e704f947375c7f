package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/eroshov/xsort/log"
	"github.com/eroshov/xsort/log/stat"
	"github.com/eroshov/xsort/runio"
	"github.com/eroshov/xsort/sorter"
	"github.com/eroshov/xsort/strutil"
)

// Sort holds sort operation flags and states.
type Sort struct {
	src         string
	dst         string
	op          string
	fullCommand string

	// flags
	memoryBudget int64
	bufferSize   int
	scratchDir   string
}

// NewSort creates Sort from cli.Context.
func NewSort(c *cli.Context) Sort {
	src := defaultInputPath
	if c.Args().Len() > 0 {
		src = c.Args().Get(0)
	}
	dst := defaultOutputPath
	if c.Args().Len() > 1 {
		dst = c.Args().Get(1)
	}

	return Sort{
		src:         src,
		dst:         dst,
		op:          "sort",
		fullCommand: commandFromContext(c),

		memoryBudget: c.Int64("memory-budget"),
		bufferSize:   c.Int("buffer-size"),
		scratchDir:   c.String("scratch-dir"),
	}
}

// Run starts the external sort and blocks until it completes or fails.
func (s Sort) Run(ctx context.Context) (err error) {
	defer stat.Collect(s.op, &err)()

	if err := s.checkScratchDir(); err != nil {
		printError(s.fullCommand, s.op, err)
		return err
	}

	srt, err := sorter.New(sorter.Config{
		MemoryBudget: s.memoryBudget,
		BufferSize:   s.bufferSize,
		ScratchDir:   s.scratchDir,
	})
	if err != nil {
		printError(s.fullCommand, s.op, err)
		return err
	}

	log.Debug(log.DebugMessage{
		Operation: s.op,
		Command:   s.fullCommand,
		Message: fmt.Sprintf(
			"budget %v, buffer %v, scratch %q",
			strutil.HumanizeBytes(s.memoryBudget),
			strutil.HumanizeBytes(int64(s.bufferSize)),
			s.scratchDir,
		),
	})

	if err := srt.Sort(ctx, s.src, s.dst); err != nil {
		printError(s.fullCommand, s.op, err)
		return err
	}

	msg := log.InfoMessage{
		Operation:   s.op,
		Source:      s.src,
		Destination: s.dst,
	}
	log.Info(msg)

	return nil
}

// checkScratchDir refuses to start when the scratch directory already holds
// run-namespace names, which would be indistinguishable from this run's
// intermediates. Orphans from a failed run must be removed by the caller.
func (s Sort) checkScratchDir() error {
	names, err := runio.Scan(s.scratchDir)
	if err != nil {
		return err
	}
	if len(names) > 0 {
		return fmt.Errorf(
			"scratch directory %q contains leftover run files: %v",
			s.scratchDir, strings.Join(names, ", "),
		)
	}
	return nil
}

func commandFromContext(c *cli.Context) string {
	cmd := c.Command.FullName()
	if c.Args().Len() > 0 {
		cmd = fmt.Sprintf("%v %v", cmd, strings.Join(c.Args().Slice(), " "))
	}

	return cmd
}

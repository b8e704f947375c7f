package command

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/eroshov/xsort/log"
	"github.com/eroshov/xsort/log/stat"
)

const (
	defaultMemoryBudget = 128 << 20
	defaultBufferSize   = 8 << 10

	defaultInputPath  = "data/input"
	defaultOutputPath = "data/output"

	appName = "xsort"
)

var appHelpTemplate = `Name:
	{{.Name}} - {{.Usage}}

Usage:
	{{.Name}} [options] [source] [destination]

	source defaults to "` + defaultInputPath + `" and destination to "` + defaultOutputPath + `".

Options:
	{{range .VisibleFlags}}{{.}}
	{{end}}
Commands:
	{{range .VisibleCommands}}{{join .Names ", "}}{{"\t"}}{{.Usage}}
	{{end}}
Examples:
	1. Sort "` + defaultInputPath + `" into "` + defaultOutputPath + `" with the defaults
		 > xsort

	2. Sort a large file within a 1 GiB budget, keeping intermediates on a scratch disk
		 > xsort --memory-budget 1073741824 --scratch-dir /mnt/scratch big.bin big.sorted.bin
`

var app = &cli.App{
	Name:                  appName,
	Usage:                 "sort binary files of 32-bit unsigned integers that do not fit in memory",
	CustomAppHelpTemplate: appHelpTemplate,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "enable JSON formatted output",
		},
		&cli.Int64Flag{
			Name:  "memory-budget",
			Value: defaultMemoryBudget,
			Usage: "upper bound in bytes on the resident working set",
		},
		&cli.IntFlag{
			Name:  "buffer-size",
			Value: defaultBufferSize,
			Usage: "per-stream I/O buffer size in bytes",
		},
		&cli.StringFlag{
			Name:  "scratch-dir",
			Value: ".",
			Usage: "directory holding intermediate run files",
		},
		&cli.GenericFlag{
			Name: "log",
			Value: &EnumValue{
				Enum:    []string{"trace", "debug", "info", "error"},
				Default: "info",
			},
			Usage: "log level: (trace, debug, info, error)",
		},
		&cli.BoolFlag{
			Name:  "stat",
			Usage: "collect statistics of program execution and display it at the end",
		},
	},
	Before: func(c *cli.Context) error {
		printJSON := c.Bool("json")
		logLevel := c.String("log")
		isStat := c.Bool("stat")

		log.Init(logLevel, printJSON)

		if isStat {
			stat.InitStat()
		}

		if c.Int64("memory-budget") <= 0 {
			err := fmt.Errorf("memory budget must be a positive value")
			printError(commandFromContext(c), "sort", err)
			return err
		}
		if c.Int("buffer-size") <= 0 {
			err := fmt.Errorf("buffer size must be a positive value")
			printError(commandFromContext(c), "sort", err)
			return err
		}

		return nil
	},
	CommandNotFound: func(c *cli.Context, command string) {
		msg := log.ErrorMessage{
			Command: command,
			Err:     "command not found",
		}
		log.Error(msg)

		// After callback is not called if app exits with cli.Exit.
		log.Close()
	},
	OnUsageError: func(c *cli.Context, err error, isSubcommand bool) error {
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", "Incorrect Usage:", err.Error())
			_, _ = fmt.Fprintf(os.Stderr, "See 'xsort --help' for usage\n")
			return err
		}

		return nil
	},
	Action: func(c *cli.Context) error {
		if c.Args().Len() > 2 {
			err := fmt.Errorf("expected at most a source and a destination argument")
			printError(commandFromContext(c), "sort", err)
			return err
		}

		return NewSort(c).Run(c.Context)
	},
	After: func(c *cli.Context) error {
		if c.Bool("stat") && len(stat.Statistics()) > 0 {
			log.Stat(stat.Statistics())
		}

		log.Close()
		return nil
	},
}

func Commands() []*cli.Command {
	return []*cli.Command{
		NewVersionCommand(),
	}
}

// Main is the entrypoint function to run given commands.
func Main(ctx context.Context, args []string) error {
	app.Commands = Commands()

	return app.RunContext(ctx, args)
}

// halfsquare composes one or two images into a half-square triangle block.
//
// Usage:
//
//	halfsquare <file1> [<file2>] [-o <outfile>] [-s <size>] [-d]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/esimov/halfsquare"
	"github.com/esimov/halfsquare/utils"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// usageError marks mistakes in the command line itself.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

type options struct {
	output  string
	size    int
	debug   bool
	workdir string
	timeout time.Duration
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var uerr *usageError
	if errors.As(err, &uerr) {
		fmt.Fprintf(stderr, "Error: %v\n\n%s", err, cmd.UsageString())
		return exitUsage
	}
	fmt.Fprintf(stderr, "%sError: %v%s\n", utils.ErrorColor, err, utils.DefaultColor)
	return exitError
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "halfsquare <file1> [<file2>]",
		Short: "Generate half-square triangles",
		Long: "Generate half-square triangles.\n\n" +
			"Passing only one input file renders one of the triangles transparent.\n" +
			"Inputs may be local files or http(s) URLs.",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args: func(_ *cobra.Command, args []string) error {
			if n := len(args); n < 1 || n > 2 {
				return &usageError{fmt.Errorf("%w, got %d", halfsquare.ErrInputCount, n)}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return generate(cmd.Context(), opts, args, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err}
	})

	flags := cmd.Flags()
	flags.StringVarP(&opts.output, "output", "o", halfsquare.DefaultOutput, "Set output file name")
	flags.IntVarP(&opts.size, "size", "s", halfsquare.DefaultSize, "Set square length")
	flags.BoolVarP(&opts.debug, "debug", "d", false, "Enable debugging features: persistent workspace, cache reuse, verbose logs (crop and triangle files pile up in the workspace)")
	flags.StringVarP(&opts.workdir, "workdir", "w", halfsquare.DefaultWorkDir, "Persistent workspace used in debug mode")
	flags.DurationVarP(&opts.timeout, "timeout", "t", 0, "Timeout of a single image operation, 0 disables it")

	return cmd
}

func generate(ctx context.Context, opts *options, args []string, stdout, stderr io.Writer) error {
	req, err := halfsquare.NewRequest(args,
		halfsquare.WithOutput(opts.output),
		halfsquare.WithSize(opts.size),
		halfsquare.WithDebug(opts.debug),
		halfsquare.WithWorkDir(opts.workdir),
		halfsquare.WithOpTimeout(opts.timeout),
	)
	if err != nil {
		return &usageError{err}
	}

	utils.InitLogger(req.Debug, stderr)

	spinner := utils.NewSpinnerTo(stderr)
	p := &halfsquare.Processor{
		Reporter: spinner,
		Logger:   utils.Logger("processor"),
	}
	res, err := p.Process(ctx, req)
	if err != nil {
		return err
	}

	spinner.Done(fmt.Sprintf("Done in %s", utils.FormatTime(res.Elapsed)))
	fmt.Fprintf(stdout, "Saved as: %s\n", filepath.Base(res.Output))
	return nil
}

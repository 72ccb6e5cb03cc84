package utils

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"
)

// Spinner reports the progress of the pipeline stages.
// The animation only runs when the output is a terminal; otherwise every
// finished stage is printed on its own line.
type Spinner struct {
	w       io.Writer
	tty     bool
	message string
	stop    chan struct{}
	done    chan struct{}
}

// NewSpinner instantiates a new Spinner writing to stderr.
func NewSpinner() *Spinner {
	return NewSpinnerTo(os.Stderr)
}

// NewSpinnerTo instantiates a new Spinner writing to w.
func NewSpinnerTo(w io.Writer) *Spinner {
	return &Spinner{w: w, tty: IsTerminal(w)}
}

// IsTerminal reports whether w is a terminal file descriptor.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Start starts the process indicator with the given message,
// replacing any stage still in progress.
func (s *Spinner) Start(message string) {
	s.halt()

	s.message = message
	if !s.tty {
		return
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go func(stop, done chan struct{}) {
		defer close(done)
		for {
			for _, r := range `-\|/` {
				select {
				case <-stop:
					return
				default:
					fmt.Fprintf(s.w, "\r%s%c%s %s", SuccessColor, r, DefaultColor, message)
					time.Sleep(time.Millisecond * 100)
				}
			}
		}
	}(s.stop, s.done)
}

// Succeed marks the current stage as finished.
func (s *Spinner) Succeed() {
	s.finish(SuccessColor + "✓" + DefaultColor)
}

// Fail marks the current stage as failed.
func (s *Spinner) Fail() {
	s.finish(ErrorColor + "✗" + DefaultColor)
}

// Warn prints a standalone warning line.
func (s *Spinner) Warn(message string) {
	s.halt()
	fmt.Fprintf(s.w, "%s!%s %s\n", WarnColor, DefaultColor, message)
}

// Done prints the closing line.
func (s *Spinner) Done(message string) {
	s.halt()
	fmt.Fprintf(s.w, "%s✨%s %s\n", SuccessColor, DefaultColor, message)
}

func (s *Spinner) finish(symbol string) {
	s.halt()

	message := s.message
	s.message = ""
	if message == "" {
		return
	}
	if s.tty {
		fmt.Fprintf(s.w, "\r%s %s\n", symbol, message)
		return
	}
	fmt.Fprintf(s.w, "%s %s\n", symbol, message)
}

// halt stops the animation goroutine and waits for it to exit.
func (s *Spinner) halt() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.done
	s.stop, s.done = nil, nil
}

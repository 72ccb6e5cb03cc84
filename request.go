package halfsquare

import (
	"fmt"
	"time"
)

const (
	DefaultOutput  = "out.png"
	DefaultSize    = 145
	DefaultWorkDir = "tmp"
)

// Mode tells whether the second triangle comes from a real image or a transparent buffer.
type Mode int

const (
	DualMode Mode = iota
	BufferMode
)

func (m Mode) String() string {
	if m == BufferMode {
		return "buffer"
	}
	return "dual"
}

// Request holds everything a single pipeline run needs.
// It is built once by NewRequest and never mutated afterwards.
type Request struct {
	Inputs    []string
	Output    string
	Size      int
	Debug     bool
	WorkDir   string
	OpTimeout time.Duration
}

// Option customizes a Request under construction.
type Option func(*Request)

// WithOutput sets the output path.
func WithOutput(path string) Option {
	return func(r *Request) { r.Output = path }
}

// WithSize sets the side length of the square.
func WithSize(size int) Option {
	return func(r *Request) { r.Size = size }
}

// WithDebug switches to the persistent workspace.
func WithDebug(debug bool) Option {
	return func(r *Request) { r.Debug = debug }
}

// WithWorkDir sets the persistent workspace directory used in debug mode.
func WithWorkDir(dir string) Option {
	return func(r *Request) { r.WorkDir = dir }
}

// WithOpTimeout bounds every individual image operation. Zero disables the limit.
func WithOpTimeout(d time.Duration) Option {
	return func(r *Request) { r.OpTimeout = d }
}

// NewRequest builds a validated Request for the given inputs.
func NewRequest(inputs []string, opts ...Option) (Request, error) {
	r := Request{
		Inputs:  append([]string(nil), inputs...),
		Output:  DefaultOutput,
		Size:    DefaultSize,
		WorkDir: DefaultWorkDir,
	}
	for _, opt := range opts {
		opt(&r)
	}
	if err := r.Validate(); err != nil {
		return Request{}, err
	}
	return r, nil
}

// Validate checks the request invariants.
func (r Request) Validate() error {
	if n := len(r.Inputs); n < 1 || n > 2 {
		return fmt.Errorf("%w: got %d", ErrInputCount, n)
	}
	for i, in := range r.Inputs {
		if in == "" {
			return fmt.Errorf("input %d is empty", i+1)
		}
	}
	if r.Size <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidSize, r.Size)
	}
	if r.Output == "" {
		return fmt.Errorf("output path is empty")
	}
	if r.OpTimeout < 0 {
		return fmt.Errorf("negative operation timeout: %s", r.OpTimeout)
	}
	return nil
}

// Mode reports BufferMode for a single input and DualMode otherwise.
func (r Request) Mode() Mode {
	if len(r.Inputs) == 1 {
		return BufferMode
	}
	return DualMode
}

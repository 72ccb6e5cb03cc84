package halfsquare

import (
	"errors"
	"fmt"
)

var (
	// ErrInputCount is returned when a request carries neither one nor two inputs.
	ErrInputCount = errors.New("expected one or two input images")
	// ErrInvalidSize is returned for a non-positive square size.
	ErrInvalidSize = errors.New("size must be a positive integer")
	// ErrUndersized is returned when a source image can't hold a size×size square.
	ErrUndersized = errors.New("source image smaller than the requested square")
	// ErrSizeMismatch is returned when two layers of one operation differ in dimensions.
	ErrSizeMismatch = errors.New("image dimensions do not match")
	// ErrTimeout is returned when a single image operation runs past Request.OpTimeout.
	ErrTimeout = errors.New("image operation timed out")
)

// Stage names the pipeline step an error originated from.
type Stage string

const (
	StageWorkspace Stage = "workspace"
	StageDownload  Stage = "download"
	StageMask      Stage = "mask"
	StageBuffer    Stage = "buffer"
	StageCrop      Stage = "crop"
	StageApplyMask Stage = "apply-mask"
	StageComposite Stage = "composite"
)

// StageError reports a failed pipeline stage together with the input it was working on.
type StageError struct {
	Stage Stage
	Input string
	Err   error
}

func (e *StageError) Error() string {
	if e.Input == "" {
		return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s stage (%s): %v", e.Stage, e.Input, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func stageErr(stage Stage, input string, err error) error {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return err
	}
	return &StageError{Stage: stage, Input: input, Err: err}
}

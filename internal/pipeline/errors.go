package pipeline

import (
	"errors"
	"fmt"
)

// ErrFinished is returned by RunNext once the world has been finalized.
var ErrFinished = errors.New("pipeline already finalized")

// GenerationError reports the stage a run failed in. The wrapped error
// matches one of the core error kinds under errors.Is.
type GenerationError struct {
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

package fusion

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoCanvas is returned by Preview when no destination surface is given.
	ErrNoCanvas = errors.New("fusion: no destination canvas")
	// ErrEmptyImage marks a zero-sized pixel grid reaching a pipeline stage.
	ErrEmptyImage = errors.New("fusion: empty image")
	// ErrInvalidOptions is wrapped by every option validation failure.
	ErrInvalidOptions = errors.New("fusion: invalid options")
)

// LoadError reports that a reference could not be fetched or decoded.
type LoadError struct {
	Ref string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", shortRef(e.Ref), e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// PipelineError reports a failure inside one of the pixel stages.
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// shortRef keeps error messages readable when the reference is an inline data: URL.
func shortRef(ref string) string {
	const max = 48
	if strings.HasPrefix(ref, "data:") && len(ref) > max {
		return ref[:max] + "..."
	}
	return ref
}

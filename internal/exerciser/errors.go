package exerciser

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrIterationBoundExceeded = errors.New("exceeded max allowed iterations")
	ErrRequest                = errors.New("exercise request failed")
	ErrInvalidWindow          = errors.New("measurement window must be positive")
	ErrInvalidSizing          = errors.New("invalid sizing")
	ErrInvalidConfig          = errors.New("invalid exerciser config")
)

// IterationBoundError reports a sizing result above the ceiling.
type IterationBoundError struct {
	Iterations int
	Max        int
	Elapsed    time.Duration
}

func (e *IterationBoundError) Error() string {
	return fmt.Sprintf("%s, iterations=%d, max=%d, uptime=%ds",
		ErrIterationBoundExceeded, e.Iterations, e.Max, int64(e.Elapsed/time.Second))
}

func (e *IterationBoundError) Is(target error) bool {
	return target == ErrIterationBoundExceeded
}

// RequestError wraps the failure of a single exercise request.
type RequestError struct {
	// Iteration is zero-based.
	Iteration int
	// Elapsed is the time since the exercise started.
	Elapsed time.Duration
	Err     error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request %d failed after %d ms: %v", e.Iteration, e.Elapsed.Milliseconds(), e.Err)
}

func (e *RequestError) Unwrap() []error {
	return []error{ErrRequest, e.Err}
}

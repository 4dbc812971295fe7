package exerciser

import (
	"fmt"
	"math"
	"time"
)

const (
	MinIterations = 1
	MaxIterations = 19

	// PacketsPerIteration approximates the packets one request generates in
	// each direction (about 7 rx / 9 tx for the generate_204 endpoint).
	PacketsPerIteration = 7

	// SafetyMargin keeps the result clear of the rounding boundary at which
	// the accounting service would report zero packets.
	SafetyMargin = 1.2

	// AccountingWindow is the resolution of the traffic history buckets.
	// Queries spanning part of a bucket get a uniform share of its counters.
	AccountingWindow = 2 * time.Hour
)

// Sizing decides how many requests are needed for the accounting service to
// report non-zero packets for a query since boot. Queried after uptime u, a
// bucket reports total*u/AccountingWindow, so
//
//	iterations >= AccountingWindow / (u * PacketsPerIteration)
type Sizing struct {
	Min                 int
	Max                 int
	PacketsPerIteration float64
	SafetyMargin        float64
	AccountingWindow    time.Duration
}

func DefaultSizing() Sizing {
	return Sizing{
		Min:                 MinIterations,
		Max:                 MaxIterations,
		PacketsPerIteration: PacketsPerIteration,
		SafetyMargin:        SafetyMargin,
		AccountingWindow:    AccountingWindow,
	}
}

func (s Sizing) Validate() error {
	switch {
	case s.Min < 1:
		return fmt.Errorf("%w: min %d < 1", ErrInvalidSizing, s.Min)
	case s.Max < s.Min:
		return fmt.Errorf("%w: max %d < min %d", ErrInvalidSizing, s.Max, s.Min)
	case s.PacketsPerIteration <= 0:
		return fmt.Errorf("%w: packets per iteration %v", ErrInvalidSizing, s.PacketsPerIteration)
	case s.SafetyMargin <= 0:
		return fmt.Errorf("%w: safety margin %v", ErrInvalidSizing, s.SafetyMargin)
	case s.AccountingWindow <= 0:
		return fmt.Errorf("%w: accounting window %s", ErrInvalidSizing, s.AccountingWindow)
	}
	return nil
}

// Raw returns the unclamped iteration count for uptime elapsed.
func (s Sizing) Raw(elapsed time.Duration) (float64, error) {
	if elapsed <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidWindow, elapsed)
	}
	return float64(s.AccountingWindow) / float64(elapsed) / s.PacketsPerIteration, nil
}

// Iterations applies the safety margin and floor to Raw and truncates. A
// result above Max fails with ErrIterationBoundExceeded rather than being
// clamped.
func (s Sizing) Iterations(elapsed time.Duration) (int, error) {
	raw, err := s.Raw(elapsed)
	if err != nil {
		return 0, err
	}

	augmented := math.Trunc(math.Max(raw*s.SafetyMargin, float64(s.Min)))
	if augmented > float64(s.Max) {
		n := math.MaxInt
		if augmented < float64(math.MaxInt) {
			n = int(augmented)
		}
		return 0, &IterationBoundError{Iterations: n, Max: s.Max, Elapsed: elapsed}
	}
	return int(augmented), nil
}

package timer

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

var ErrInvalidRange = errors.New("invalid duration range")

// DefaultStep is the sampling granularity used when a range leaves Step unset.
const DefaultStep = time.Second

// DurationRange is a half-open [Min, Max) range sampled in whole Steps.
// Min == Max is a fixed duration.
type DurationRange struct {
	Min  time.Duration
	Max  time.Duration
	Step time.Duration
}

// Fixed returns a range that always samples d.
func Fixed(d time.Duration) DurationRange {
	return DurationRange{Min: d, Max: d}
}

func (r DurationRange) Validate() error {
	switch {
	case r.Min < 0:
		return fmt.Errorf("%w: negative min %s", ErrInvalidRange, r.Min)
	case r.Max <= 0:
		return fmt.Errorf("%w: max %s must be positive", ErrInvalidRange, r.Max)
	case r.Max < r.Min:
		return fmt.Errorf("%w: max %s below min %s", ErrInvalidRange, r.Max, r.Min)
	case r.Step < 0:
		return fmt.Errorf("%w: negative step %s", ErrInvalidRange, r.Step)
	}
	return nil
}

func (r DurationRange) step() time.Duration {
	if r.Step <= 0 {
		return DefaultStep
	}
	return r.Step
}

// Sample picks Min + k*Step with k uniform over the steps that stay below Max.
func (r DurationRange) Sample(src RandSource) time.Duration {
	span := r.Max - r.Min
	if span <= 0 {
		return r.Min
	}
	step := r.step()
	n := int64(span / step)
	if span%step != 0 {
		n++
	}
	return r.Min + time.Duration(src.Int64N(n))*step
}

// RandSource is the subset of *rand.Rand the timer samples from.
type RandSource interface {
	Int64N(n int64) int64
}

type globalRand struct{}

func (globalRand) Int64N(n int64) int64 {
	return rand.Int64N(n)
}

// SystemRand draws from the process-wide math/rand/v2 source.
var SystemRand RandSource = globalRand{}

package work

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Selects what happens when a Progress would leave the [0, 1] range.
type BoundsPolicy int

const (
	// Panics with an error wrapping ErrOutOfRange. This is the default.
	PanicOnViolation BoundsPolicy = iota
	// Rejects the write, leaves the previous value in place and returns an
	// error wrapping ErrOutOfRange.
	ErrorOnViolation
)

const (
	progressMin = 0.0
	progressMax = 1.0
)

// Progress is a float64 clamped to [0, 1] which may be written by the task
// which owns it while any number of goroutines read it.
//
// Reads and writes are individually atomic but carry no ordering of their own
// relative to other task state; a reader that needs more than the progress
// value must synchronize through the Runnable.
type Progress struct {
	bits   atomic.Uint64
	policy BoundsPolicy
}

// Creates a new Progress with the given initial value.
func NewProgress(value float64, policy BoundsPolicy) (*Progress, error) {
	p := &Progress{policy: policy}
	if err := p.Set(value); err != nil {
		return nil, err
	}
	return p, nil
}

// Returns the current value.
func (p *Progress) Load() float64 {
	return math.Float64frombits(p.bits.Load())
}

// Returns the inclusive range accepted by a Progress.
func (p *Progress) Bounds() (min, max float64) {
	return progressMin, progressMax
}

// Assigns a new value.
func (p *Progress) Set(value float64) error {
	return p.store(value)
}

// Adds delta to the current value.
func (p *Progress) Add(delta float64) error {
	return p.store(p.Load() + delta)
}

// Subtracts delta from the current value.
func (p *Progress) Sub(delta float64) error {
	return p.store(p.Load() - delta)
}

// Multiplies the current value by factor.
func (p *Progress) Mul(factor float64) error {
	return p.store(p.Load() * factor)
}

// Divides the current value by divisor.
func (p *Progress) Div(divisor float64) error {
	return p.store(p.Load() / divisor)
}

func (p *Progress) String() string {
	return fmt.Sprintf("%.1f%%", p.Load()*100)
}

// Reports whether value lies within the range of a Progress.
func inBounds(value float64) bool {
	// NaN fails both comparisons.
	return value >= progressMin && value <= progressMax
}

func (p *Progress) store(value float64) error {
	if !inBounds(value) {
		err := fmt.Errorf("%w: %v not in [%v, %v]", ErrOutOfRange, value, progressMin, progressMax)
		if p.policy == ErrorOnViolation {
			return err
		}
		panic(err)
	}
	p.bits.Store(math.Float64bits(value))
	return nil
}

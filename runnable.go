package work

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
)

// Small offset added to the progress when extrapolating the remaining time,
// so that a task which has not progressed yet does not divide by zero.
const progressEpsilon = 1e-5

// State of a Runnable. The only transitions are NotStarted -> Running ->
// Finished.
type State int

const (
	NotStarted State = iota
	Running
	Finished
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Running:
		return "running"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// A Runnable tracks one task submitted to a Pool. It is written by the worker
// which runs the task and may be observed from any goroutine.
//
// The timestamps and the result are plain fields. They are written before the
// matching started/finished flag is stored and only read after the flag has
// been loaded as true, which orders them under the Go memory model.
type Runnable struct {
	id   ulid.ULID
	cell inspector
	now  func() time.Time

	claimed  atomic.Bool
	started  atomic.Bool
	finished atomic.Bool
	start    time.Time
	end      time.Time
}

func newRunnable(c inspector, now func() time.Time) *Runnable {
	if now == nil {
		now = time.Now
	}
	return &Runnable{
		id:   ulid.Make(),
		cell: c,
		now:  now,
	}
}

// Runs fn, which executes the task, and records the lifecycle around it.
// A Runnable may only be launched once; launching it again panics.
func (r *Runnable) launch(fn func()) {
	if !r.claimed.CompareAndSwap(false, true) {
		panic(fmt.Errorf("%w: %s", ErrAlreadyLaunched, r.id))
	}

	r.start = r.now()
	r.started.Store(true)

	fn()

	r.end = r.now()
	r.finished.Store(true)
}

// Returns the unique identifier of this runnable.
func (r *Runnable) ID() string {
	return r.id.String()
}

// Returns true once the task has been picked up by a worker.
func (r *Runnable) IsStarted() bool {
	return r.started.Load()
}

// Returns true once the task has returned.
func (r *Runnable) IsFinished() bool {
	return r.finished.Load()
}

// Returns the current lifecycle state.
func (r *Runnable) State() State {
	switch {
	case r.finished.Load():
		return Finished
	case r.started.Load():
		return Running
	default:
		return NotStarted
	}
}

// Returns how long the task has been running, or how long it ran once it has
// finished. Zero if it has not started.
func (r *Runnable) ElapsedTime() time.Duration {
	if !r.started.Load() {
		return 0
	}
	if r.finished.Load() {
		return r.end.Sub(r.start)
	}
	return r.now().Sub(r.start)
}

// Extrapolates the time left from the elapsed time and the progress, assuming
// the task advances at a constant rate. The estimate is not monotonic.
//
// The second return value is false if the task has not started or does not
// report its progress.
func (r *Runnable) RemainingTime() (time.Duration, bool) {
	if !r.started.Load() {
		return 0, false
	}
	progress, ok := r.Progress()
	if !ok {
		return 0, false
	}
	elapsed := float64(r.ElapsedTime().Nanoseconds())
	// Factoring (1 - progress) out keeps the estimate at 0, not slightly
	// negative, once progress reaches 1; the clamp guards rounding.
	remaining := elapsed / (progress + progressEpsilon) * (1 - progress)
	if remaining < 0 {
		remaining = 0
	}
	return time.Duration(remaining), true
}

// Returns the progress of the task: 0 before it starts, 1 once it finished,
// and whatever the task reports in between. The second return value is false
// when the task is running and has no estimate to give.
func (r *Runnable) Progress() (float64, bool) {
	if !r.started.Load() {
		return 0, true
	}
	if r.finished.Load() {
		return 1, true
	}
	return r.cell.progress()
}

// Returns the issues reported by the task. These are usually only meaningful
// once the task has finished.
func (r *Runnable) Issues() []Issue {
	return r.cell.issues()
}

// Blocks until the task has finished, yielding the processor between checks.
func (r *Runnable) WaitUntilFinished() {
	for !r.finished.Load() {
		runtime.Gosched()
	}
}

// Like WaitUntilFinished, but gives up when ctx is done.
func (r *Runnable) WaitContext(ctx context.Context) error {
	for !r.finished.Load() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			runtime.Gosched()
		}
	}
	return nil
}

// Returns the result of the task carried by r.
//
// T must be exactly the result type of the task, otherwise Result panics with
// an error wrapping ErrResultType. If the task has not finished yet,
// ErrNotAvailable is returned.
func Result[T any](r *Runnable) (T, error) {
	var result T
	if want := reflect.TypeOf((*T)(nil)).Elem(); want != r.cell.resultType() {
		panic(fmt.Errorf("%w: want %s, task returns %s",
			ErrResultType, want, r.cell.resultType()))
	}
	if !r.finished.Load() {
		return result, ErrNotAvailable
	}
	r.cell.retrieve(&result)
	return result, nil
}

package work

import (
	"fmt"
	"reflect"
)

// A Task is a unit of work run by a Pool. C is the per-worker context type,
// A the per-task argument type and R the result type.
//
// Run must not panic. A task which can fail should record the failure and
// report it through Issues instead.
//
// A task may also implement ProgressReporter and/or IssueReporter. Both are
// looked up once, when the task is added to a pool. Implement them on the same
// receiver kind the task is submitted with: a task passed by value does not
// expose methods declared on its pointer type.
type Task[C, A, R any] interface {
	Run(ctx C, args A) R
}

// TaskFunc adapts an ordinary function to a Task.
type TaskFunc[C, A, R any] func(ctx C, args A) R

func (fn TaskFunc[C, A, R]) Run(ctx C, args A) R {
	return fn(ctx, args)
}

// Nothing is the result type of tasks which only have side effects.
type Nothing struct{}

// Adapts a function without a result to a Task returning Nothing.
func Effect[C, A any](fn func(ctx C, args A)) Task[C, A, Nothing] {
	return TaskFunc[C, A, Nothing](func(ctx C, args A) Nothing {
		fn(ctx, args)
		return Nothing{}
	})
}

// Implemented by tasks which can estimate how far along they are. The second
// return value is false when no estimate is available right now. Values
// outside of [0, 1] are discarded as if no estimate was given.
type ProgressReporter interface {
	Progress() (float64, bool)
}

// Implemented by tasks which report diagnostics.
type IssueReporter interface {
	Issues() []Issue
}

// inspector is the part of a task cell which does not depend on the pool's
// context and argument types.
type inspector interface {
	// Copies the result into out, which must be a *R. Any other type panics.
	retrieve(out any)
	resultType() reflect.Type
	progress() (float64, bool)
	issues() []Issue
}

// cell hides the concrete task type and its result behind a uniform
// interface so that runnables of any result type can share a pool.
type cell[C, A any] interface {
	inspector
	launch(ctx C, args A)
}

type model[C, A, R any] struct {
	task     Task[C, A, R]
	result   R
	progHook ProgressReporter
	issHook  IssueReporter
}

func newCell[C, A, R any](task Task[C, A, R]) *model[C, A, R] {
	m := &model[C, A, R]{task: task}
	if p, ok := task.(ProgressReporter); ok {
		m.progHook = p
	}
	if i, ok := task.(IssueReporter); ok {
		m.issHook = i
	}
	return m
}

func (m *model[C, A, R]) launch(ctx C, args A) {
	m.result = m.task.Run(ctx, args)
}

func (m *model[C, A, R]) retrieve(out any) {
	dst, ok := out.(*R)
	if !ok {
		panic(fmt.Errorf("%w: want %s, task returns %s",
			ErrResultType, reflect.TypeOf(out).Elem(), m.resultType()))
	}
	*dst = m.result
}

func (m *model[C, A, R]) resultType() reflect.Type {
	return reflect.TypeOf((*R)(nil)).Elem()
}

func (m *model[C, A, R]) progress() (float64, bool) {
	if m.progHook == nil {
		return 0, false
	}
	v, ok := m.progHook.Progress()
	if !ok || !inBounds(v) {
		return 0, false
	}
	return v, true
}

func (m *model[C, A, R]) issues() []Issue {
	if m.issHook == nil {
		return nil
	}
	return m.issHook.Issues()
}

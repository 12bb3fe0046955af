package work

import "errors"

var (
	// Returned by Result when the task has not finished yet.
	ErrNotAvailable = errors.New("The result is not available")

	// A Runnable was launched a second time.
	ErrAlreadyLaunched = errors.New("This task was already launched once")

	// Result was called with a type other than the one the task returns.
	ErrResultType = errors.New("The requested type does not match the result type of this task")

	// A Progress was given a value outside of [0, 1].
	ErrOutOfRange = errors.New("The value is out of range")

	// The pool was closed while some of its tasks had not finished.
	ErrUnfinishedWork = errors.New("The pool was closed with unfinished tasks")

	// A queue was released while it was still open or still held items.
	ErrQueueNotDrained = errors.New("The queue was released before being finished and drained")

	// The pool was used after Close.
	ErrPoolClosed = errors.New("The pool is closed")
)

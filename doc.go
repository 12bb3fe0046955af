// work is a parallel task execution engine for Go programs. It runs tasks on a
// fixed pool of worker goroutines and lets any goroutine observe them while
// they run: whether they started or finished, their progress, how long they
// have been running and how long they still need, and their result.
//
// A global pool is provided for simple use-cases. To use it:
//
//	import (
//		"git.sr.ht/~eagleusb/dowork"
//	)
//
//	// ...
//	r := work.Go(func() int {
//		// Thing which takes a while...
//		return 42
//	})
//	work.Wait()
//	answer, err := work.Result[int](r)
//
// The first time a task is submitted to the global pool, it is started with
// DefaultWorkers() workers.
//
// You may also manage your own pools. A Pool[C, A] gives each worker a private
// context of type C, built once by a factory when the worker starts, and
// passes it to every task along with the task's own arguments of type A:
//
//	pool := work.NewPool[*bytes.Buffer, string](func() *bytes.Buffer {
//		return new(bytes.Buffer)
//	}, work.Options{Workers: 4})
//	r := work.AddFunc(pool, func(buf *bytes.Buffer, name string) int {
//		buf.Reset()
//		// ...
//		return buf.Len()
//	}, "input.txt")
//	pool.Wait()
//	pool.Close()
//
// Tasks must not panic. A task which can fail reports its failures by
// implementing IssueReporter. A task which knows how far along it is
// implements ProgressReporter, which enables Runnable.RemainingTime.
package work

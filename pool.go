package work

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

type workItem[C, A any] struct {
	runnable *Runnable
	cell     cell[C, A]
	args     A
}

// A Pool runs tasks on a fixed set of worker goroutines.
//
// Every worker builds its own context of type C once, when it starts, and
// passes it to every task it runs along with the arguments of type A given
// when the task was added. A context is never shared between workers.
//
// Each worker owns a queue. Submissions go to whichever queue can be locked
// first, and an idle worker drains the other queues before it blocks on its
// own.
type Pool[C, A any] struct {
	queues    []*workQueue[int]
	items     arena[*workItem[C, A]]
	submitted atomic.Uint64
	finished  atomic.Uint64
	factory   func() C
	wg        sync.WaitGroup

	// Held shared by Add and exclusively by Close, so that nothing is queued
	// once the queues are finished.
	gate   sync.RWMutex
	closed bool

	log     logrus.FieldLogger
	metrics *Metrics
	now     func() time.Time
}

// A snapshot of the pool counters.
type Stats struct {
	Workers   int
	Submitted uint64
	Finished  uint64
	Pending   uint64
}

// Creates a pool and starts its workers. Each worker calls factory exactly
// once to build its context; a nil factory gives every worker the zero value
// of C.
func NewPool[C, A any](factory func() C, opts Options) *Pool[C, A] {
	p := newPool[C, A](factory, opts)
	for i := range p.queues {
		p.spawn(i)
	}
	return p
}

// Builds a pool without starting any worker.
func newPool[C, A any](factory func() C, opts Options) *Pool[C, A] {
	opts = opts.withDefaults()
	if factory == nil {
		factory = func() C {
			var zero C
			return zero
		}
	}
	p := &Pool[C, A]{
		queues:  make([]*workQueue[int], opts.Workers),
		factory: factory,
		log:     opts.Logger,
		metrics: opts.Metrics,
		now:     opts.Now,
	}
	for i := range p.queues {
		p.queues[i] = newWorkQueue[int]()
	}
	return p
}

// Starts the worker which owns queue id.
func (p *Pool[C, A]) spawn(id int) {
	p.wg.Add(1)
	go p.worker(id)
}

// Adds a task to the pool and returns its runnable. args is handed to the
// task, after the worker context, when it runs.
//
// The runnable stays valid until the pool is cleared. Adding to a closed pool
// panics, and so does a Close which races with Add and finds its task
// unfinished.
func Add[C, A, R any](p *Pool[C, A], task Task[C, A, R], args A) *Runnable {
	p.gate.RLock()
	defer p.gate.RUnlock()
	if p.closed {
		panic(ErrPoolClosed)
	}
	c := newCell(task)
	r := newRunnable(c, p.now)
	slot := p.items.append(&workItem[C, A]{runnable: r, cell: c, args: args})
	n := p.submitted.Add(1)
	p.metrics.taskSubmitted()
	p.place(slot, n)
	return r
}

// Like Add, for a plain function.
func AddFunc[C, A, R any](p *Pool[C, A], fn func(ctx C, args A) R, args A) *Runnable {
	return Add[C, A, R](p, TaskFunc[C, A, R](fn), args)
}

// Puts the nth submission on the first queue which can be locked right away,
// trying them in turn from the round robin position. If every queue is busy,
// waits for the lock of the round robin queue.
func (p *Pool[C, A]) place(slot int, n uint64) {
	size := uint64(len(p.queues))
	start := (n - 1) % size
	for k := uint64(0); k < size; k++ {
		if p.queues[(start+k)%size].push(slot, true) {
			return
		}
	}
	p.metrics.placementFallback()
	p.queues[start].push(slot, false)
}

func (p *Pool[C, A]) worker(id int) {
	defer p.wg.Done()

	log := p.log.WithField("worker", id)
	ctx := p.factory()
	log.Debug("Worker started")

	own := p.queues[id]
	n := len(p.queues)
	for !own.isDone() {
		var (
			slot int
			ok   bool
		)
		for k := 0; k < n && !ok; k++ {
			slot, ok = p.queues[(id+k)%n].pop(true)
			if ok && k != 0 {
				p.metrics.taskStolen()
			}
		}
		if !ok {
			slot, ok = own.pop(false)
		}
		if !ok {
			runtime.Gosched()
			continue
		}
		p.run(log, ctx, p.items.at(slot))
	}
	log.Debug("Worker stopped")
}

func (p *Pool[C, A]) run(log logrus.FieldLogger, ctx C, item *workItem[C, A]) {
	r := item.runnable
	log = log.WithField("task", r.ID())
	defer func() {
		if v := recover(); v != nil {
			log.WithField("panic", v).Error("Task panicked")
			panic(v)
		}
	}()

	p.metrics.taskStarted()
	log.Debug("Task started")
	r.launch(func() {
		item.cell.launch(ctx, item.args)
	})
	p.finished.Add(1)
	p.metrics.taskFinished(r.ElapsedTime())
	log.WithField("elapsed", r.ElapsedTime()).Debug("Task finished")
}

// Blocks until every task added so far has finished.
func (p *Pool[C, A]) Wait() {
	for _, item := range p.items.snapshot() {
		item.runnable.WaitUntilFinished()
	}
}

// Like Wait, but gives up when ctx is done.
func (p *Pool[C, A]) WaitContext(ctx context.Context) error {
	for _, item := range p.items.snapshot() {
		if err := item.runnable.WaitContext(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Waits for every task, then forgets them. Runnables returned before Clear
// are no longer tracked by the pool.
func (p *Pool[C, A]) Clear() {
	p.Wait()
	p.items.reset()
}

// Stops the workers and waits for them to exit.
//
// Close does not wait for outstanding work: every task must have finished,
// otherwise Close panics with an error wrapping ErrUnfinishedWork. Call Wait
// first; a Close which panicked that way leaves the pool open, so it may be
// called again once the work is done. Closing a pool twice panics.
func (p *Pool[C, A]) Close() {
	p.stop()
	p.wg.Wait()
	for _, q := range p.queues {
		q.release()
	}
	p.log.WithField("tasks", p.submitted.Load()).Info("Pool closed")
}

// Marks the pool closed and finishes every queue.
func (p *Pool[C, A]) stop() {
	p.gate.Lock()
	defer p.gate.Unlock()
	if p.closed {
		panic(fmt.Errorf("%w: Close called twice", ErrPoolClosed))
	}
	for _, item := range p.items.snapshot() {
		if !item.runnable.IsFinished() {
			panic(fmt.Errorf("%w: task %s is %s",
				ErrUnfinishedWork, item.runnable.ID(), item.runnable.State()))
		}
	}
	p.closed = true
	for _, q := range p.queues {
		q.finish()
	}
}

// Returns the number of workers.
func (p *Pool[C, A]) Workers() int {
	return len(p.queues)
}

// Returns the number of runnables tracked by the pool.
func (p *Pool[C, A]) Len() int {
	return p.items.len()
}

// Returns the current counters.
func (p *Pool[C, A]) Stats() Stats {
	finished := p.finished.Load()
	submitted := p.submitted.Load()
	return Stats{
		Workers:   len(p.queues),
		Submitted: submitted,
		Finished:  finished,
		Pending:   submitted - finished,
	}
}

package work

import (
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
)

// Options configures a Pool. The zero value is usable.
type Options struct {
	// Number of worker goroutines. Defaults to DefaultWorkers().
	Workers int

	// Receives worker and task lifecycle events. Defaults to the logrus
	// standard logger.
	Logger logrus.FieldLogger

	// Optional Prometheus collectors, see NewMetrics.
	Metrics *Metrics

	// The clock used to timestamp tasks. Defaults to time.Now.
	Now func() time.Time
}

// Returns the default number of workers: one less than the number of CPUs,
// leaving one for the submitting goroutine, and at least one.
func DefaultWorkers() int {
	if n := runtime.NumCPU() - 1; n > 1 {
		return n
	}
	return 1
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers()
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

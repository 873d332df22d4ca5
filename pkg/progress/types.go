// Package progress renders the state of concurrently
// installing packages.
//
// A Surface hands out one Tracker per package. Trackers may be
// used from different goroutines at the same time, and the
// Surface is responsible for keeping the output readable.
package progress

// Tracker reports the progress of a single unit of work.
type Tracker interface {
	// SetTotal sets the number of bytes expected. A value of
	// zero or less means the total is unknown.
	SetTotal(total int64)
	// SetCurrent sets the number of bytes processed so far.
	SetCurrent(current int64)
	// Finish marks the work as successfully completed.
	Finish(message string)
	// Fail marks the work as failed.
	Fail(message string)
}

// Surface creates trackers and renders them.
type Surface interface {
	Track(name string) Tracker
	// Wait blocks until every tracker has been finished or
	// failed and the output has been flushed.
	Wait()
}

// Discard is a Tracker that does nothing.
var Discard Tracker = discard{}

type discard struct{}

func (discard) SetTotal(int64)   {}
func (discard) SetCurrent(int64) {}
func (discard) Finish(string)    {}
func (discard) Fail(string)      {}

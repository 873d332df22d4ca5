package progress

import (
	"context"
	"sync"

	"github.com/go-logr/logr"
)

// Log is a Surface that writes the terminal state of each
// tracker to a logr.Logger. It is used when the output is
// not a terminal.
type Log struct {
	log logr.Logger
	wg  sync.WaitGroup
}

func NewLog(ctx context.Context) *Log {
	return &Log{
		log: logr.FromContextOrDiscard(ctx),
	}
}

func (l *Log) Track(name string) Tracker {
	l.wg.Add(1)
	return &logTracker{
		log:  l.log.WithValues("package", name),
		done: l.wg.Done,
	}
}

func (l *Log) Wait() {
	l.wg.Wait()
}

type logTracker struct {
	log   logr.Logger
	done  func()
	once  sync.Once
	mu    sync.Mutex
	total int64
	pos   int64
}

func (t *logTracker) SetTotal(total int64) {
	t.mu.Lock()
	t.total = total
	t.mu.Unlock()
	t.log.V(2).Info("starting transfer", "total", total)
}

func (t *logTracker) SetCurrent(current int64) {
	t.mu.Lock()
	t.pos = current
	t.mu.Unlock()
}

func (t *logTracker) Finish(message string) {
	t.once.Do(func() {
		t.mu.Lock()
		pos := t.pos
		t.mu.Unlock()
		t.log.Info(message, "bytes", pos)
		t.done()
	})
}

func (t *logTracker) Fail(message string) {
	t.once.Do(func() {
		t.log.Info(message, "failed", true)
		t.done()
	})
}

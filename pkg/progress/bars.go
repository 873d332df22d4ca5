package progress

import (
	"io"
	"sync/atomic"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Bars renders a progress bar per tracker.
type Bars struct {
	progress *mpb.Progress
}

// NewBars creates a Surface that draws progress bars to w.
func NewBars(w io.Writer) *Bars {
	return &Bars{
		progress: mpb.New(
			mpb.WithOutput(w),
			mpb.WithWidth(40),
		),
	}
}

func (b *Bars) Track(name string) Tracker {
	t := &barTracker{}
	t.message.Store("Installing " + name)

	t.bar = b.progress.New(0,
		mpb.BarStyle().Lbound("[").Filler("#").Tip("#").Padding("-").Rbound("]"),
		mpb.PrependDecorators(
			decor.Elapsed(decor.ET_STYLE_HHMMSS, decor.WC{W: 10}),
		),
		mpb.AppendDecorators(
			decor.CountersKibiByte("% .1f / % .1f", decor.WC{W: 24}),
			decor.Any(func(decor.Statistics) string {
				return " " + t.message.Load().(string)
			}),
		),
	)
	return t
}

func (b *Bars) Wait() {
	b.progress.Wait()
}

type barTracker struct {
	bar     *mpb.Bar
	message atomic.Value
}

func (t *barTracker) SetTotal(total int64) {
	if total <= 0 {
		return
	}
	t.bar.SetTotal(total, false)
}

func (t *barTracker) SetCurrent(current int64) {
	t.bar.SetCurrent(current)
}

func (t *barTracker) Finish(message string) {
	t.message.Store(message)
	// a negative total uses the current position, which
	// also handles downloads of an unknown size
	t.bar.SetTotal(-1, true)
}

func (t *barTracker) Fail(message string) {
	t.message.Store(message)
	t.bar.Abort(false)
}

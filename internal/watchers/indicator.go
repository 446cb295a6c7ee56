package watchers

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"
)

// Indicator is a progress display that runs for the duration of a watch.
type Indicator interface {
	Start()
	Stop()
}

// IndicatorFunc builds an indicator for a label such as "Monitoring PID: 42".
type IndicatorFunc func(label string) Indicator

// SpinnerIndicators returns an IndicatorFunc drawing a spinner on w, or nil
// when w is not a terminal so piped output stays clean.
func SpinnerIndicators(w io.Writer) IndicatorFunc {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil
	}
	return func(label string) Indicator {
		return spinner.New(spinner.CharSets[14], 100*time.Millisecond,
			spinner.WithWriter(w),
			spinner.WithSuffix(" "+label),
		)
	}
}

type noopIndicator struct{}

func (noopIndicator) Start() {}
func (noopIndicator) Stop()  {}

// onceIndicator lets the loop stop the display before printing its final
// line and again from a deferred call without touching the inner one twice.
type onceIndicator struct {
	inner Indicator
	start sync.Once
	stop  sync.Once
}

func (o *onceIndicator) Start() { o.start.Do(o.inner.Start) }
func (o *onceIndicator) Stop()  { o.stop.Do(o.inner.Stop) }

package watchers

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestSpinnerIndicators_NotATerminal(t *testing.T) {
	if SpinnerIndicators(&bytes.Buffer{}) != nil {
		t.Error("a plain writer should get no spinner")
	}

	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if SpinnerIndicators(f) != nil {
		t.Error("a regular file should get no spinner")
	}
}

func TestOnceIndicator(t *testing.T) {
	rec := &recordingIndicator{}
	o := &onceIndicator{inner: rec}

	o.Start()
	o.Start()
	o.Stop()
	o.Stop()

	if rec.starts != 1 || rec.stops != 1 {
		t.Errorf("starts=%d stops=%d, want 1 and 1", rec.starts, rec.stops)
	}
}

func TestBase_Indicator(t *testing.T) {
	if _, ok := (Base{}).indicator("x", false).(noopIndicator); !ok {
		t.Error("no factory should give a no-op indicator")
	}

	rec := &recordingIndicator{}
	b := Base{Indicator: rec.factory()}
	if _, ok := b.indicator("x", true).(noopIndicator); !ok {
		t.Error("silent watchers should get a no-op indicator")
	}
	if _, ok := b.indicator("x", false).(*onceIndicator); !ok {
		t.Error("visible watchers should get a once-wrapped indicator")
	}
}

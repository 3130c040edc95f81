package observ

import (
	"errors"
	"strings"
	"testing"
)

func TestTimerReport(t *testing.T) {
	timer := NewTimer()
	idx := timer.Begin("load")
	timer.End(idx, "3 dictionaries")
	err := timer.Measure("check", func() error { return errors.New("boom") })
	if err == nil {
		t.Fatal("Measure must return fn's error")
	}
	timer.End(42, "ignored")

	report := timer.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("phases = %+v", report.Phases)
	}
	if report.Phases[0].Note != "3 dictionaries" || report.Phases[1].Note != "failed" {
		t.Fatalf("notes = %+v", report.Phases)
	}
	summary := timer.Summary()
	for _, want := range []string{"timings:", "load", "check", "total"} {
		if !strings.Contains(summary, want) {
			t.Fatalf("summary missing %q:\n%s", want, summary)
		}
	}
}

func TestEmptyTimer(t *testing.T) {
	if r := NewTimer().Report(); r.TotalMS != 0 || r.Phases != nil {
		t.Fatalf("empty report = %+v", r)
	}
}

package trace

import (
	"errors"
	"io"
	"sync"
)

// gate holds the level shared by every sink.
type gate struct {
	level Level
}

// Level returns the configured level.
func (g gate) Level() Level { return g.level }

// Enabled reports whether the level is above LevelOff.
func (g gate) Enabled() bool { return g.level > LevelOff }

// accepts lets heartbeats through regardless of scope.
func (g gate) accepts(ev *Event) bool {
	return ev.Kind == KindHeartbeat || g.level.Admits(ev.Scope)
}

type nopTracer struct{ gate }

func (nopTracer) Emit(*Event)  {}
func (nopTracer) Flush() error { return nil }
func (nopTracer) Close() error { return nil }

// Nop discards everything. It is returned by FromContext when no tracer is
// attached.
var Nop Tracer = nopTracer{}

// StreamTracer writes each event to w as soon as it is emitted.
type StreamTracer struct {
	gate
	format Format

	mu sync.Mutex
	w  io.Writer
}

// NewStreamTracer creates a StreamTracer. FormatAuto selects text.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	if format == FormatAuto {
		format = FormatText
	}
	return &StreamTracer{gate: gate{level: level}, w: w, format: format}
}

// Emit writes ev. Write errors are dropped so a broken sink never stalls
// analysis.
func (t *StreamTracer) Emit(ev *Event) {
	if !t.accepts(ev) {
		return
	}
	data := FormatEvent(ev, t.format)
	t.mu.Lock()
	_, _ = t.w.Write(data)
	t.mu.Unlock()
}

// Flush flushes w when it buffers.
func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if f, ok := t.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Close flushes and closes w when it is an io.Closer.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if c, ok := t.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// RingTracer keeps the most recent events in memory. With a sink it acts
// as a flight recorder: the retained events are written out on Close.
type RingTracer struct {
	gate

	mu     sync.Mutex
	events []Event
	next   int
	filled bool

	sink   io.Writer
	format Format
}

// NewRingTracer creates a RingTracer holding capacity events.
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = defaultRingSize
	}
	return &RingTracer{gate: gate{level: level}, events: make([]Event, capacity)}
}

// Emit records ev, overwriting the oldest event when full.
func (t *RingTracer) Emit(ev *Event) {
	if !t.accepts(ev) {
		return
	}
	t.mu.Lock()
	t.events[t.next] = *ev
	t.next = (t.next + 1) % len(t.events)
	if t.next == 0 {
		t.filled = true
	}
	t.mu.Unlock()
}

// Snapshot returns the retained events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.filled {
		return append([]Event(nil), t.events[:t.next]...)
	}
	out := make([]Event, 0, len(t.events))
	out = append(out, t.events[t.next:]...)
	return append(out, t.events[:t.next]...)
}

// Dump writes the retained events to w.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	for _, ev := range t.Snapshot() {
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

// Flush does nothing; events stay in memory until Close.
func (t *RingTracer) Flush() error { return nil }

// Close dumps the retained events to the sink, if any, and closes it.
func (t *RingTracer) Close() error {
	if t.sink == nil {
		return nil
	}
	err := t.Dump(t.sink, t.format)
	if c, ok := t.sink.(io.Closer); ok {
		err = errors.Join(err, c.Close())
	}
	t.sink = nil
	return err
}

// MultiTracer fans events out to several tracers.
type MultiTracer struct {
	gate
	tracers []Tracer
}

// NewMultiTracer creates a MultiTracer.
func NewMultiTracer(level Level, tracers ...Tracer) *MultiTracer {
	return &MultiTracer{gate: gate{level: level}, tracers: tracers}
}

// Emit forwards ev to every tracer.
func (t *MultiTracer) Emit(ev *Event) {
	for _, tr := range t.tracers {
		tr.Emit(ev)
	}
}

// Flush flushes every tracer.
func (t *MultiTracer) Flush() error {
	var errs []error
	for _, tr := range t.tracers {
		errs = append(errs, tr.Flush())
	}
	return errors.Join(errs...)
}

// Close closes every tracer.
func (t *MultiTracer) Close() error {
	var errs []error
	for _, tr := range t.tracers {
		errs = append(errs, tr.Close())
	}
	return errors.Join(errs...)
}

// FindRing returns the RingTracer inside t, if any.
func FindRing(t Tracer) (*RingTracer, bool) {
	switch v := t.(type) {
	case *RingTracer:
		return v, true
	case *MultiTracer:
		for _, tr := range v.tracers {
			if r, ok := FindRing(tr); ok {
				return r, true
			}
		}
	}
	return nil, false
}

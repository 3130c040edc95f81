package trace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Tracer receives events from spans and points. Implementations are safe
// for concurrent use; Close flushes and releases the output.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	Enabled() bool
}

// StorageMode is where events go: written as they happen, kept in memory
// for a crash dump, or both.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1
	ModeRing
	ModeBoth
)

var modeNames = map[StorageMode]string{
	ModeStream: "stream",
	ModeRing:   "ring",
	ModeBoth:   "both",
}

func (m StorageMode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseMode reads a storage mode name, ignoring case.
func ParseMode(s string) (StorageMode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for m, n := range modeNames {
		if n == name {
			return m, nil
		}
	}
	return ModeRing, fmt.Errorf("invalid storage mode: %q (expected: stream|ring|both)", s)
}

const defaultRingSize = 4096

// Config describes a tracer built by New.
type Config struct {
	Level Level
	Mode  StorageMode
	// Format of written events. FormatAuto picks NDJSON for .json and
	// .ndjson paths and text otherwise.
	Format Format
	// Output receives events. When nil, OutputPath is opened instead; "-"
	// and "" mean stderr.
	Output     io.Writer
	OutputPath string
	// RingSize is the number of events a ring keeps. Zero means 4096.
	RingSize  int
	Heartbeat time.Duration
}

// hasOutput reports whether the caller named somewhere to write events.
func (c Config) hasOutput() bool { return c.Output != nil || c.OutputPath != "" }

// New creates a Tracer for cfg.
//
//	stream  events are written as they are emitted
//	ring    events stay in memory; with an output the ring is a flight
//	        recorder that writes its last events on Close
//	both    a stream plus an in-memory ring for panic dumps
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	format := cfg.Format
	if format == FormatAuto {
		format = formatFor(cfg.OutputPath)
	}
	if cfg.Mode == ModeRing && !cfg.hasOutput() {
		return NewRingTracer(cfg.RingSize, cfg.Level), nil
	}
	if _, ok := modeNames[cfg.Mode]; !ok {
		return nil, fmt.Errorf("unknown storage mode: %v", cfg.Mode)
	}

	w, err := openOutput(cfg)
	if err != nil {
		return nil, err
	}
	switch cfg.Mode {
	case ModeStream:
		return NewStreamTracer(w, cfg.Level, format), nil
	case ModeRing:
		ring := NewRingTracer(cfg.RingSize, cfg.Level)
		ring.sink, ring.format = w, format
		return ring, nil
	default:
		return NewMultiTracer(cfg.Level,
			NewStreamTracer(w, cfg.Level, format),
			NewRingTracer(cfg.RingSize, cfg.Level),
		), nil
	}
}

func formatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ndjson", ".json":
		return FormatNDJSON
	default:
		return FormatText
	}
}

// openOutput resolves the writer events go to. Stderr is wrapped so
// closing the tracer leaves it open.
func openOutput(cfg Config) (io.Writer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil
	}
	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return struct{ io.Writer }{os.Stderr}, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, nil
}

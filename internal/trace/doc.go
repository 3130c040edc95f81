// Package trace records what the spell checker is doing while it runs.
//
// Tracing helps explain slow analyses and stale or missing diagnostics by
// recording session lifecycle events, analysis passes and pipeline stages.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	spelld lsp --trace=- --trace-level=phase
//	spelld check --trace=trace.ndjson --trace-level=detail ./...
//
// # Architecture
//
// The package provides several tracer implementations:
//
//   - Nop: zero-overhead tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer dumped on demand
//   - MultiTracer: fans out to several tracers
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: only failures
//   - LevelPhase: server lifecycle and analysis passes
//   - LevelDetail: pipeline stages (extract, split, judge, assemble)
//   - LevelDebug: everything including per-word decisions
//
// # Context Propagation
//
// Tracers travel with the analysis through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeStage, "extract", parentID)
//	defer span.End("")
package trace

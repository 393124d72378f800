package filesink

import (
	"io"
)

// Record is an opaque, immutable handle to one event awaiting persistence.
// Records are produced by callers and consumed exactly once by the sink's
// background writer; the sink never mutates them.
type Record any

// Formatter renders a single record to the destination writer.
//
// Format is invoked once per record, always on the sink's consumer goroutine.
// A failure is contained by the sink: the record is dropped, a diagnostic is
// emitted, and the failure is never propagated to callers of Emit.
type Formatter interface {
	Format(record Record, dst io.Writer) error
}

// FormatterFunc adapts a plain function to the Formatter interface.
type FormatterFunc func(record Record, dst io.Writer) error

// Format calls the wrapped function.
func (f FormatterFunc) Format(record Record, dst io.Writer) error {
	return f(record, dst)
}

// DiagnosticHandler receives human-readable lines describing non-fatal sink
// events: formatting failures, roll start and destination paths, move and
// delete failures, queue-full waits, sweeper state changes. It is
// observability output only and is never part of the functional contract.
// Handlers may be invoked concurrently from producer goroutines, the
// consumer, and the retention sweeper.
type DiagnosticHandler func(line string)

// MetricsReporter receives a metrics snapshot after state-changing sink
// events. Reporters must be fast; they run inline on the sink's goroutines.
type MetricsReporter func(SinkMetrics)

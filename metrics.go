package filesink

import (
	"sync"
	"sync/atomic"
)

// SinkMetrics provides insight into the internal state of a Sink.
type SinkMetrics struct {
	// Enqueued counts records successfully admitted to the queue.
	Enqueued uint64
	// Written counts records persisted and flushed to the active file.
	Written uint64
	// FormatErrors counts records dropped because formatting failed.
	FormatErrors uint64
	// WriteErrors counts records lost to file write or sync failures.
	WriteErrors uint64
	// Rolls counts completed roll operations, startup rolls included.
	Rolls uint64
	// RollErrors counts failed roll attempts.
	RollErrors uint64
	// RetentionDeleted counts archived files removed by the sweeper.
	RetentionDeleted uint64
	// RetentionErrors counts archived files the sweeper failed to remove.
	RetentionErrors uint64
	// QueueDepth is the number of records admitted but not yet consumed.
	QueueDepth int
}

// sinkCounters aggregates the atomic counters behind SinkMetrics and fans
// snapshots out to the optional reporter.
type sinkCounters struct {
	enqueued         atomic.Uint64
	written          atomic.Uint64
	formatErrors     atomic.Uint64
	writeErrors      atomic.Uint64
	rolls            atomic.Uint64
	rollErrors       atomic.Uint64
	retentionDeleted atomic.Uint64
	retentionErrors  atomic.Uint64

	queueDepth func() int
	reporter   MetricsReporter
	reportMu   sync.Mutex
}

func newSinkCounters(reporter MetricsReporter, queueDepth func() int) *sinkCounters {
	return &sinkCounters{
		queueDepth: queueDepth,
		reporter:   reporter,
	}
}

func (c *sinkCounters) snapshot() SinkMetrics {
	return SinkMetrics{
		Enqueued:         c.enqueued.Load(),
		Written:          c.written.Load(),
		FormatErrors:     c.formatErrors.Load(),
		WriteErrors:      c.writeErrors.Load(),
		Rolls:            c.rolls.Load(),
		RollErrors:       c.rollErrors.Load(),
		RetentionDeleted: c.retentionDeleted.Load(),
		RetentionErrors:  c.retentionErrors.Load(),
		QueueDepth:       c.queueDepth(),
	}
}

// report invokes the configured reporter with a fresh snapshot. The mutex
// serializes reporter invocations across the sink's goroutines.
func (c *sinkCounters) report() {
	if c.reporter == nil {
		return
	}

	c.reportMu.Lock()
	defer c.reportMu.Unlock()

	c.reporter(c.snapshot())
}

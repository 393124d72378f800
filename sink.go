// Package filesink implements an asynchronous, backpressure-aware file sink
// with size-based rolling and age-based retention.
//
// A Sink decouples record producers from file I/O through a bounded
// multi-producer/single-consumer queue:
//   - Emit admits a record from any goroutine and never performs file I/O on
//     the caller; when the queue is full it blocks rather than dropping data.
//   - A single background consumer formats and appends records to the active
//     file, flushing each one to stable storage, and rolls the file into an
//     archive name once it reaches the configured size limit.
//   - An independent retention sweeper deletes archived files older than the
//     retention window on a timer.
//
// Failure containment: the only error producers ever see is ErrSinkClosed.
// Formatting and file I/O failures are reported through the optional
// diagnostics handler and counted in the metrics snapshot, and the consumer
// loop keeps going.
//
// Basic usage:
//
//	cfg, err := filesink.NewConfigBuilder().
//		WithPath("app.log").
//		WithFormatter(formatter).
//		WithFileSizeLimit(10 << 20).
//		WithRetentionDays(7).
//		Build()
//	if err != nil {
//		panic(err)
//	}
//
//	sink, err := filesink.New(cfg)
//	if err != nil {
//		panic(err)
//	}
//
//	sink.Emit(record)
//
// Always call Close() before application exit to drain admitted records and
// release the file handle:
//
//	defer sink.Close()
package filesink

import (
	"bytes"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/filesink/internal/fsutil"
)

// Sink lifecycle states. Transitions are one-way:
// running -> draining -> closed.
const (
	stateRunning int32 = iota
	stateDraining
	stateClosed
)

// Sink is an asynchronous single-destination file sink. It owns the event
// queue, the active file, and the retention sweeper.
type Sink struct {
	cfg      Config
	queue    *recordQueue
	active   *activeFile
	policy   *rollingPolicy
	sweeper  *retentionSweeper
	counters *sinkCounters

	state    atomic.Int32
	wg       sync.WaitGroup
	closeErr error

	// scratch is the consumer-owned format buffer; formatting failures must
	// not leave partial output in the file, so records are rendered here
	// first and written in one piece.
	scratch bytes.Buffer
}

// New validates the configuration, prepares the output file (performing the
// startup roll when configured), and starts the consumer loop and the
// retention sweeper. The returned Sink is ready for Emit.
func New(cfg Config) (*Sink, error) {
	cfg = cfg.withDefaults()

	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	policy := newRollingPolicy(cfg.Path, cfg.Rolling)

	rolledOnStartup := false

	if cfg.Rolling.RollOnStartup && fsutil.Exists(cfg.Path) {
		_, err = policy.archive()
		if err != nil {
			return nil, ewrap.Wrapf(err, "rolling existing file on startup").
				WithMetadata("path", cfg.Path)
		}

		rolledOnStartup = true
	}

	active, err := openActiveFile(cfg.Path, cfg.FileMode)
	if err != nil {
		return nil, err
	}

	s := &Sink{
		cfg:    cfg,
		queue:  newRecordQueue(cfg.QueueCapacity),
		active: active,
		policy: policy,
	}

	s.counters = newSinkCounters(cfg.MetricsReporter, s.queue.depth)

	if rolledOnStartup {
		s.counters.rolls.Add(1)
	}

	s.sweeper = newRetentionSweeper(policy, cfg.Path, cfg.Rolling, s.diag, s.counters)

	s.wg.Add(1)

	go s.consume()

	s.sweeper.start()

	return s, nil
}

// Emit admits a record for asynchronous persistence. It blocks while the
// queue is full and returns ErrSinkClosed once shutdown has been initiated;
// no other error ever reaches the caller, and no file I/O happens on the
// caller's goroutine.
func (s *Sink) Emit(record Record) error {
	if s.state.Load() != stateRunning {
		return ErrSinkClosed
	}

	if s.queue.full() {
		s.diag("queue full, emit blocked awaiting the consumer")
	}

	err := s.queue.enqueue(record)
	if err != nil {
		return err
	}

	s.counters.enqueued.Add(1)
	s.counters.report()

	return nil
}

// Close shuts the sink down: it closes the queue for new admissions, waits
// for the consumer to drain every already-admitted record and close the
// active file, and stops the retention sweeper. The first call performs the
// shutdown and returns any close-path error; subsequent calls return
// ErrSinkClosed without side effects.
func (s *Sink) Close() error {
	if !s.state.CompareAndSwap(stateRunning, stateDraining) {
		return ErrSinkClosed
	}

	s.queue.close()
	s.wg.Wait()

	s.sweeper.stop()

	s.closeErr = s.active.close()
	s.state.Store(stateClosed)

	return s.closeErr
}

// Metrics returns a snapshot of the sink's counters.
func (s *Sink) Metrics() SinkMetrics {
	return s.counters.snapshot()
}

// consume is the single consumer goroutine. It exits only when the queue is
// closed and fully drained.
func (s *Sink) consume() {
	defer s.wg.Done()

	for {
		record, ok := s.queue.dequeue()
		if !ok {
			return
		}

		s.persist(record)
	}
}

// persist formats one record and appends it to the active file, rolling
// first when the size limit has been reached. Every failure is contained:
// a diagnostic is emitted, a counter is bumped, and the loop continues.
func (s *Sink) persist(record Record) {
	s.scratch.Reset()

	err := s.cfg.Formatter.Format(record, &s.scratch)
	if err != nil {
		s.counters.formatErrors.Add(1)
		s.diag(fmt.Sprintf("formatting record failed: %v", err))
		s.counters.report()

		return
	}

	if s.policy.shouldRoll(s.active.size) {
		err = s.roll()
		if err != nil {
			s.counters.rollErrors.Add(1)
			s.diag(fmt.Sprintf("rolling %s failed: %v", s.cfg.Path, err))
			s.counters.report()

			// The in-progress write is aborted, the loop is not.
			return
		}
	}

	err = s.active.ensureDir()
	if err != nil {
		s.counters.writeErrors.Add(1)
		s.diag(fmt.Sprintf("recreating output directory failed: %v", err))
		s.counters.report()

		return
	}

	err = s.active.write(s.scratch.Bytes())
	if err != nil {
		s.counters.writeErrors.Add(1)
		s.diag(fmt.Sprintf("writing record failed: %v", err))
		s.counters.report()

		return
	}

	s.counters.written.Add(1)
	s.counters.report()
}

// roll closes the active file, relocates it under its archive name, and
// opens a fresh file at the original path. On archive failure it reopens the
// original file so subsequent records keep persisting.
func (s *Sink) roll() error {
	s.diag("rolling " + s.cfg.Path)

	err := s.active.close()
	if err != nil {
		return err
	}

	dest, err := s.policy.archive()
	if err != nil {
		reopenErr := s.active.open()
		if reopenErr != nil {
			return ewrap.Wrapf(reopenErr, "reopening output file after failed roll").
				WithMetadata("path", s.cfg.Path).
				WithMetadata("roll_err", err)
		}

		return err
	}

	s.diag("rolled " + s.cfg.Path + " to " + dest)
	s.counters.rolls.Add(1)

	return s.active.open()
}

// diag forwards a line to the configured diagnostics handler, if any.
func (s *Sink) diag(line string) {
	if s.cfg.Diagnostics != nil {
		s.cfg.Diagnostics(line)
	}
}

package filesink

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// sweeperStopGrace bounds how long shutdown waits for the sweeper goroutine.
const sweeperStopGrace = 5 * time.Second

// retentionSweeper is the background task that deletes archived files older
// than the retention window. It runs on its own timer, independent of the
// write path, and terminates promptly on shutdown: the wait between ticks is
// woken early by the stop channel, never slept through.
type retentionSweeper struct {
	policy     *rollingPolicy
	cfg        RollingConfig
	activePath string
	diag       DiagnosticHandler
	counters   *sinkCounters
	now        func() time.Time
	removeFile func(string) error

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func newRetentionSweeper(policy *rollingPolicy, activePath string, cfg RollingConfig, diag DiagnosticHandler, counters *sinkCounters) *retentionSweeper {
	return &retentionSweeper{
		policy:     policy,
		cfg:        cfg,
		activePath: filepath.Clean(activePath),
		diag:       diag,
		counters:   counters,
		now:        time.Now,
		removeFile: os.Remove,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

func (s *retentionSweeper) start() {
	go s.run()
}

func (s *retentionSweeper) run() {
	defer close(s.doneCh)

	timer := time.NewTimer(s.cfg.AgeCheckInterval)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			if !s.sweep() {
				return
			}

			timer.Reset(s.cfg.AgeCheckInterval)
		case <-s.stopCh:
			return
		}
	}
}

// stop cancels the sweeper and waits for the goroutine with a bounded grace
// period. It is idempotent.
func (s *retentionSweeper) stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})

	select {
	case <-s.doneCh:
	case <-time.After(sweeperStopGrace):
		s.diag("retention sweeper did not stop within grace period")
	}
}

type archivedFile struct {
	path    string
	modTime time.Time
}

// sweep performs one retention pass. It returns false when a delete failure
// should stop the sweeper permanently per the configured policy.
func (s *retentionSweeper) sweep() bool {
	dir := s.policy.archiveDir()

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			// Nothing has been rolled yet; try again next tick.
			return true
		}

		s.diag(fmt.Sprintf("retention sweep failed reading %s: %v", dir, err))

		return true
	}

	cutoff := s.now().Add(-time.Duration(s.cfg.RetentionDays) * hoursPerDay * time.Hour)

	failed := false
	kept := make([]archivedFile, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if path == s.activePath {
			// The live file is never deleted regardless of age.
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().After(cutoff) {
			kept = append(kept, archivedFile{path: path, modTime: info.ModTime()})

			continue
		}

		if !s.remove(path) {
			failed = true
		}
	}

	if !s.pruneExcess(kept) {
		failed = true
	}

	if failed && s.cfg.FatalRetentionErrors {
		s.diag("retention sweeper stopped after delete failure")

		return false
	}

	return true
}

// pruneExcess enforces MaxArchivedFiles by deleting the oldest archives
// beyond the limit.
func (s *retentionSweeper) pruneExcess(kept []archivedFile) bool {
	limit := s.cfg.MaxArchivedFiles
	if limit <= 0 || len(kept) <= limit {
		return true
	}

	sort.Slice(kept, func(i, j int) bool {
		return kept[i].modTime.After(kept[j].modTime)
	})

	deleted := true

	for _, file := range kept[limit:] {
		if !s.remove(file.path) {
			deleted = false
		}
	}

	return deleted
}

func (s *retentionSweeper) remove(path string) bool {
	err := s.removeFile(path)
	if err != nil {
		s.counters.retentionErrors.Add(1)
		s.diag(fmt.Sprintf("retention delete failed for %s: %v", path, err))
		s.counters.report()

		return false
	}

	s.counters.retentionDeleted.Add(1)
	s.diag("retention deleted " + path)
	s.counters.report()

	return true
}

package filesink

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hyp3rd/ewrap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSweeper(t *testing.T, activePath string, cfg RollingConfig) (*retentionSweeper, *[]string) {
	t.Helper()

	var lines []string

	counters := newSinkCounters(nil, func() int { return 0 })
	policy := newRollingPolicy(activePath, cfg)

	s := newRetentionSweeper(policy, activePath, cfg, func(line string) {
		lines = append(lines, line)
	}, counters)

	return s, &lines
}

func writeAged(t *testing.T, path string, age time.Duration) {
	t.Helper()

	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	stamp := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, stamp, stamp))
}

func TestSweepDeletesExpiredArchives(t *testing.T) {
	dir := t.TempDir()
	activePath := filepath.Join(dir, "app.log")

	cfg := DefaultConfig().Rolling
	cfg.RetentionDays = 2

	oldFile := filepath.Join(dir, "app-old.log")
	newFile := filepath.Join(dir, "app-new.log")

	writeAged(t, oldFile, 72*time.Hour)
	writeAged(t, newFile, time.Hour)
	writeAged(t, activePath, 72*time.Hour)

	s, lines := newTestSweeper(t, activePath, cfg)

	assert.True(t, s.sweep())
	assert.NoFileExists(t, oldFile, "expired archive is deleted")
	assert.FileExists(t, newFile, "archive inside the window is retained")
	assert.FileExists(t, activePath, "the active file is never deleted regardless of age")

	assert.Equal(t, uint64(1), s.counters.retentionDeleted.Load())
	require.Len(t, *lines, 1)
	assert.Contains(t, (*lines)[0], "retention deleted")
}

func TestSweepZeroRetentionDeletesImmediately(t *testing.T) {
	dir := t.TempDir()
	activePath := filepath.Join(dir, "app.log")

	cfg := DefaultConfig().Rolling
	cfg.RetentionDays = 0

	archived := filepath.Join(dir, "app-archived.log")
	writeAged(t, archived, time.Second)

	s, _ := newTestSweeper(t, activePath, cfg)

	assert.True(t, s.sweep())
	assert.NoFileExists(t, archived)
}

func TestSweepMissingArchiveDir(t *testing.T) {
	dir := t.TempDir()
	activePath := filepath.Join(dir, "app.log")

	cfg := DefaultConfig().Rolling
	cfg.RollToArchiveFolder = true

	s, _ := newTestSweeper(t, activePath, cfg)

	assert.True(t, s.sweep(), "missing archive directory is not an error")
}

func TestSweepSkipsSubdirectories(t *testing.T) {
	dir := t.TempDir()
	activePath := filepath.Join(dir, "app.log")

	cfg := DefaultConfig().Rolling
	cfg.RetentionDays = 0

	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	s, _ := newTestSweeper(t, activePath, cfg)

	assert.True(t, s.sweep())
	assert.DirExists(t, filepath.Join(dir, "nested"))
}

func TestSweepPrunesExcessArchives(t *testing.T) {
	dir := t.TempDir()
	activePath := filepath.Join(dir, "app.log")

	cfg := DefaultConfig().Rolling
	cfg.RetentionDays = 30
	cfg.MaxArchivedFiles = 2

	oldest := filepath.Join(dir, "app-1.log")
	middle := filepath.Join(dir, "app-2.log")
	newest := filepath.Join(dir, "app-3.log")

	writeAged(t, oldest, 3*time.Hour)
	writeAged(t, middle, 2*time.Hour)
	writeAged(t, newest, time.Hour)

	s, _ := newTestSweeper(t, activePath, cfg)

	assert.True(t, s.sweep())
	assert.NoFileExists(t, oldest, "oldest archive beyond the limit is pruned")
	assert.FileExists(t, middle)
	assert.FileExists(t, newest)
}

func TestSweepDeleteFailurePolicy(t *testing.T) {
	setup := func(t *testing.T, fatal bool) (*retentionSweeper, *[]string) {
		t.Helper()

		dir := t.TempDir()
		activePath := filepath.Join(dir, "app.log")
		writeAged(t, filepath.Join(dir, "app-old.log"), 72*time.Hour)

		cfg := DefaultConfig().Rolling
		cfg.RetentionDays = 1
		cfg.FatalRetentionErrors = fatal

		s, lines := newTestSweeper(t, activePath, cfg)
		s.removeFile = func(string) error {
			return ewrap.New("delete rejected")
		}

		return s, lines
	}

	t.Run("non-fatal sweep survives delete failures", func(t *testing.T) {
		s, _ := setup(t, false)

		assert.True(t, s.sweep(), "delete failures are contained by default")
		assert.Equal(t, uint64(1), s.counters.retentionErrors.Load())
		assert.Equal(t, uint64(0), s.counters.retentionDeleted.Load())
	})

	t.Run("fatal policy stops the sweep loop", func(t *testing.T) {
		s, lines := setup(t, true)

		assert.False(t, s.sweep())
		assert.Equal(t, uint64(1), s.counters.retentionErrors.Load())

		stopped := false

		for _, line := range *lines {
			if strings.Contains(line, "stopped after delete failure") {
				stopped = true
			}
		}

		assert.True(t, stopped, "the stop decision is reported through diagnostics")
	})
}

func TestSweeperExitsOnFatalDeleteFailure(t *testing.T) {
	dir := t.TempDir()
	activePath := filepath.Join(dir, "app.log")
	writeAged(t, filepath.Join(dir, "app-old.log"), 72*time.Hour)

	cfg := DefaultConfig().Rolling
	cfg.RetentionDays = 1
	cfg.FatalRetentionErrors = true
	cfg.AgeCheckInterval = 20 * time.Millisecond

	s, _ := newTestSweeper(t, activePath, cfg)
	s.removeFile = func(string) error {
		return ewrap.New("delete rejected")
	}

	s.start()

	select {
	case <-s.doneCh:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper goroutine should terminate after a fatal delete failure")
	}
}

func TestSweeperStopIsPrompt(t *testing.T) {
	dir := t.TempDir()
	activePath := filepath.Join(dir, "app.log")

	cfg := DefaultConfig().Rolling
	cfg.AgeCheckInterval = time.Hour

	s, _ := newTestSweeper(t, activePath, cfg)
	s.start()

	done := make(chan struct{})

	go func() {
		s.stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stop should not wait for a full sweep period")
	}
}

func TestSweeperStopIdempotent(t *testing.T) {
	dir := t.TempDir()
	activePath := filepath.Join(dir, "app.log")

	s, _ := newTestSweeper(t, activePath, DefaultConfig().Rolling)
	s.start()

	s.stop()
	s.stop()
}

func TestSweeperTimerDrivenSweep(t *testing.T) {
	dir := t.TempDir()
	activePath := filepath.Join(dir, "app.log")

	cfg := DefaultConfig().Rolling
	cfg.RetentionDays = 0
	cfg.AgeCheckInterval = 20 * time.Millisecond

	archived := filepath.Join(dir, "app-archived.log")
	writeAged(t, archived, time.Minute)

	s, _ := newTestSweeper(t, activePath, cfg)
	s.start()

	defer s.stop()

	require.Eventually(t, func() bool {
		return !fileExists(archived)
	}, 2*time.Second, 10*time.Millisecond, "sweeper should delete the archive on a tick")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}

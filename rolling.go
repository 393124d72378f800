package filesink

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/filesink/internal/fsutil"
)

// rollingPolicy holds the pure rolling decisions for one sink: when to roll,
// where rolled files go, and what they are named. It also performs the move
// itself with collision-safe naming.
type rollingPolicy struct {
	cfg  RollingConfig
	path string
	now  func() time.Time
}

func newRollingPolicy(path string, cfg RollingConfig) *rollingPolicy {
	return &rollingPolicy{
		cfg:  cfg,
		path: path,
		now:  time.Now,
	}
}

// shouldRoll reports whether the active file has reached the size limit.
// A zero limit disables size rolling.
func (p *rollingPolicy) shouldRoll(size int64) bool {
	return p.cfg.FileSizeLimitBytes > 0 && size >= p.cfg.FileSizeLimitBytes
}

// archiveDir resolves the directory rolled files are moved into: the output
// directory itself, or its archive subfolder when configured.
func (p *rollingPolicy) archiveDir() string {
	dir := filepath.Dir(p.path)
	if p.cfg.RollToArchiveFolder {
		return filepath.Join(dir, p.cfg.ArchiveFolderName)
	}

	return dir
}

// archiveName instantiates the file name format with the roll timestamp and
// the original base name and extension.
func (p *rollingPolicy) archiveName(timestamp time.Time) string {
	stem, ext := fsutil.SplitName(filepath.Base(p.path))

	name := p.cfg.FileNameFormat
	name = strings.ReplaceAll(name, "{timestamp}", timestamp.Format(p.cfg.TimestampLayout))
	name = strings.ReplaceAll(name, "{name}", stem)
	name = strings.ReplaceAll(name, "{ext}", ext)

	return name
}

// archive relocates the current output file into the archive directory under
// a collision-free name and returns the destination path. The file must be
// closed before calling it.
func (p *rollingPolicy) archive() (string, error) {
	dir := p.archiveDir()

	err := fsutil.EnsureDir(dir)
	if err != nil {
		return "", err
	}

	dest := resolveCollision(filepath.Join(dir, p.archiveName(p.now())))

	err = moveFile(p.path, dest)
	if err != nil {
		return "", err
	}

	return dest, nil
}

// resolveCollision returns the first free variant of path, suffixing the stem
// with (1), (2), ... until no file exists at the candidate. The counter is
// local to one roll operation and never shared across calls.
func resolveCollision(path string) string {
	if !fsutil.Exists(path) {
		return path
	}

	stem, ext := fsutil.SplitName(path)

	for counter := 1; ; counter++ {
		candidate := fmt.Sprintf("%s(%d)%s", stem, counter, ext)
		if !fsutil.Exists(candidate) {
			return candidate
		}
	}
}

// moveFile relocates src to dest, preferring an atomic rename and falling
// back to copy-then-delete when rename fails (typically across volumes).
func moveFile(src, dest string) error {
	err := os.Rename(src, dest)
	if err == nil {
		return nil
	}

	copyErr := copyFile(src, dest)
	if copyErr != nil {
		return ewrap.Wrapf(copyErr, "moving file").
			WithMetadata("from", src).
			WithMetadata("to", dest).
			WithMetadata("rename_err", err)
	}

	err = os.Remove(src)
	if err != nil {
		return ewrap.Wrapf(err, "removing source after copy").
			WithMetadata("path", src)
	}

	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return ewrap.Wrapf(err, "opening source file").
			WithMetadata("path", src)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return ewrap.Wrapf(err, "getting source file stats").
			WithMetadata("path", src)
	}

	// The copy keeps the source permissions so cross-volume archives match
	// renamed ones.
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return ewrap.Wrapf(err, "creating destination file").
			WithMetadata("path", dest)
	}

	_, err = io.Copy(out, in)
	if err != nil {
		closeErr := out.Close()
		if closeErr != nil {
			return ewrap.Wrapf(closeErr, "closing destination after failed copy").
				WithMetadata("path", dest).
				WithMetadata("copy_err", err)
		}

		return ewrap.Wrapf(err, "copying file contents").
			WithMetadata("from", src).
			WithMetadata("to", dest)
	}

	err = out.Sync()
	if err != nil {
		closeErr := out.Close()
		if closeErr != nil {
			return ewrap.Wrapf(closeErr, "closing destination after failed sync").
				WithMetadata("path", dest).
				WithMetadata("sync_err", err)
		}

		return ewrap.Wrapf(err, "syncing destination file").
			WithMetadata("path", dest)
	}

	err = out.Close()
	if err != nil {
		return ewrap.Wrapf(err, "closing destination file").
			WithMetadata("path", dest)
	}

	return nil
}

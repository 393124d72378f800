package filesink

import (
	"os"
	"path/filepath"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/filesink/internal/fsutil"
)

// activeFile owns the currently open output target: its path, handle and
// running byte length. Exactly one instance exists per sink and it is touched
// only by the consumer goroutine, so no lock guards it.
type activeFile struct {
	file *os.File
	path string
	dir  string
	size int64
	mode os.FileMode
}

// openActiveFile opens (or creates) the output file in append mode, creating
// the parent directory when missing, and records the initial size.
func openActiveFile(path string, mode os.FileMode) (*activeFile, error) {
	f := &activeFile{
		path: path,
		dir:  filepath.Dir(path),
		mode: mode,
	}

	err := f.open()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func (f *activeFile) open() error {
	err := fsutil.EnsureDir(f.dir)
	if err != nil {
		return err
	}

	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, f.mode)
	if err != nil {
		return ewrap.Wrapf(err, "opening output file").
			WithMetadata("path", f.path)
	}

	info, err := file.Stat()
	if err != nil {
		closeErr := file.Close()
		if closeErr != nil {
			return ewrap.Wrapf(closeErr, "closing output file after failed stat").
				WithMetadata("path", f.path).
				WithMetadata("stat_err", err)
		}

		return ewrap.Wrapf(err, "getting output file stats").
			WithMetadata("path", f.path)
	}

	f.file = file
	f.size = info.Size()

	return nil
}

// ensureDir recreates the parent directory when it was removed externally.
// The writer is self-healing with respect to directory presence only.
func (f *activeFile) ensureDir() error {
	if fsutil.Exists(f.dir) {
		return nil
	}

	return fsutil.EnsureDir(f.dir)
}

// write appends data to the active file and flushes it to stable storage
// before returning. Durability is favored over batching throughput. A closed
// handle (left behind by a failed roll) is reopened first.
func (f *activeFile) write(data []byte) error {
	if f.file == nil {
		err := f.open()
		if err != nil {
			return err
		}
	}

	bytesWritten, err := f.file.Write(data)
	f.size += int64(bytesWritten)

	if err != nil {
		return ewrap.Wrap(err, "failed writing to output file")
	}

	err = f.file.Sync()
	if err != nil {
		return ewrap.Wrapf(err, "syncing output file").
			WithMetadata("path", f.path)
	}

	return nil
}

// close syncs and closes the underlying file. The handle is released even
// when the final sync fails, and a second close is a no-op.
func (f *activeFile) close() error {
	if f.file == nil {
		return nil
	}

	syncErr := f.file.Sync()

	closeErr := f.file.Close()
	f.file = nil

	if syncErr != nil {
		return ewrap.Wrapf(syncErr, "final sync before close").
			WithMetadata("path", f.path)
	}

	if closeErr != nil {
		return ewrap.Wrapf(closeErr, "closing output file")
	}

	return nil
}

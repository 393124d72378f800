// Package fsutil provides internal filesystem helpers used by the sink:
// directory creation, existence checks, and file name splitting for archive
// naming. These utilities are not part of the public API.
package fsutil

import (
	"os"
	"path/filepath"

	"github.com/hyp3rd/ewrap"
)

const dirPermissions = 0o700

// EnsureDir creates the directory and any missing parents.
func EnsureDir(path string) error {
	err := os.MkdirAll(path, dirPermissions)
	if err != nil {
		return ewrap.Wrapf(err, "creating directory").
			WithMetadata("path", path)
	}

	return nil
}

// Exists reports whether a file or directory exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}

// SplitName splits a file name into its stem and extension. The extension
// includes its leading dot; a name without an extension yields an empty
// extension.
func SplitName(name string) (string, string) {
	ext := filepath.Ext(name)

	return name[:len(name)-len(ext)], ext
}

package filesink

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenActiveFile(t *testing.T) {
	t.Run("creates file and parent directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "app.log")

		f, err := openActiveFile(path, 0o644)
		require.NoError(t, err)

		defer f.close()

		assert.FileExists(t, path)
		assert.Equal(t, int64(0), f.size)
	})

	t.Run("records initial size of existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		require.NoError(t, os.WriteFile(path, []byte("existing"), 0o644))

		f, err := openActiveFile(path, 0o644)
		require.NoError(t, err)

		defer f.close()

		assert.Equal(t, int64(len("existing")), f.size)
	})
}

func TestActiveFileWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	f, err := openActiveFile(path, 0o644)
	require.NoError(t, err)

	require.NoError(t, f.write([]byte("one\n")))
	require.NoError(t, f.write([]byte("two\n")))
	assert.Equal(t, int64(8), f.size)

	require.NoError(t, f.close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", string(data))
}

func TestActiveFileEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	path := filepath.Join(dir, "app.log")

	f, err := openActiveFile(path, 0o644)
	require.NoError(t, err)

	defer f.close()

	// Simulate external deletion of the whole output directory.
	require.NoError(t, os.RemoveAll(dir))

	require.NoError(t, f.ensureDir())
	assert.DirExists(t, dir)
}

func TestActiveFileDoubleClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	f, err := openActiveFile(path, 0o644)
	require.NoError(t, err)

	require.NoError(t, f.close())
	assert.NoError(t, f.close(), "second close is a no-op")
}

func TestActiveFileCloseReleasesHandleOnSyncFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	f, err := openActiveFile(path, 0o644)
	require.NoError(t, err)

	// Closing the descriptor underneath makes the pre-close sync fail.
	require.NoError(t, f.file.Close())

	require.Error(t, f.close())
	assert.Nil(t, f.file, "the handle is released even when the final sync fails")
	assert.NoError(t, f.close(), "subsequent close is a no-op")
}

package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtensions(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "nested"), 0o755))

	for _, name := range []string{"b.jpg", "a.PNG", "notes.txt", "nested/c.jpeg"} {
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, name), []byte("x"), 0o644))
	}

	files, err := FindFilesByExtensions(tmpDir, ".jpg", ".jpeg", ".png")
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(tmpDir, "a.PNG"),
		filepath.Join(tmpDir, "b.jpg"),
		filepath.Join(tmpDir, "nested", "c.jpeg"),
	}, files)
}

func TestFindFilesByExtensions_NoMatches(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "readme.md"), []byte("x"), 0o644))

	files, err := FindFilesByExtensions(tmpDir, ".json")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFindFilesByExtensions_PanicsWithoutExtension(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		_, _ = FindFilesByExtensions(".")
	})
}

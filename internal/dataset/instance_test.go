package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyInstanceImages(t *testing.T) {
	t.Parallel()

	srcDir := t.TempDir()
	for i := 0; i < 5; i++ {
		name := fmt.Sprintf("dog-%d.jpg", i)
		require.NoError(t, os.WriteFile(filepath.Join(srcDir, name), []byte("jpeg-bytes"), 0o644))
	}
	// Non-image files are not instance data.
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "notes.txt"), []byte("x"), 0o644))

	dstDir := filepath.Join(t.TempDir(), "instance")
	count, err := CopyInstanceImages(context.Background(), srcDir, dstDir)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	entries, err := os.ReadDir(dstDir)
	require.NoError(t, err)
	assert.Len(t, entries, 5)

	data, err := os.ReadFile(filepath.Join(dstDir, "dog-0.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
}

func TestCopyInstanceImages_RerunOverwrites(t *testing.T) {
	t.Parallel()

	srcDir := t.TempDir()
	imgPath := filepath.Join(srcDir, "subject.png")
	require.NoError(t, os.WriteFile(imgPath, []byte("v1"), 0o644))

	dstDir := filepath.Join(t.TempDir(), "instance")
	_, err := CopyInstanceImages(context.Background(), srcDir, dstDir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(imgPath, []byte("v2"), 0o644))
	_, err = CopyInstanceImages(context.Background(), srcDir, dstDir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dstDir, "subject.png"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
}

func TestCopyInstanceImages_EmptySource(t *testing.T) {
	t.Parallel()

	srcDir := t.TempDir()
	_, err := CopyInstanceImages(context.Background(), srcDir, filepath.Join(t.TempDir(), "instance"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no instance images")
}

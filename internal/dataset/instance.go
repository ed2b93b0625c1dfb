package dataset

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tunedrive/tunedrive/internal/ctxlog"
	"github.com/tunedrive/tunedrive/internal/fsutil"
)

// imageExtensions are the file types accepted as instance images.
var imageExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

// CopyInstanceImages places every image found beneath srcDir into dstDir,
// flattening any directory structure. No transformation is applied beyond
// file placement; re-running overwrites previously copied files. It returns
// the number of images copied and fails when the source holds none.
func CopyInstanceImages(ctx context.Context, srcDir, dstDir string) (int, error) {
	logger := ctxlog.FromContext(ctx)

	images, err := fsutil.FindFilesByExtensions(srcDir, imageExtensions...)
	if err != nil {
		return 0, fmt.Errorf("scan instance images in %s: %w", srcDir, err)
	}
	if len(images) == 0 {
		return 0, fmt.Errorf("no instance images found in %s", srcDir)
	}

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return 0, fmt.Errorf("create instance dir: %w", err)
	}

	for _, src := range images {
		dst := filepath.Join(dstDir, filepath.Base(src))
		if err := copyFile(src, dst); err != nil {
			return 0, fmt.Errorf("copy %s: %w", src, err)
		}
	}

	logger.Info("Instance images prepared.", "count", len(images), "instance_dir", dstDir)
	return len(images), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

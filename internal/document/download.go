package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DirDownloader writes files into a directory, creating it if needed.
type DirDownloader struct {
	Dir string
	// Saved holds the paths written so far.
	Saved []string
}

func (d *DirDownloader) Save(ctx context.Context, f File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(d.Dir, filepath.Base(f.Name))
	if err := os.WriteFile(path, f.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	d.Saved = append(d.Saved, path)
	return nil
}

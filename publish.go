package bus2sqlite

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Publish atomically replaces publishedPath with the snapshot at tempPath.
// The published path is never removed first, so a concurrent reader opens
// either the previous snapshot or the new one.
func Publish(tempPath, publishedPath string) error {
	if tempPath == "" {
		panic("Missing tempPath")
	}
	if publishedPath == "" {
		panic("Missing publishedPath")
	}

	if err := syncFile(tempPath); err != nil {
		return fmt.Errorf("sync %s: %w", tempPath, err)
	}
	if err := os.Rename(tempPath, publishedPath); err != nil {
		return err
	}
	if err := syncDir(filepath.Dir(publishedPath)); err != nil {
		return fmt.Errorf("sync %s: %w", filepath.Dir(publishedPath), err)
	}

	slog.Info(fmt.Sprintf("Published %s", publishedPath))
	return nil
}

func syncFile(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func syncDir(path string) error {
	d, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()
	// Not every platform can fsync a directory.
	_ = d.Sync()
	return nil
}

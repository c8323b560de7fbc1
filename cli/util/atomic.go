package util

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/apex/log"
)

// WriteFileAtomic writes data to a temporary file in the destination
// directory and renames it over path, so readers never observe a
// partially written document.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	return WriteAtomic(path, perm, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// WriteAtomic is like WriteFileAtomic, but the content is produced by fill.
func WriteAtomic(path string, perm os.FileMode, fill func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file for %s: %w", path, err)
	}
	tmpName := tmpFile.Name()

	defer func() {
		if err != nil {
			if removeErr := os.Remove(tmpName); removeErr != nil && !os.IsNotExist(removeErr) {
				log.Warnf("Failed to remove a temporary file %s: %s", tmpName, removeErr)
			}
		}
	}()

	if err = fill(tmpFile); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err = tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err = os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("failed to set permissions of %s: %w", path, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

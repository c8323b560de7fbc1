package control

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/peondevelopments/aptrepo/cli/util"
)

// CeilKB converts a byte count to kilobytes, rounding up.
func CeilKB(bytes int64) int64 {
	return (bytes + 1023) / 1024
}

// InstalledSize returns the size in kilobytes of regular files under
// stagedRoot. Top level directories named as one of excluded are skipped
// entirely; nested directories of the same name are payload.
func InstalledSize(stagedRoot string, excluded ...string) (int64, error) {
	if _, err := os.Stat(stagedRoot); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, util.NewNotFoundError("staging directory", stagedRoot)
		}
		return 0, err
	}

	skip := make(map[string]struct{}, len(excluded))
	for _, name := range excluded {
		skip[name] = struct{}{}
	}

	stagedRoot = filepath.Clean(stagedRoot)
	var total int64
	err := filepath.WalkDir(stagedRoot, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if _, found := skip[entry.Name()]; found && filepath.Dir(path) == stagedRoot {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to compute installed size of %s: %w", stagedRoot, err)
	}
	return CeilKB(total), nil
}

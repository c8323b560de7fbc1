package pack

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// nonDeployables are patterns of files and directories which are never
// deployed on the target system. Patterns match base names.
var nonDeployables = map[string]struct{}{
	"__pycache__": {},
	".svn":        {},
	".git":        {},
	".apt_pkg":    {},
	"*.pyc":       {},
	"*~":          {},
}

// shouldIgnore checks if the given base name matches any of the patterns.
func shouldIgnore(name string, patterns map[string]struct{}) (bool, error) {
	for pattern := range patterns {
		if pattern == name {
			return true, nil
		}
		match, err := filepath.Match(pattern, name)
		if err != nil {
			return false, err
		}
		if match {
			return true, nil
		}
	}
	return false, nil
}

// removeIgnoredFiles walks through the directory and removes files or directories
// that match the ignore patterns.
func removeIgnoredFiles(stagedRoot string, patterns map[string]struct{}) error {
	return filepath.WalkDir(stagedRoot, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == stagedRoot {
			return nil
		}

		ignore, err := shouldIgnore(entry.Name(), patterns)
		if err != nil || !ignore {
			return err
		}

		if entry.IsDir() {
			if err = os.RemoveAll(path); err != nil {
				return fmt.Errorf("failed to remove directory %q: %s", path, err)
			}
			return filepath.SkipDir
		}
		if err = os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove file %q: %s", path, err)
		}
		return nil
	})
}

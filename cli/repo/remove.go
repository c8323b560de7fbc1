package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"

	"github.com/peondevelopments/aptrepo/cli/util"
)

// RemoveResult is the outcome of Remove.
type RemoveResult struct {
	// Modified contains leaves where artifacts were deleted.
	Modified *LeafSet
	// Removed contains paths of deleted artifacts.
	Removed []string
	// Missed contains names that matched nothing.
	Missed []string
}

// isArtifact checks the artifact file extension.
func isArtifact(fileName string) bool {
	for _, ext := range Extensions {
		if strings.HasSuffix(fileName, ext) {
			return true
		}
	}
	return false
}

// artifactStem returns fileName without its last hyphen separated field.
func artifactStem(fileName string) string {
	fields := strings.Split(fileName, "-")
	if len(fields) < 2 {
		return ""
	}
	return strings.Join(fields[:len(fields)-1], "-")
}

// matchArtifact checks if fileName is name or its stem is name.
func matchArtifact(fileName, name string) bool {
	return fileName == name || artifactStem(fileName) == name
}

// Remove deletes artifacts matching names from leaves of the given
// architectures. A name matches an artifact file name exactly or the file
// name with its trailing hyphen separated field stripped. Names without
// matches are reported in Missed and do not stop the removal.
func Remove(l *Layout, names []string, architectures []string) (*RemoveResult, error) {
	if !util.IsDir(l.Base()) {
		return nil, util.NewNotFoundError("repository", l.Base())
	}

	result := &RemoveResult{Modified: NewLeafSet()}
	for _, name := range names {
		matched := false
		for _, leaf := range Leaves(l, architectures) {
			entries, err := os.ReadDir(leaf)
			if err != nil {
				if os.IsNotExist(err) {
					log.Debugf("Repository leaf %s does not exist", leaf)
					continue
				}
				return result, err
			}
			for _, entry := range entries {
				if entry.IsDir() || !isArtifact(entry.Name()) ||
					!matchArtifact(entry.Name(), name) {
					continue
				}
				path := filepath.Join(leaf, entry.Name())
				if err := os.Remove(path); err != nil {
					return result, fmt.Errorf("failed to remove %s: %w", path, err)
				}
				log.Infof("Removed %s", path)
				matched = true
				result.Removed = append(result.Removed, path)
				result.Modified.Add(leaf)
			}
		}
		if !matched {
			log.Warnf("No packages match %q", name)
			result.Missed = append(result.Missed, name)
		}
	}
	return result, nil
}

package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/otiai10/copy"

	"github.com/peondevelopments/aptrepo/cli/util"
)

// Add copies the artifact into every existing leaf of the given
// architectures. Missing leaves are skipped. The artifact itself is kept.
func Add(l *Layout, artifact string, architectures []string) (*LeafSet, error) {
	modified := NewLeafSet()
	if err := addTo(l, artifact, architectures, modified); err != nil {
		return nil, err
	}
	return modified, nil
}

// AddAll adds several artifacts, collecting touched leaves in one set.
func AddAll(l *Layout, artifacts []string, architectures []string) (*LeafSet, error) {
	modified := NewLeafSet()
	for _, artifact := range artifacts {
		touched, err := Add(l, artifact, architectures)
		if err != nil {
			return modified, err
		}
		modified.Merge(touched)
	}
	return modified, nil
}

func addTo(l *Layout, artifact string, architectures []string, modified *LeafSet) error {
	info, err := os.Stat(artifact)
	if err != nil {
		if os.IsNotExist(err) {
			return util.NewNotFoundError("package artifact", artifact)
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("package artifact %s is a directory", artifact)
	}

	name := filepath.Base(artifact)
	for _, leaf := range Leaves(l, architectures) {
		if !util.IsDir(leaf) {
			log.Warnf("Repository leaf %s does not exist, skipped", leaf)
			continue
		}
		dest := filepath.Join(leaf, name)
		if err := copy.Copy(artifact, dest, copy.Options{PreserveTimes: true}); err != nil {
			return fmt.Errorf("failed to copy %s to %s: %w", artifact, leaf, err)
		}
		log.Infof("Added %s to %s", name, leaf)
		modified.Add(leaf)
	}
	return nil
}

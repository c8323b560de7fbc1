package repo

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Artifact is a package artifact stored in a leaf.
type Artifact struct {
	Name string
	Size int64
}

// Package returns the package name encoded in an artifact file name
// <name>-<version>_<arch>.<ext>.
func (a Artifact) Package() string {
	return artifactStem(a.Name)
}

// Version returns the version encoded in an artifact file name
// <name>-<version>_<arch>.<ext>, or an empty string.
func (a Artifact) Version() string {
	stem := artifactStem(a.Name)
	if stem == "" {
		return ""
	}
	version := strings.TrimPrefix(a.Name, stem+"-")
	if i := strings.LastIndex(version, "_"); i >= 0 {
		return version[:i]
	}
	return ""
}

// LeafContent lists artifacts of a leaf.
type LeafContent struct {
	Leaf
	Artifacts []Artifact
}

// Usage summarizes artifacts stored in the repository.
type Usage struct {
	// Count is the number of artifact files.
	Count int
	// Bytes is the total size of artifact files.
	Bytes int64
}

// List returns artifacts of every existing leaf in LeafCells order.
func List(l *Layout, architectures []string) ([]LeafContent, error) {
	var contents []LeafContent
	for _, leaf := range LeafCells(l, architectures) {
		entries, err := os.ReadDir(leaf.Path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		content := LeafContent{Leaf: leaf}
		for _, entry := range entries {
			if entry.IsDir() || !isArtifact(entry.Name()) {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				return nil, err
			}
			content.Artifacts = append(content.Artifacts,
				Artifact{Name: entry.Name(), Size: info.Size()})
		}
		sort.Slice(content.Artifacts, func(i, j int) bool {
			return content.Artifacts[i].Name < content.Artifacts[j].Name
		})
		contents = append(contents, content)
	}
	return contents, nil
}

// DiskUsage counts artifacts under the repository directory.
func DiskUsage(l *Layout) (Usage, error) {
	var usage Usage
	err := filepath.WalkDir(l.Base(), func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !isArtifact(entry.Name()) {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		usage.Count++
		usage.Bytes += info.Size()
		return nil
	})
	return usage, err
}
